package corebot

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// parseID converts a Discord snowflake string to the numeric key the guild
// documents use.
func parseID(id string) (uint64, error) {
	return strconv.ParseUint(id, 10, 64)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// storedID converts a Discord snowflake string to the numeric form channel
// and role ids have inside a guild document.
func storedID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// renderWelcome fills in the {user}, {server} and {count} placeholders of a
// welcome template.
func renderWelcome(template string, user *discordgo.User, g *discordgo.Guild) string {
	r := strings.NewReplacer(
		"{user}", user.Mention(),
		"{server}", g.Name,
		"{count}", strconv.Itoa(g.MemberCount),
	)
	return r.Replace(template)
}

// formatRoleList renders role mentions, truncated to fit an embed field.
func formatRoleList(roleIDs []string) string {
	if len(roleIDs) == 0 {
		return "None"
	}

	var roles []string
	for _, r := range roleIDs {
		roles = append(roles, "<@&"+r+">")
	}

	var shown []string
	for _, r := range roles {
		if len(strings.Join(append(shown, r), ", ")) > 760 {
			break
		}
		shown = append(shown, r)
	}

	out := strings.Join(shown, ", ")
	if len(shown) != len(roles) {
		out += " and " + strconv.Itoa(len(roles)-len(shown)) + " more"
	}
	return out
}

// emojiToken normalizes emoji input to the token reaction events carry:
// "name:id" for custom emoji, the literal character for unicode emoji.
// Accepts the raw <:name:id> and <a:name:id> forms users paste in.
func emojiToken(input string) string {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "<") && strings.HasSuffix(input, ">") {
		input = strings.Trim(input, "<>")
		input = strings.TrimPrefix(input, "a")
		input = strings.TrimPrefix(input, ":")
	}
	return input
}
