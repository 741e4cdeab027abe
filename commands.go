package corebot

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/intrntsrfr/meido/pkg/mio"
	"github.com/intrntsrfr/meido/pkg/mio/bot"
	"github.com/intrntsrfr/meido/pkg/mio/discord"
	"github.com/intrntsrfr/meido/pkg/utils/builders"

	"github.com/intrntsrfr/corebot/guildstore"
)

// saveFailedReply is shown when a settings change did not persist. The store
// deliberately stays best-effort, but the user should know the change was
// lost instead of finding out later.
const saveFailedReply = "That change could not be saved, please try again later."

type module struct {
	*bot.ModuleBase
	startTime time.Time
	db        *guildstore.Store
}

func NewModule(b *bot.Bot, db *guildstore.Store, logger mio.Logger) *module {
	logger = logger.Named("commands")
	return &module{
		ModuleBase: bot.NewModule(b, "commands", logger),
		db:         db,
		startTime:  time.Now(),
	}
}

func (m *module) Hook() error {
	if err := m.RegisterCommands(); err != nil {
		return err
	}
	if err := m.RegisterApplicationCommands(
		newHelpSlash(m),
		newInfoSlash(m),
		newWelcomeSlash(m),
		newAutoRoleSlash(m),
		newMutedRoleSlash(m),
		newMuteSlash(m),
		newUnmuteSlash(m),
		newImageMuteSlash(m),
		newWarnSlash(m),
		newLogsSlash(m),
		newReactionRoleSlash(m),
	); err != nil {
		return err
	}

	return nil
}

// commandGuildID parses the invoking guild's id into the numeric form the
// guild store uses.
func commandGuildID(d *discord.DiscordApplicationCommand) (uint64, bool) {
	gid, err := parseID(d.GuildID())
	if err != nil {
		d.Respond("This command only works in a server")
		return 0, false
	}
	return gid, true
}

func newHelpSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "help").
		Type(discordgo.ChatApplicationCommand).
		Description("Get help on how to use the bot")

	run := func(d *discord.DiscordApplicationCommand) {
		text := strings.Builder{}
		text.WriteString("Configuration commands:\n")
		text.WriteString("1. `/welcome` - greeting channel, message template and style\n")
		text.WriteString("1. `/autorole` - roles handed out on join, for members and bots\n")
		text.WriteString("1. `/mutedrole` - role used when muting members\n")
		text.WriteString("1. `/imagemute` - stop a member from posting attachments\n")
		text.WriteString("1. `/warn` - warn a member, list or clear their warnings\n")
		text.WriteString("1. `/logs` - log channels per category\n")
		text.WriteString("1. `/reactionrole` - bind a reaction on a message to a role\n")
		text.WriteString("\n")
		text.WriteString("Every setting is stored per server. Welcome templates may use ")
		text.WriteString("`{user}`, `{server}` and `{count}`.\n")

		embed := builders.NewEmbedBuilder().
			WithTitle("Help").
			WithOkColor().
			WithDescription(text.String())
		d.RespondEmbed(embed.Build())
	}

	return cmd.Execute(run).Build()
}

func newInfoSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "info").
		Type(discordgo.ChatApplicationCommand).
		Description("Get information about the bot")

	run := func(d *discord.DiscordApplicationCommand) {
		embed := builders.NewEmbedBuilder().
			WithTitle("Info").
			WithOkColor().
			AddField("Golang version", runtime.Version(), false).
			AddField("Running since", fmt.Sprintf("<t:%v:R>", m.startTime.Unix()), false).
			AddField("Total guilds", fmt.Sprintf("%v", d.Discord.GuildCount()), false)
		d.RespondEmbed(embed.Build())
	}

	return cmd.Execute(run).Build()
}
