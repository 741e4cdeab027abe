package corebot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/intrntsrfr/meido/pkg/mio/bot"
	"github.com/intrntsrfr/meido/pkg/mio/discord"
	"github.com/intrntsrfr/meido/pkg/utils/builders"

	"github.com/intrntsrfr/corebot/guildstore"
)

func newLogsSlash(m *module) *bot.ModuleApplicationCommand {
	categories := map[string]string{
		"mod":     "Moderation actions",
		"message": "Message edits and deletes",
		"member":  "Joins and leaves",
		"server":  "Role and channel changes",
		"voice":   "Voice activity",
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(guildstore.LogCategories))
	for _, cat := range guildstore.LogCategories {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  categories[cat],
			Value: cat,
		})
	}

	cmd := bot.NewModuleApplicationCommandBuilder(m, "logs").
		Type(discordgo.ChatApplicationCommand).
		Description("View or set the log channels").
		NoDM().
		Permissions(discordgo.PermissionAdministrator).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "view",
			Description: "View the current log channels",
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "set",
			Description: "Set the channel for a log category",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "category",
					Description: "The category to log",
					Required:    true,
					Choices:     choices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "The channel to log to",
					Required:    true,
				},
			},
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "disable",
			Description: "Stop logging a category",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "category",
					Description: "The category to stop logging",
					Required:    true,
					Choices:     choices,
				},
			},
		})

	run := func(d *discord.DiscordApplicationCommand) {
		gid, ok := commandGuildID(d)
		if !ok {
			return
		}
		ctx := context.Background()

		if _, ok := d.Options("view"); ok {
			d.RespondEmbed(logSettingsEmbed(m.db.Load(ctx, gid)))
		} else if _, ok := d.Options("set"); ok {
			catOpt, ok := d.Options("set:category")
			if !ok {
				d.Respond("Category not found")
				return
			}
			category := catOpt.StringValue()

			chOpt, ok := d.Options("set:channel")
			if !ok {
				d.Respond("Channel not found")
				return
			}
			ch := chOpt.ChannelValue(d.Sess.Real())
			if ch == nil {
				d.Respond("Channel not found")
				return
			}
			cid, err := storedID(ch.ID)
			if err != nil {
				d.Respond("Channel not found")
				return
			}

			if err := m.db.Set(ctx, gid, []string{"logs", category}, cid); err != nil {
				d.Respond(saveFailedReply)
				return
			}

			embed := logSettingsEmbed(m.db.Load(ctx, gid))
			embed.Title = "Updated log channels"
			resp := &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{embed},
				Flags:  discordgo.MessageFlagsEphemeral,
			}
			d.RespondComplex(resp, discordgo.InteractionResponseChannelMessageWithSource)
		} else if _, ok := d.Options("disable"); ok {
			catOpt, ok := d.Options("disable:category")
			if !ok {
				d.Respond("Category not found")
				return
			}
			category := catOpt.StringValue()

			if err := m.db.Set(ctx, gid, []string{"logs", category}, nil); err != nil {
				d.Respond(saveFailedReply)
				return
			}
			d.Respond(fmt.Sprintf("No longer logging the %v category", category))
		}
	}

	return cmd.Execute(run).Build()
}

func logSettingsEmbed(doc *guildstore.Document) *discordgo.MessageEmbed {
	embed := builders.NewEmbedBuilder().
		WithTitle("Log channels").
		WithOkColor()

	for _, cat := range guildstore.LogCategories {
		val := "Not set"
		if id, ok := doc.Logs.Channel(cat); ok {
			val = fmt.Sprintf("<#%v>", id)
		}
		embed.AddField(cat, val, true)
	}

	return embed.Build()
}
