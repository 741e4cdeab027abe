package corebot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/intrntsrfr/meido/pkg/mio/bot"
	"github.com/intrntsrfr/meido/pkg/mio/discord"
	"github.com/intrntsrfr/meido/pkg/utils/builders"
)

func newWelcomeSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "welcome").
		Type(discordgo.ChatApplicationCommand).
		Description("Configure the greeting for new members").
		NoDM().
		Permissions(discordgo.PermissionManageServer).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "channel",
			Description: "Set the channel welcome messages are posted in",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "The channel to greet new members in",
					Required:    true,
				},
			},
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "message",
			Description: "Set the welcome template; {user}, {server} and {count} are filled in",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "template",
					Description: "The message template",
					Required:    true,
				},
			},
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "embed",
			Description: "Post welcome messages as an embed or as plain text",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "enabled",
					Description: "Whether to use an embed",
					Required:    true,
				},
			},
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "disable",
			Description: "Stop greeting new members",
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "view",
			Description: "View the current welcome settings",
		})

	run := func(d *discord.DiscordApplicationCommand) {
		gid, ok := commandGuildID(d)
		if !ok {
			return
		}
		ctx := context.Background()

		if _, ok := d.Options("channel"); ok {
			chOpt, ok := d.Options("channel:channel")
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
			if err := m.db.Set(ctx, gid, []string{"welcome", "channel_id"}, cid); err != nil {
				d.Respond(saveFailedReply)
				return
			}
			d.Respond(fmt.Sprintf("New members will be greeted in <#%v>", ch.ID))
		} else if _, ok := d.Options("message"); ok {
			tmplOpt, ok := d.Options("message:template")
			if !ok {
				d.Respond("Template not found")
				return
			}
			tmpl := tmplOpt.StringValue()
			if err := m.db.Set(ctx, gid, []string{"welcome", "message"}, tmpl); err != nil {
				d.Respond(saveFailedReply)
				return
			}
			d.Respond("Welcome template updated")
		} else if _, ok := d.Options("embed"); ok {
			enabledOpt, ok := d.Options("embed:enabled")
			if !ok {
				d.Respond("Missing option")
				return
			}
			enabled := enabledOpt.BoolValue()
			if err := m.db.Set(ctx, gid, []string{"welcome", "embed"}, enabled); err != nil {
				d.Respond(saveFailedReply)
				return
			}
			if enabled {
				d.Respond("Welcome messages will be posted as an embed")
			} else {
				d.Respond("Welcome messages will be posted as plain text")
			}
		} else if _, ok := d.Options("disable"); ok {
			if err := m.db.Set(ctx, gid, []string{"welcome", "channel_id"}, nil); err != nil {
				d.Respond(saveFailedReply)
				return
			}
			d.Respond("New members will no longer be greeted")
		} else if _, ok := d.Options("view"); ok {
			doc := m.db.Load(ctx, gid)

			channel := "Not set"
			if doc.Welcome.ChannelID != nil {
				channel = fmt.Sprintf("<#%v>", *doc.Welcome.ChannelID)
			}
			style := "Plain text"
			if doc.Welcome.Embed {
				style = "Embed"
			}

			embed := builders.NewEmbedBuilder().
				WithTitle("Welcome settings").
				WithOkColor().
				AddField("Channel", channel, true).
				AddField("Style", style, true).
				AddField("Template", doc.Welcome.Message, false)
			d.RespondEmbed(embed.Build())
		}
	}

	return cmd.Execute(run).Build()
}
