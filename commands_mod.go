package corebot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/intrntsrfr/meido/pkg/mio/bot"
	"github.com/intrntsrfr/meido/pkg/mio/discord"
	"github.com/intrntsrfr/meido/pkg/utils/builders"
)

func newWarnSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "warn").
		Type(discordgo.ChatApplicationCommand).
		Description("Warn a member, or manage their warnings").
		NoDM().
		Permissions(discordgo.PermissionKickMembers).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "add",
			Description: "Warn a member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The member to warn",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Why they are being warned",
					Required:    true,
				},
			},
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "list",
			Description: "List a member's warnings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The member to look up",
					Required:    true,
				},
			},
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "clear",
			Description: "Clear a member's warnings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The member to clear",
					Required:    true,
				},
			},
		})

	run := func(d *discord.DiscordApplicationCommand) {
		gid, ok := commandGuildID(d)
		if !ok {
			return
		}
		ctx := context.Background()

		if _, ok := d.Options("add"); ok {
			userOpt, ok := d.Options("add:user")
			if !ok {
				d.Respond("User not found")
				return
			}
			user := userOpt.UserValue(d.Sess.Real())
			reasonOpt, ok := d.Options("add:reason")
			if !ok {
				d.Respond("Reason not found")
				return
			}
			reason := reasonOpt.StringValue()

			doc := m.db.Load(ctx, gid)
			doc.Warnings[user.ID] = append(doc.Warnings[user.ID], reason)
			if err := m.db.Save(ctx, gid, doc); err != nil {
				d.Respond(saveFailedReply)
				return
			}

			count := len(doc.Warnings[user.ID])
			d.Respond(fmt.Sprintf("%v has been warned. They now have %v warning(s)", user.Mention(), count))

			if modLog, ok := doc.Logs.Channel("mod"); ok {
				embed := builders.NewEmbedBuilder().
					WithTitle("User Warned").
					WithThumbnail(user.AvatarURL("256")).
					AddField("User", fmt.Sprintf("%v\n%v", user.Mention(), user.String()), false).
					AddField("Reason", reason, false).
					AddField("Total warnings", fmt.Sprint(count), false).
					WithColor(int(ColorOrange))
				_, _ = d.Sess.Real().ChannelMessageSendEmbed(formatID(modLog), embed.Build())
			}
		} else if _, ok := d.Options("list"); ok {
			userOpt, ok := d.Options("list:user")
			if !ok {
				d.Respond("User not found")
				return
			}
			user := userOpt.UserValue(d.Sess.Real())

			warnings := m.db.Load(ctx, gid).Warnings[user.ID]
			if len(warnings) == 0 {
				d.Respond(fmt.Sprintf("%v has no warnings", user.Mention()))
				return
			}

			text := strings.Builder{}
			for i, reason := range warnings {
				text.WriteString(fmt.Sprintf("%v. %v\n", i+1, reason))
			}
			embed := builders.NewEmbedBuilder().
				WithTitle(fmt.Sprintf("Warnings for %v", user.String())).
				WithOkColor().
				WithDescription(text.String())
			d.RespondEmbed(embed.Build())
		} else if _, ok := d.Options("clear"); ok {
			userOpt, ok := d.Options("clear:user")
			if !ok {
				d.Respond("User not found")
				return
			}
			user := userOpt.UserValue(d.Sess.Real())

			doc := m.db.Load(ctx, gid)
			if _, ok := doc.Warnings[user.ID]; !ok {
				d.Respond(fmt.Sprintf("%v has no warnings", user.Mention()))
				return
			}
			delete(doc.Warnings, user.ID)
			if err := m.db.Save(ctx, gid, doc); err != nil {
				d.Respond(saveFailedReply)
				return
			}
			d.Respond(fmt.Sprintf("Cleared all warnings for %v", user.Mention()))
		}
	}

	return cmd.Execute(run).Build()
}

func newMuteSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "mute").
		Type(discordgo.ChatApplicationCommand).
		Description("Give a member the muted role").
		NoDM().
		Permissions(discordgo.PermissionModerateMembers).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "user",
			Description: "Mute a member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The member to mute",
					Required:    true,
				},
			},
		})

	run := func(d *discord.DiscordApplicationCommand) {
		muteToggle(m, d, true)
	}

	return cmd.Execute(run).Build()
}

func newUnmuteSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "unmute").
		Type(discordgo.ChatApplicationCommand).
		Description("Take the muted role from a member").
		NoDM().
		Permissions(discordgo.PermissionModerateMembers).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "user",
			Description: "Unmute a member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The member to unmute",
					Required:    true,
				},
			},
		})

	run := func(d *discord.DiscordApplicationCommand) {
		muteToggle(m, d, false)
	}

	return cmd.Execute(run).Build()
}

func muteToggle(m *module, d *discord.DiscordApplicationCommand, mute bool) {
	gid, ok := commandGuildID(d)
	if !ok {
		return
	}

	userOpt, ok := d.Options("user:user")
	if !ok {
		d.Respond("User not found")
		return
	}
	user := userOpt.UserValue(d.Sess.Real())

	doc := m.db.Load(context.Background(), gid)
	if doc.MutedRole == nil {
		d.Respond("No muted role is configured; set one with /mutedrole")
		return
	}
	roleID := formatID(*doc.MutedRole)

	var err error
	if mute {
		err = d.Sess.Real().GuildMemberRoleAdd(d.GuildID(), user.ID, roleID)
	} else {
		err = d.Sess.Real().GuildMemberRoleRemove(d.GuildID(), user.ID, roleID)
	}
	if err != nil {
		d.Respond("Could not change that member's roles; check the role hierarchy")
		return
	}

	if mute {
		d.Respond(fmt.Sprintf("%v has been muted", user.Mention()))
	} else {
		d.Respond(fmt.Sprintf("%v has been unmuted", user.Mention()))
	}
}

func newImageMuteSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "imagemute").
		Type(discordgo.ChatApplicationCommand).
		Description("Stop a member from posting attachments").
		NoDM().
		Permissions(discordgo.PermissionModerateMembers).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "on",
			Description: "Image-mute a member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The member to image-mute",
					Required:    true,
				},
			},
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "off",
			Description: "Lift a member's image-mute",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The member to unmute",
					Required:    true,
				},
			},
		})

	run := func(d *discord.DiscordApplicationCommand) {
		gid, ok := commandGuildID(d)
		if !ok {
			return
		}
		ctx := context.Background()

		if _, ok := d.Options("on"); ok {
			userOpt, ok := d.Options("on:user")
			if !ok {
				d.Respond("User not found")
				return
			}
			user := userOpt.UserValue(d.Sess.Real())
			if err := m.db.Set(ctx, gid, []string{"image_muted", user.ID}, true); err != nil {
				d.Respond(saveFailedReply)
				return
			}
			d.Respond(fmt.Sprintf("Attachments from %v will now be removed", user.Mention()))
		} else if _, ok := d.Options("off"); ok {
			userOpt, ok := d.Options("off:user")
			if !ok {
				d.Respond("User not found")
				return
			}
			user := userOpt.UserValue(d.Sess.Real())

			doc := m.db.Load(ctx, gid)
			if _, ok := doc.ImageMuted[user.ID]; !ok {
				d.Respond(fmt.Sprintf("%v is not image-muted", user.Mention()))
				return
			}
			delete(doc.ImageMuted, user.ID)
			if err := m.db.Save(ctx, gid, doc); err != nil {
				d.Respond(saveFailedReply)
				return
			}
			d.Respond(fmt.Sprintf("%v may post attachments again", user.Mention()))
		}
	}

	return cmd.Execute(run).Build()
}
