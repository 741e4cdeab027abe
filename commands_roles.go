package corebot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/intrntsrfr/meido/pkg/mio/bot"
	"github.com/intrntsrfr/meido/pkg/mio/discord"
)

func newAutoRoleSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "autorole").
		Type(discordgo.ChatApplicationCommand).
		Description("Configure roles handed out when someone joins").
		NoDM().
		Permissions(discordgo.PermissionManageRoles).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "member",
			Description: "Set the role given to new members",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "The role to hand out",
					Required:    true,
				},
			},
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "bot",
			Description: "Set the role given to new bots",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "The role to hand out",
					Required:    true,
				},
			},
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "clear",
			Description: "Stop handing out roles on join",
		})

	run := func(d *discord.DiscordApplicationCommand) {
		gid, ok := commandGuildID(d)
		if !ok {
			return
		}
		ctx := context.Background()

		setRole := func(kind string) {
			roleOpt, ok := d.Options(kind + ":role")
			if !ok {
				d.Respond("Role not found")
				return
			}
			role := roleOpt.RoleValue(d.Sess.Real(), d.GuildID())
			if role == nil {
				d.Respond("Role not found")
				return
			}
			rid, err := storedID(role.ID)
			if err != nil {
				d.Respond("Role not found")
				return
			}
			if err := m.db.Set(ctx, gid, []string{"auto_role", kind}, rid); err != nil {
				d.Respond(saveFailedReply)
				return
			}
			d.Respond(fmt.Sprintf("New %vs will get <@&%v>", kind, role.ID))
		}

		if _, ok := d.Options("member"); ok {
			setRole("member")
		} else if _, ok := d.Options("bot"); ok {
			setRole("bot")
		} else if _, ok := d.Options("clear"); ok {
			doc := m.db.Load(ctx, gid)
			doc.AutoRole.Member = nil
			doc.AutoRole.Bot = nil
			if err := m.db.Save(ctx, gid, doc); err != nil {
				d.Respond(saveFailedReply)
				return
			}
			d.Respond("Roles will no longer be handed out on join")
		}
	}

	return cmd.Execute(run).Build()
}

func newMutedRoleSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "mutedrole").
		Type(discordgo.ChatApplicationCommand).
		Description("Configure the role used to mute members").
		NoDM().
		Permissions(discordgo.PermissionManageRoles).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "set",
			Description: "Set the muted role",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "The role /mute assigns",
					Required:    true,
				},
			},
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "clear",
			Description: "Unset the muted role",
		})

	run := func(d *discord.DiscordApplicationCommand) {
		gid, ok := commandGuildID(d)
		if !ok {
			return
		}
		ctx := context.Background()

		if _, ok := d.Options("set"); ok {
			roleOpt, ok := d.Options("set:role")
			if !ok {
				d.Respond("Role not found")
				return
			}
			role := roleOpt.RoleValue(d.Sess.Real(), d.GuildID())
			if role == nil {
				d.Respond("Role not found")
				return
			}
			rid, err := storedID(role.ID)
			if err != nil {
				d.Respond("Role not found")
				return
			}
			if err := m.db.Set(ctx, gid, []string{"muted_role"}, rid); err != nil {
				d.Respond(saveFailedReply)
				return
			}
			d.Respond(fmt.Sprintf("Muted role set to <@&%v>", role.ID))
		} else if _, ok := d.Options("clear"); ok {
			if err := m.db.Set(ctx, gid, []string{"muted_role"}, nil); err != nil {
				d.Respond(saveFailedReply)
				return
			}
			d.Respond("Muted role cleared")
		}
	}

	return cmd.Execute(run).Build()
}

func newReactionRoleSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "reactionrole").
		Type(discordgo.ChatApplicationCommand).
		Description("Bind reactions on a message to roles").
		NoDM().
		Permissions(discordgo.PermissionManageRoles).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "add",
			Description: "Bind an emoji on a message to a role",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "The id of the message to watch",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "emoji",
					Description: "The emoji that grants the role",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "The role to grant",
					Required:    true,
				},
			},
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "remove",
			Description: "Remove an emoji binding from a message",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "The id of the watched message",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "emoji",
					Description: "The emoji to unbind",
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
			msgOpt, ok := d.Options("add:message")
			if !ok {
				d.Respond("Message not found")
				return
			}
			msgID := msgOpt.StringValue()
			if _, err := parseID(msgID); err != nil {
				d.Respond("That does not look like a message id")
				return
			}

			emojiOpt, ok := d.Options("add:emoji")
			if !ok {
				d.Respond("Emoji not found")
				return
			}
			token := emojiToken(emojiOpt.StringValue())

			roleOpt, ok := d.Options("add:role")
			if !ok {
				d.Respond("Role not found")
				return
			}
			role := roleOpt.RoleValue(d.Sess.Real(), d.GuildID())
			if role == nil {
				d.Respond("Role not found")
				return
			}
			rid, err := storedID(role.ID)
			if err != nil {
				d.Respond("Role not found")
				return
			}

			if err := m.db.Set(ctx, gid, []string{"reaction_roles", msgID, token}, rid); err != nil {
				d.Respond(saveFailedReply)
				return
			}
			d.Respond(fmt.Sprintf("Reacting with %v on that message now grants <@&%v>", emojiOpt.StringValue(), role.ID))
		} else if _, ok := d.Options("remove"); ok {
			msgOpt, ok := d.Options("remove:message")
			if !ok {
				d.Respond("Message not found")
				return
			}
			emojiOpt, ok := d.Options("remove:emoji")
			if !ok {
				d.Respond("Emoji not found")
				return
			}
			msgID := msgOpt.StringValue()
			token := emojiToken(emojiOpt.StringValue())

			doc := m.db.Load(ctx, gid)
			bindings, ok := doc.ReactionRoles[msgID]
			if !ok {
				d.Respond("No bindings on that message")
				return
			}
			if _, ok := bindings[token]; !ok {
				d.Respond("That emoji is not bound on that message")
				return
			}
			delete(bindings, token)
			if len(bindings) == 0 {
				delete(doc.ReactionRoles, msgID)
			}

			if err := m.db.Save(ctx, gid, doc); err != nil {
				d.Respond(saveFailedReply)
				return
			}
			d.Respond("Binding removed")
		}
	}

	return cmd.Execute(run).Build()
}
