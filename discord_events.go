package corebot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/dgraph-io/badger"
	"github.com/intrntsrfr/meido/pkg/utils"
	"github.com/intrntsrfr/meido/pkg/utils/builders"
	"go.uber.org/zap"
)

type Color int

const (
	ColorRed    Color = 0xff0000
	ColorGreen  Color = 0x00ff00
	ColorBlue   Color = 0x61d1ed
	ColorWhite  Color = 0xffffff
	ColorOrange Color = 0xf57f54
)

// logChannel resolves the configured channel for a log category, as a
// snowflake string ready for the session calls.
func logChannel(b *Bot, guildID, category string) (string, bool) {
	gid, err := parseID(guildID)
	if err != nil {
		return "", false
	}
	doc := b.db.Load(context.Background(), gid)
	id, ok := doc.Logs.Channel(category)
	if !ok {
		return "", false
	}
	return formatID(id), true
}

func disconnectHandler(b *Bot) func(*discordgo.Session, *discordgo.Disconnect) {
	return func(s *discordgo.Session, d *discordgo.Disconnect) {
		b.logger.Info("disconnected")
	}
}

func guildCreateHandler(b *Bot) func(*discordgo.Session, *discordgo.GuildCreate) {
	return func(s *discordgo.Session, d *discordgo.GuildCreate) {
		if len(d.Members) != d.MemberCount {
			_ = s.RequestGuildMembers(d.ID, "", 0, "", false)
			return
		}

		for _, mem := range d.Members {
			if err := b.cache.SetMember(mem); err != nil {
				b.logger.Error("failed to cache member", zap.Error(err))
			}
		}
	}
}

// guildDeleteHandler drops the guild's stored configuration when the bot is
// removed. An unavailable guild is an outage, not a removal, and keeps its
// record.
func guildDeleteHandler(b *Bot) func(*discordgo.Session, *discordgo.GuildDelete) {
	return func(s *discordgo.Session, d *discordgo.GuildDelete) {
		if d.Unavailable {
			return
		}

		gid, err := parseID(d.ID)
		if err != nil {
			return
		}
		if err := b.db.DeleteGuild(context.Background(), gid); err != nil {
			b.logger.Error("failed to delete guild record", zap.Error(err))
		}
	}
}

func guildMembersChunkHandler(b *Bot) func(*discordgo.Session, *discordgo.GuildMembersChunk) {
	return func(s *discordgo.Session, d *discordgo.GuildMembersChunk) {
		for _, mem := range d.Members {
			if err := b.cache.SetMember(mem); err != nil {
				b.logger.Error("failed to cache member", zap.Error(err))
			}
		}
	}
}

func guildMemberAddHandler(b *Bot) func(*discordgo.Session, *discordgo.GuildMemberAdd) {
	return func(s *discordgo.Session, d *discordgo.GuildMemberAdd) {
		if err := b.cache.SetMember(d.Member); err != nil {
			b.logger.Error("failed to cache member", zap.Error(err))
		}

		g, err := b.Bot.Discord.Guild(d.GuildID)
		if err != nil {
			return
		}

		gid, err := parseID(d.GuildID)
		if err != nil {
			return
		}
		doc := b.db.Load(context.Background(), gid)

		// auto role, split by account type
		roleID := doc.AutoRole.Member
		if d.User.Bot {
			roleID = doc.AutoRole.Bot
		}
		if roleID != nil {
			if err := s.GuildMemberRoleAdd(d.GuildID, d.User.ID, formatID(*roleID)); err != nil {
				b.logger.Error("failed to assign auto role", zap.Error(err))
			}
		}

		// welcome message
		if !d.User.Bot && doc.Welcome.ChannelID != nil {
			welcomeCh := formatID(*doc.Welcome.ChannelID)
			text := renderWelcome(doc.Welcome.Message, d.User, g)
			if doc.Welcome.Embed {
				embed := builders.NewEmbedBuilder().
					WithDescription(text).
					WithThumbnail(d.User.AvatarURL("256")).
					WithColor(int(ColorGreen))
				_, _ = s.ChannelMessageSendEmbed(welcomeCh, embed.Build())
			} else {
				_, _ = s.ChannelMessageSend(welcomeCh, text)
			}
		}

		memberLog, ok := logChannel(b, d.GuildID, "member")
		if !ok {
			return
		}

		ts := utils.IDToTimestamp(d.User.ID)
		embed := builders.NewEmbedBuilder().
			WithTitle("User Joined").
			WithThumbnail(d.User.AvatarURL("256")).
			AddField("User", fmt.Sprintf("%v\n%v", d.User.Mention(), d.User.String()), false).
			AddField("Creation date", fmt.Sprintf("<t:%v:R>", ts.Unix()), false).
			WithFooter(fmt.Sprintf("User ID: %v", d.User.ID), "").
			WithColor(int(ColorBlue))
		_, _ = s.ChannelMessageSendEmbed(memberLog, embed.Build())
	}
}

func guildMemberRemoveHandler(b *Bot) func(*discordgo.Session, *discordgo.GuildMemberRemove) {
	return func(s *discordgo.Session, d *discordgo.GuildMemberRemove) {
		defer func() {
			if err := b.cache.DeleteMember(d.GuildID, d.User.ID); err != nil {
				b.logger.Error("failed to remove cached member", zap.Error(err))
			}
		}()

		memberLog, ok := logChannel(b, d.GuildID, "member")
		if !ok {
			return
		}

		embed := builders.NewEmbedBuilder().
			WithTitle("User Left or Kicked").
			WithThumbnail(d.User.AvatarURL("256")).
			AddField("User", fmt.Sprintf("%v\n%v", d.User.Mention(), d.User.String()), false).
			WithFooter(fmt.Sprintf("User ID: %v", d.User.ID), "").
			WithColor(int(ColorOrange))

		if mem, err := b.cache.GetMember(d.GuildID, d.User.ID); err == nil {
			embed.AddField("Roles", formatRoleList(mem.Roles), false)
		} else if err != badger.ErrKeyNotFound {
			b.logger.Error("failed to get cached member", zap.Error(err))
		}

		_, _ = s.ChannelMessageSendEmbed(memberLog, embed.Build())
	}
}

func channelCreateHandler(b *Bot) func(*discordgo.Session, *discordgo.ChannelCreate) {
	return func(s *discordgo.Session, d *discordgo.ChannelCreate) {
		serverLog, ok := logChannel(b, d.GuildID, "server")
		if !ok {
			return
		}

		embed := builders.NewEmbedBuilder().
			WithTitle("Channel Created").
			AddField("Channel", fmt.Sprintf("<#%v> (%v)", d.ID, d.ID), false).
			WithColor(int(ColorGreen))
		_, _ = s.ChannelMessageSendEmbed(serverLog, embed.Build())
	}
}

func channelDeleteHandler(b *Bot) func(*discordgo.Session, *discordgo.ChannelDelete) {
	return func(s *discordgo.Session, d *discordgo.ChannelDelete) {
		serverLog, ok := logChannel(b, d.GuildID, "server")
		if !ok {
			return
		}

		embed := builders.NewEmbedBuilder().
			WithTitle("Channel Deleted").
			AddField("Channel", fmt.Sprintf("%v (%v)", d.Name, d.ID), false).
			WithColor(int(ColorRed))
		_, _ = s.ChannelMessageSendEmbed(serverLog, embed.Build())
	}
}

func messageCreateHandler(b *Bot) func(*discordgo.Session, *discordgo.MessageCreate) {
	return func(s *discordgo.Session, d *discordgo.MessageCreate) {
		if d.Author == nil || d.Author.Bot || d.GuildID == "" {
			return
		}

		// image-muted users get their attachment posts removed
		if len(d.Attachments) > 0 {
			gid, err := parseID(d.GuildID)
			if err == nil {
				muted, _ := b.db.Get(context.Background(), gid, false, "image_muted", d.Author.ID).(bool)
				if muted {
					if err := s.ChannelMessageDelete(d.ChannelID, d.ID); err != nil {
						b.logger.Error("failed to remove image-muted post", zap.Error(err))
					}
					return
				}
			}
		}

		if err := b.cache.SetMessage(NewCachedMessage(d.Message)); err != nil {
			b.logger.Error("failed to cache message", zap.Error(err))
		}
	}
}

func messageDeleteHandler(b *Bot) func(*discordgo.Session, *discordgo.MessageDelete) {
	return func(s *discordgo.Session, d *discordgo.MessageDelete) {
		msg, err := b.cache.GetMessage(d.GuildID, d.ChannelID, d.ID)
		if err != nil {
			return
		}

		messageLog, ok := logChannel(b, d.GuildID, "message")
		if !ok {
			return
		}

		embed := builders.NewEmbedBuilder().
			WithTitle("Message Deleted").
			AddField("User", fmt.Sprintf("%v\n%v\n%v", msg.Message.Author.Mention(), msg.Message.Author.String(), msg.Message.Author.ID), true).
			AddField("Channel", fmt.Sprintf("<#%v> (%v)", d.ChannelID, d.ChannelID), false).
			WithFooter(fmt.Sprintf("Message ID: %v", d.ID), "").
			WithColor(int(ColorWhite))
		reply := builders.NewMessageSendBuilder()

		if msg.Message.Content != "" {
			descStr := msg.Message.Content
			if len(descStr) > 1024 {
				descStr = "Content too long, so it's put in the attached .txt file"
				reply.AddTextFile("deleted_content.txt", msg.Message.Content)
			}
			embed.WithDescription(descStr)
		}

		if len(msg.Attachments) > 0 {
			embed.AddField("Attachments", fmt.Sprint(len(msg.Attachments)), false)
		}

		reply.Embed(embed.Build())
		_, _ = s.ChannelMessageSendComplex(messageLog, reply.Build())
	}
}

func messageUpdateHandler(b *Bot) func(*discordgo.Session, *discordgo.MessageUpdate) {
	return func(s *discordgo.Session, d *discordgo.MessageUpdate) {
		// an empty content update means an embed or image resolved, not an edit
		if d.Message.Content == "" || d.Author == nil || d.Author.Bot {
			return
		}

		oldMsg, err := b.cache.GetMessage(d.GuildID, d.ChannelID, d.ID)
		if err != nil {
			return
		}
		if oldMsg.Message.Content == d.Content {
			return
		}

		defer func() {
			oldMsg.Message.Content = d.Content
			if err := b.cache.SetMessage(oldMsg); err != nil {
				b.logger.Error("failed to update cached message", zap.Error(err))
			}
		}()

		messageLog, ok := logChannel(b, d.GuildID, "message")
		if !ok {
			return
		}

		embed := builders.NewEmbedBuilder().
			WithTitle("Message Edited").
			AddField("User", fmt.Sprintf("%v\n%v\n%v", d.Author.Mention(), d.Author.String(), d.Author.ID), true).
			AddField("Channel", fmt.Sprintf("<#%v> (%v)", d.ChannelID, d.ChannelID), false).
			WithFooter(fmt.Sprintf("Message ID: %v", d.ID), "").
			WithColor(int(ColorBlue))
		reply := builders.NewMessageSendBuilder()

		if len(oldMsg.Message.Content) > 1024 {
			embed.AddField("Old content", "Content too long, so it's put in the attached .txt file", false)
			reply.AddTextFile("old_content.txt", oldMsg.Message.Content)
		} else {
			embed.AddField("Old content", oldMsg.Message.Content, false)
		}

		if len(d.Content) > 1024 {
			embed.AddField("New content", "Content too long, so it's put in the attached .txt file", false)
			reply.AddTextFile("new_content.txt", d.Content)
		} else {
			embed.AddField("New content", d.Content, false)
		}

		reply.Embed(embed.Build())
		_, _ = s.ChannelMessageSendComplex(messageLog, reply.Build())
	}
}

func messageReactionAddHandler(b *Bot) func(*discordgo.Session, *discordgo.MessageReactionAdd) {
	return func(s *discordgo.Session, d *discordgo.MessageReactionAdd) {
		roleID, ok := reactionRole(b, d.MessageReaction)
		if !ok {
			return
		}
		if err := s.GuildMemberRoleAdd(d.GuildID, d.UserID, roleID); err != nil {
			b.logger.Error("failed to grant reaction role", zap.Error(err))
		}
	}
}

func messageReactionRemoveHandler(b *Bot) func(*discordgo.Session, *discordgo.MessageReactionRemove) {
	return func(s *discordgo.Session, d *discordgo.MessageReactionRemove) {
		roleID, ok := reactionRole(b, d.MessageReaction)
		if !ok {
			return
		}
		if err := s.GuildMemberRoleRemove(d.GuildID, d.UserID, roleID); err != nil {
			b.logger.Error("failed to revoke reaction role", zap.Error(err))
		}
	}
}

// reactionRole looks up the role bound to a reaction, if any.
func reactionRole(b *Bot, r *discordgo.MessageReaction) (string, bool) {
	if r.GuildID == "" {
		return "", false
	}
	gid, err := parseID(r.GuildID)
	if err != nil {
		return "", false
	}

	doc := b.db.Load(context.Background(), gid)
	bindings, ok := doc.ReactionRoles[r.MessageID]
	if !ok {
		return "", false
	}
	roleID, ok := bindings[r.Emoji.APIName()]
	if !ok {
		return "", false
	}
	return formatID(roleID), true
}

func voiceStateUpdateHandler(b *Bot) func(*discordgo.Session, *discordgo.VoiceStateUpdate) {
	return func(s *discordgo.Session, d *discordgo.VoiceStateUpdate) {
		voiceLog, ok := logChannel(b, d.GuildID, "voice")
		if !ok {
			return
		}

		var title, desc string
		switch {
		case d.BeforeUpdate == nil && d.ChannelID != "":
			title = "Voice Join"
			desc = fmt.Sprintf("<@%v> joined <#%v>", d.UserID, d.ChannelID)
		case d.BeforeUpdate != nil && d.ChannelID == "":
			title = "Voice Leave"
			desc = fmt.Sprintf("<@%v> left <#%v>", d.UserID, d.BeforeUpdate.ChannelID)
		case d.BeforeUpdate != nil && d.BeforeUpdate.ChannelID != d.ChannelID:
			title = "Voice Move"
			desc = fmt.Sprintf("<@%v> moved from <#%v> to <#%v>", d.UserID, d.BeforeUpdate.ChannelID, d.ChannelID)
		default:
			return
		}

		embed := builders.NewEmbedBuilder().
			WithTitle(title).
			WithDescription(desc).
			WithColor(int(ColorBlue))
		_, _ = s.ChannelMessageSendEmbed(voiceLog, embed.Build())
	}
}
