package corebot

import (
	"github.com/intrntsrfr/meido/pkg/mio/bot"
	"go.uber.org/zap"
)

func logApplicationCommandRan(b *Bot) func(cmd *bot.ApplicationCommandRan) {
	return func(cmd *bot.ApplicationCommandRan) {
		b.logger.Info("Command ran",
			zap.String("command", cmd.Interaction.Name()),
			zap.String("interactionID", cmd.Interaction.ID()),
			zap.String("channelID", cmd.Interaction.ChannelID()),
			zap.String("authorID", cmd.Interaction.AuthorID()),
		)
	}
}

func logApplicationCommandPanicked(b *Bot) func(cmd *bot.ApplicationCommandPanicked) {
	return func(cmd *bot.ApplicationCommandPanicked) {
		b.logger.Error("Command panicked",
			zap.String("command", cmd.Interaction.Name()),
			zap.String("interactionID", cmd.Interaction.ID()),
			zap.String("channelID", cmd.Interaction.ChannelID()),
			zap.String("authorID", cmd.Interaction.AuthorID()),
			zap.Any("reason", cmd.Reason),
		)
	}
}
