package corebot

import (
	"context"

	"github.com/intrntsrfr/meido/pkg/mio"
	"github.com/intrntsrfr/meido/pkg/mio/bot"
	"github.com/intrntsrfr/meido/pkg/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/intrntsrfr/corebot/guildstore"
)

type Bot struct {
	Bot    *bot.Bot
	logger mio.Logger
	config *utils.Config
	db     *guildstore.Store
	cache  *Cache
}

func NewBot(config *utils.Config, backend guildstore.Backend) *Bot {
	logger := newLogger("corebot", zapcore.InfoLevel)

	b := bot.NewBotBuilder(config).
		WithDefaultHandlers().
		WithLogger(logger).
		Build()

	cache, err := NewCache("./data/cache", logger)
	if err != nil {
		panic("failed to create cache")
	}

	return &Bot{
		Bot:    b,
		logger: logger,
		config: config,
		db:     guildstore.NewStore(backend, logger.log),
		cache:  cache,
	}
}

func (b *Bot) Run(ctx context.Context) error {
	b.registerModules()
	b.registerDiscordHandlers()
	b.registerMioHandlers()
	return b.Bot.Run(ctx)
}

func (b *Bot) Close() {
	b.Bot.Close()
	if err := b.cache.Close(); err != nil {
		b.logger.Error("failed to close cache", zap.Error(err))
	}
	if err := b.db.Close(); err != nil {
		b.logger.Error("failed to close guild store", zap.Error(err))
	}
}

func (b *Bot) registerModules() {
	modules := []bot.Module{
		NewModule(b.Bot, b.db, b.logger),
	}
	for _, mod := range modules {
		b.Bot.RegisterModule(mod)
	}
}

func (b *Bot) registerDiscordHandlers() {
	b.Bot.Discord.AddEventHandler(disconnectHandler(b))
	b.Bot.Discord.AddEventHandler(guildCreateHandler(b))
	b.Bot.Discord.AddEventHandler(guildDeleteHandler(b))
	b.Bot.Discord.AddEventHandler(guildMemberAddHandler(b))
	b.Bot.Discord.AddEventHandler(guildMemberRemoveHandler(b))
	b.Bot.Discord.AddEventHandler(guildMembersChunkHandler(b))
	b.Bot.Discord.AddEventHandler(channelCreateHandler(b))
	b.Bot.Discord.AddEventHandler(channelDeleteHandler(b))
	b.Bot.Discord.AddEventHandler(messageCreateHandler(b))
	b.Bot.Discord.AddEventHandler(messageDeleteHandler(b))
	b.Bot.Discord.AddEventHandler(messageUpdateHandler(b))
	b.Bot.Discord.AddEventHandler(messageReactionAddHandler(b))
	b.Bot.Discord.AddEventHandler(messageReactionRemoveHandler(b))
	b.Bot.Discord.AddEventHandler(voiceStateUpdateHandler(b))
}

func (b *Bot) registerMioHandlers() {
	b.Bot.AddHandler(logApplicationCommandPanicked(b))
	b.Bot.AddHandler(logApplicationCommandRan(b))
}
