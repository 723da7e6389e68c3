// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"roulette-bot/internal/config"
	"roulette-bot/internal/handler"
	"roulette-bot/internal/pkg/lock"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot    *tele.Bot
	cfg    *config.Config
	access *PrivateAccess

	rouletteHandler *handler.RouletteHandler
	adminHandler    *handler.AdminHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config   *config.Config
	Table    handler.Table
	Accounts interface {
		handler.Accounts
		handler.Crediter
	}
	Bettors  *lock.KeyedLock
	Names    *handler.Names
	Reporter *handler.TelegramReporter
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	timeout := deps.Config.Bot.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	teleBot, err := tele.NewBot(tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:             teleBot,
		cfg:             deps.Config,
		access:          NewPrivateAccess(),
		rouletteHandler: handler.NewRouletteHandler(deps.Table, deps.Accounts, deps.Names),
		adminHandler:    handler.NewAdminHandler(deps.Accounts, deps.Bettors, deps.Names),
	}

	if deps.Reporter != nil {
		deps.Reporter.SetSender(teleBot)
	}

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg, b.access))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.rouletteHandler.HandleStart)

	b.bot.Handle("/rbet", b.rouletteHandler.HandleBet)
	b.bot.Handle("/rbets", b.rouletteHandler.HandleBets)
	b.bot.Handle("/roulette", b.rouletteHandler.HandleInfo)
	b.bot.Handle("/rinfo", b.rouletteHandler.HandleInfo)
	b.bot.Handle("/rstat", b.rouletteHandler.HandleStats)
	b.bot.Handle("/rstatistics", b.rouletteHandler.HandleStats)
	b.bot.Handle("/rtime", b.rouletteHandler.HandleTime)

	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/radd", b.adminHandler.HandleAdd)
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
