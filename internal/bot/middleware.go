package bot

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"roulette-bot/internal/config"
)

// PrivateAccess remembers users who have played at a whitelisted table.
// Only they may talk to the bot in a private chat when a whitelist is set.
type PrivateAccess struct {
	mu    sync.RWMutex
	users map[int64]struct{}
}

// NewPrivateAccess creates an empty set.
func NewPrivateAccess() *PrivateAccess {
	return &PrivateAccess{users: make(map[int64]struct{})}
}

// Allow marks a user as allowed in private chat.
func (p *PrivateAccess) Allow(userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[userID] = struct{}{}
}

// Allowed reports whether a user may use private chat.
func (p *PrivateAccess) Allowed(userID int64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.users[userID]
	return ok
}

// WhitelistMiddleware drops updates from tables that are not whitelisted.
func WhitelistMiddleware(cfg *config.Config, access *PrivateAccess) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			sender := c.Sender()

			if chat == nil || sender == nil {
				return nil
			}

			if chat.Type == tele.ChatPrivate {
				if len(cfg.Whitelist.Chats) == 0 || access.Allowed(sender.ID) {
					return next(c)
				}
				log.Debug().
					Int64("user_id", sender.ID).
					Msg("Ignoring private chat from user not seen at a table")
				return nil
			}

			if !cfg.IsChatAllowed(chat.ID) {
				log.Debug().
					Int64("chat_id", chat.ID).
					Msg("Ignoring command from non-whitelisted chat")
				return nil
			}

			access.Allow(sender.ID)
			return next(c)
		}
	}
}

// AdminMiddleware rejects commands from users outside the admin list.
func AdminMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}

			if !cfg.IsAdmin(sender.ID) {
				log.Warn().
					Int64("user_id", sender.ID).
					Str("command", c.Text()).
					Msg("Non-admin attempted admin command")
				return c.Reply("❌ Permission denied: admin only")
			}

			return next(c)
		}
	}
}

// LoggingMiddleware logs every command with its handling time.
func LoggingMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			err := next(c)

			logEvent := log.Debug()
			if err != nil {
				logEvent = log.Warn().Err(err)
			}
			if sender := c.Sender(); sender != nil {
				logEvent = logEvent.
					Int64("user_id", sender.ID).
					Str("username", sender.Username)
			}
			if chat := c.Chat(); chat != nil {
				logEvent = logEvent.
					Int64("chat_id", chat.ID).
					Str("chat_type", string(chat.Type))
			}
			logEvent.
				Str("text", c.Text()).
				Dur("took", time.Since(start)).
				Msg("Handled message")

			return err
		}
	}
}

// RecoveryMiddleware turns a handler panic into an error reply.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Str("text", c.Text()).
						Msg("Recovered from panic in handler")
					err = c.Reply("❌ Something went wrong, please try again later")
				}
			}()
			return next(c)
		}
	}
}
