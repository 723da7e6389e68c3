package handler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"roulette-bot/internal/game/roulette"
)

// MessageDeleteInterval is how long result messages stay in the chat.
const MessageDeleteInterval = 30 * time.Minute

// Names remembers the display name of every bettor seen by the handlers.
type Names struct {
	mu    sync.RWMutex
	names map[int64]string
}

// NewNames creates an empty directory.
func NewNames() *Names {
	return &Names{names: make(map[int64]string)}
}

// Remember stores the name of a Telegram user.
func (n *Names) Remember(u *tele.User) {
	if u == nil {
		return
	}
	name := u.Username
	if name == "" {
		name = u.FirstName
	}
	n.mu.Lock()
	n.names[u.ID] = name
	n.mu.Unlock()
}

// Lookup returns the stored name or "".
func (n *Names) Lookup(id int64) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.names[id]
}

// Sender is the part of *tele.Bot the reporter uses.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

// trackedMessage is a sent message due for deletion.
type trackedMessage struct {
	chatID    int64
	messageID int
	sentAt    time.Time
}

// TelegramReporter posts round results to the table's chat.
type TelegramReporter struct {
	names *Names
	now   func() time.Time

	mu      sync.Mutex
	sender  Sender
	tracked []trackedMessage
}

var _ roulette.Reporter = (*TelegramReporter)(nil)

// NewTelegramReporter creates a reporter. The sender can be attached later
// with SetSender once the bot exists.
func NewTelegramReporter(names *Names) *TelegramReporter {
	return &TelegramReporter{names: names, now: time.Now}
}

// SetSender attaches the bot used to deliver messages.
func (r *TelegramReporter) SetSender(s Sender) {
	r.mu.Lock()
	r.sender = s
	r.mu.Unlock()
}

// ReportRound implements roulette.Reporter.
func (r *TelegramReporter) ReportRound(_ context.Context, result *roulette.RoundResult) {
	r.mu.Lock()
	sender := r.sender
	r.mu.Unlock()
	if sender == nil {
		log.Warn().Str("round_id", result.RoundID).Msg("No Telegram sender attached, result not posted")
		return
	}

	text := formatResult(result, r.names.Lookup)
	msg, err := sender.Send(tele.ChatID(result.TableID), text, tele.ModeHTML)
	if err != nil {
		log.Error().Err(err).
			Int64("table_id", result.TableID).
			Str("round_id", result.RoundID).
			Msg("Failed to post round result")
		return
	}
	if msg != nil {
		r.track(result.TableID, msg.ID)
	}
}

func (r *TelegramReporter) track(chatID int64, messageID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracked = append(r.tracked, trackedMessage{chatID: chatID, messageID: messageID, sentAt: r.now()})
}

// StartCleaner deletes posted results older than MessageDeleteInterval until
// ctx is cancelled.
func (r *TelegramReporter) StartCleaner(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.cleanOldMessages()
			}
		}
	}()
}

func (r *TelegramReporter) cleanOldMessages() {
	r.mu.Lock()
	sender := r.sender
	now := r.now()
	var due, remaining []trackedMessage
	for _, m := range r.tracked {
		if now.Sub(m.sentAt) >= MessageDeleteInterval {
			due = append(due, m)
		} else {
			remaining = append(remaining, m)
		}
	}
	r.tracked = remaining
	r.mu.Unlock()

	if sender == nil {
		return
	}
	for _, m := range due {
		err := sender.Delete(&tele.Message{ID: m.messageID, Chat: &tele.Chat{ID: m.chatID}})
		if err != nil {
			log.Debug().Err(err).Int("msg_id", m.messageID).Msg("Failed to delete old message")
		}
	}
}
