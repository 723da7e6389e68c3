// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"roulette-bot/internal/game/roulette"
	"roulette-bot/internal/model"
	"roulette-bot/internal/service"
)

// Accounts is the part of service.AccountService the handlers use.
type Accounts interface {
	EnsureUser(ctx context.Context, telegramID int64, username string) (*model.User, bool, error)
	GetBalance(ctx context.Context, telegramID int64) (int64, error)
	RouletteNet(ctx context.Context, telegramID int64) (int64, error)
}

// Table is the part of roulette.Engine the handlers use.
type Table interface {
	Catalog() *roulette.Catalog
	PlaceWagerByAlias(ctx context.Context, tableID, bettorID, stake int64, alias string) (*roulette.Acknowledgment, error)
	ActiveSession(tableID int64) (roulette.SessionInfo, bool)
	TimeRemaining(tableID int64) (time.Duration, bool)
	StatisticsSummary() roulette.Summary
}

// RouletteHandler handles the table commands.
type RouletteHandler struct {
	table    Table
	accounts Accounts
	names    *Names
}

// NewRouletteHandler creates a new RouletteHandler.
func NewRouletteHandler(table Table, accounts Accounts, names *Names) *RouletteHandler {
	return &RouletteHandler{
		table:    table,
		accounts: accounts,
		names:    names,
	}
}

// HandleStart handles /start: it opens an account with the starting balance.
func (h *RouletteHandler) HandleStart(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	h.names.Remember(sender)

	user, created, err := h.accounts.EnsureUser(ctx, sender.ID, displayName(sender))
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to ensure user")
		return c.Reply(msgInternal)
	}
	if created {
		return c.Reply(fmt.Sprintf("🎰 Welcome %s! You start with %d points.\n\n%s",
			mention(displayName(sender), sender.ID), user.Balance, formatHelp()))
	}
	return c.Reply(fmt.Sprintf("💰 Balance: %d points", user.Balance))
}

// HandleInfo handles /roulette and /rinfo.
func (h *RouletteHandler) HandleInfo(c tele.Context) error {
	return c.Reply(formatHelp())
}

// HandleBets handles /rbets.
func (h *RouletteHandler) HandleBets(c tele.Context) error {
	return c.Reply(formatBets(h.table.Catalog()), tele.ModeHTML)
}

// HandleBet handles /rbet <amount> <bet_placement>.
func (h *RouletteHandler) HandleBet(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}
	h.names.Remember(sender)

	args := c.Args()
	if len(args) != 2 {
		return c.Reply(msgBetUsage, tele.ModeHTML)
	}

	balance, err := h.accounts.GetBalance(ctx, sender.ID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownBettor) {
			return c.Reply(msgNoAccount)
		}
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to get balance")
		return c.Reply(msgInternal)
	}

	amount, alias, err := parseBetArgs(args, balance)
	if err != nil {
		return c.Reply(err.Error(), tele.ModeHTML)
	}

	ack, err := h.table.PlaceWagerByAlias(ctx, chat.ID, sender.ID, amount, alias)
	if err != nil {
		if errors.Is(err, service.ErrUnknownBettor) {
			return c.Reply(msgNoAccount)
		}
		return c.Reply(wagerErrorMessage(err), tele.ModeHTML)
	}
	return c.Send(formatAck(ack, h.names.Lookup(sender.ID)), tele.ModeHTML)
}

// HandleTime handles /rtime.
func (h *RouletteHandler) HandleTime(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	info, ok := h.table.ActiveSession(chat.ID)
	if !ok {
		return c.Reply(msgNoRound)
	}
	remaining, ok := h.table.TimeRemaining(chat.ID)
	if !ok {
		return c.Reply(msgNoRound)
	}
	return c.Reply(formatTime(info, remaining))
}

// HandleStats handles /rstat and /rstatistics. In addition to the house
// balance it shows the caller's own roulette result.
func (h *RouletteHandler) HandleStats(c tele.Context) error {
	text := formatStats(h.table.StatisticsSummary())

	if sender := c.Sender(); sender != nil {
		net, err := h.accounts.RouletteNet(context.Background(), sender.ID)
		if err != nil {
			log.Debug().Err(err).Int64("user_id", sender.ID).Msg("Failed to get roulette result")
		} else {
			text += fmt.Sprintf("\n\nYour roulette result: %+d", net)
		}
	}
	return c.Reply(text)
}

func displayName(u *tele.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}
