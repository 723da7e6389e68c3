package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"roulette-bot/internal/model"
	"roulette-bot/internal/pkg/lock"
	"roulette-bot/internal/service"
)

const adminLockTimeout = 5 * time.Second

// Crediter is the part of service.AccountService the admin commands use.
type Crediter interface {
	UpdateBalance(ctx context.Context, telegramID int64, amount int64, txType string, description *string) (*model.User, error)
}

// AdminHandler handles admin-related commands.
type AdminHandler struct {
	accounts Crediter
	bettors  *lock.KeyedLock
	names    *Names
}

// NewAdminHandler creates a new AdminHandler. bettors must be the lock the
// roulette engine debits under.
func NewAdminHandler(accounts Crediter, bettors *lock.KeyedLock, names *Names) *AdminHandler {
	return &AdminHandler{
		accounts: accounts,
		bettors:  bettors,
		names:    names,
	}
}

// HandleAdd handles /radd <user_id> <amount>.
func (h *AdminHandler) HandleAdd(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	targetID, amount, err := parseAdminArgs(c.Args())
	if err != nil {
		return c.Reply(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), adminLockTimeout)
	defer cancel()

	desc := fmt.Sprintf("admin %d add", sender.ID)
	var user *model.User
	err = h.bettors.WithLock(ctx, targetID, func() error {
		var err error
		user, err = h.accounts.UpdateBalance(ctx, targetID, amount, model.TxTypeAdminAdd, &desc)
		return err
	})
	switch {
	case errors.Is(err, service.ErrUnknownBettor):
		return c.Reply("❌ Unknown user")
	case errors.Is(err, lock.ErrLockTimeout):
		return c.Reply("❌ The user is busy, try again")
	case err != nil:
		log.Error().Err(err).Int64("target_id", targetID).Msg("Admin credit failed")
		return c.Reply(msgInternal)
	}

	log.Info().
		Int64("admin_id", sender.ID).
		Int64("target_id", targetID).
		Int64("amount", amount).
		Str("operation", "admin_add").
		Msg("Admin operation executed")

	name := user.Username
	if name == "" {
		name = h.names.Lookup(targetID)
	}
	return c.Reply(fmt.Sprintf(
		"✅ Done\n\n"+
			"👤 User: %s (ID: %d)\n"+
			"➕ Added: %d points\n"+
			"💰 Balance: %d points",
		mention(name, targetID), targetID, amount, user.Balance,
	))
}

// parseAdminArgs parses <user_id> <amount>. The amount must be positive.
func parseAdminArgs(args []string) (int64, int64, error) {
	if len(args) < 2 {
		return 0, 0, errors.New("❌ Usage: /radd <user_id> <amount>\nExample: /radd 123456789 100")
	}

	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, errors.New("❌ The user id must be a number")
	}

	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		return 0, 0, errors.New("❌ The amount must be a whole number greater than 0")
	}

	return targetID, amount, nil
}
