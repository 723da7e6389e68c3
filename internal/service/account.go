// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"roulette-bot/internal/game/roulette"
	"roulette-bot/internal/model"
	"roulette-bot/internal/repository"
)

// Common errors for account operations.
var (
	ErrUnknownBettor = errors.New("unknown bettor")
)

// UserStore is the subset of repository.UserRepository the service needs.
type UserStore interface {
	GetByID(ctx context.Context, telegramID int64) (*model.User, error)
	GetOrCreate(ctx context.Context, telegramID int64, username string, balance int64) (*model.User, bool, error)
	UpdateBalance(ctx context.Context, telegramID int64, amount int64) (*model.User, error)
	UpdateUsername(ctx context.Context, telegramID int64, username string) error
}

// Journal is the subset of repository.TransactionRepository the service needs.
type Journal interface {
	Create(ctx context.Context, userID int64, amount int64, txType string, description *string) (*model.Transaction, error)
	NetByTypes(ctx context.Context, userID int64, types []string) (int64, error)
}

// AccountService handles user accounts and is the roulette balance ledger.
type AccountService struct {
	users           UserStore
	journal         Journal
	startingBalance int64
}

var _ roulette.BalanceLedger = (*AccountService)(nil)

// NewAccountService creates a new AccountService instance.
func NewAccountService(users UserStore, journal Journal, startingBalance int64) *AccountService {
	return &AccountService{
		users:           users,
		journal:         journal,
		startingBalance: startingBalance,
	}
}

// EnsureUser ensures a user exists, creating one with the starting balance if
// necessary. Returns the user and whether it was newly created.
func (s *AccountService) EnsureUser(ctx context.Context, telegramID int64, username string) (*model.User, bool, error) {
	user, created, err := s.users.GetOrCreate(ctx, telegramID, username, s.startingBalance)
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure user: %w", err)
	}

	if created {
		s.record(ctx, telegramID, s.startingBalance, model.TxTypeInitial, nil)
		return user, true, nil
	}

	if user.Username != username && username != "" {
		if err := s.users.UpdateUsername(ctx, telegramID, username); err != nil {
			log.Warn().Err(err).Int64("user_id", telegramID).Msg("Failed to update username")
		}
		user.Username = username
	}

	return user, false, nil
}

// GetBalance retrieves a user's current balance.
func (s *AccountService) GetBalance(ctx context.Context, telegramID int64) (int64, error) {
	user, err := s.users.GetByID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, fmt.Errorf("%w: %d", ErrUnknownBettor, telegramID)
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return user.Balance, nil
}

// CurrentBalance implements roulette.BalanceLedger.
func (s *AccountService) CurrentBalance(ctx context.Context, bettorID int64) (int64, error) {
	return s.GetBalance(ctx, bettorID)
}

// UpdateBalance adds amount (which may be negative) to a user's balance and
// journals the change.
func (s *AccountService) UpdateBalance(ctx context.Context, telegramID int64, amount int64, txType string, description *string) (*model.User, error) {
	user, err := s.users.UpdateBalance(ctx, telegramID, amount)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrUnknownBettor, telegramID)
		}
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	s.record(ctx, telegramID, amount, txType, description)
	return user, nil
}

// AdjustBalance implements roulette.BalanceLedger. The reason tag picks the
// journal entry type.
func (s *AccountService) AdjustBalance(ctx context.Context, bettorID int64, amount int64, reason string) error {
	desc := reason
	_, err := s.UpdateBalance(ctx, bettorID, amount, txTypeFor(reason), &desc)
	return err
}

// RouletteNet returns the user's net result over all roulette wagers and wins.
func (s *AccountService) RouletteNet(ctx context.Context, telegramID int64) (int64, error) {
	net, err := s.journal.NetByTypes(ctx, telegramID, []string{model.TxTypeRouletteBet, model.TxTypeRouletteWin})
	if err != nil {
		return 0, fmt.Errorf("failed to get roulette result: %w", err)
	}
	return net, nil
}

// record journals a balance change. The balance is already updated, so a
// journal failure is logged and not returned.
func (s *AccountService) record(ctx context.Context, telegramID, amount int64, txType string, description *string) {
	if _, err := s.journal.Create(ctx, telegramID, amount, txType, description); err != nil {
		log.Error().Err(err).
			Int64("user_id", telegramID).
			Int64("amount", amount).
			Str("type", txType).
			Msg("Failed to record transaction")
	}
}

func txTypeFor(reason string) string {
	switch reason {
	case roulette.ReasonBet:
		return model.TxTypeRouletteBet
	case roulette.ReasonWin:
		return model.TxTypeRouletteWin
	default:
		return model.TxTypeAdjustment
	}
}
