// Package model defines the data models for the roulette bot.
package model

import "time"

// User represents a Telegram user account.
type User struct {
	TelegramID int64     `db:"telegram_id"`
	Username   string    `db:"username"`
	Balance    int64     `db:"balance"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Transaction represents a balance change record.
type Transaction struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Amount      int64     `db:"amount"`
	Type        string    `db:"type"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// Transaction types for categorizing balance changes.
const (
	TxTypeInitial     = "initial"      // Initial balance on account creation
	TxTypeRouletteBet = "roulette_bet" // Stake debited when a wager is accepted
	TxTypeRouletteWin = "roulette_win" // Payout credited at round resolution
	TxTypeAdminAdd    = "admin_add"    // Admin added balance
	TxTypeAdjustment  = "adjustment"   // Any other ledger reason
)
