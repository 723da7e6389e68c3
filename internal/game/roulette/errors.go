package roulette

import "errors"

// Errors returned by the roulette table.
var (
	// ErrUnknownAlias is returned when a bet placement is not in the catalog.
	ErrUnknownAlias = errors.New("unknown bet placement")
	// ErrInsufficientBalance is returned when the stake exceeds the bettor's balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidStake is returned for non-positive stakes.
	ErrInvalidStake = errors.New("stake must be a positive whole number")
	// ErrNoActiveSession signals that a table has no round accepting wagers.
	ErrNoActiveSession = errors.New("no active session on this table")
	// ErrDuplicateAlias is returned by NewCatalog when two bets share an alias.
	ErrDuplicateAlias = errors.New("duplicate bet alias")
)
