package roulette

import (
	"context"
	"time"
)

// Reason tags passed to the balance ledger.
const (
	ReasonBet = "roulette.createbet"
	ReasonWin = "roulette.winbet"
)

// BalanceLedger is the host's score ledger.
type BalanceLedger interface {
	// AdjustBalance adds a signed amount to the bettor's balance.
	// It fails if the bettor is unknown.
	AdjustBalance(ctx context.Context, bettorID int64, amount int64, reason string) error
	// CurrentBalance returns the bettor's balance.
	CurrentBalance(ctx context.Context, bettorID int64) (int64, error)
}

// DurationProvider returns the betting window of a table.
type DurationProvider interface {
	GameDuration(tableID int64) time.Duration
}

// DurationFunc adapts a function to DurationProvider.
type DurationFunc func(tableID int64) time.Duration

// GameDuration implements DurationProvider.
func (f DurationFunc) GameDuration(tableID int64) time.Duration { return f(tableID) }

// FixedDuration returns the same window for every table.
func FixedDuration(d time.Duration) DurationProvider {
	return DurationFunc(func(int64) time.Duration { return d })
}

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// RealScheduler schedules with time.AfterFunc.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
func (RealScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Reporter receives resolved rounds. Calls are fire-and-forget.
type Reporter interface {
	ReportRound(ctx context.Context, result *RoundResult)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, result *RoundResult)

// ReportRound implements Reporter.
func (f ReporterFunc) ReportRound(ctx context.Context, result *RoundResult) { f(ctx, result) }

// Observer is notified of table activity, e.g. for metrics.
type Observer interface {
	WagerAccepted(tableID int64, w Wager)
	WagerRejected(tableID int64, err error)
	RoundResolved(result *RoundResult)
}

type nopObserver struct{}

func (nopObserver) WagerAccepted(int64, Wager) {}
func (nopObserver) WagerRejected(int64, error) {}
func (nopObserver) RoundResolved(*RoundResult) {}
