package roulette

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"roulette-bot/internal/pkg/lock"
)

const (
	// DefaultGameDuration is the betting window used when no provider is configured.
	DefaultGameDuration = 15 * time.Second
	// DefaultNeighborCount is how many pockets on each side of the winner are reported.
	DefaultNeighborCount = 2

	settleTimeout = 10 * time.Second
)

// Dependencies wires an Engine to its collaborators.
// Ledger is required. The rest have defaults.
type Dependencies struct {
	Catalog       *Catalog
	Wheel         *Wheel
	Statistics    *Statistics
	Ledger        BalanceLedger
	Durations     DurationProvider
	Scheduler     Scheduler
	Reporter      Reporter
	Observer      Observer
	Clock         func() time.Time
	NeighborCount int
	// Bettors serialises balance changes per bettor. Share it with any other
	// code that moves the same balances.
	Bettors *lock.KeyedLock
}

type table struct {
	mu      sync.Mutex
	session *Session // nil unless a round is open
}

// Engine runs roulette rounds on any number of tables.
type Engine struct {
	catalog   *Catalog
	wheel     *Wheel
	stats     *Statistics
	ledger    BalanceLedger
	durations DurationProvider
	scheduler Scheduler
	reporter  Reporter
	observer  Observer
	now       func() time.Time
	neighbors int

	bettors *lock.KeyedLock

	mu     sync.Mutex
	tables map[int64]*table
}

// NewEngine creates an Engine.
func NewEngine(deps Dependencies) (*Engine, error) {
	if deps.Ledger == nil {
		return nil, errors.New("roulette: balance ledger is required")
	}
	if deps.Catalog == nil {
		c, err := NewCatalog()
		if err != nil {
			return nil, fmt.Errorf("failed to build bet catalog: %w", err)
		}
		deps.Catalog = c
	}
	if deps.Wheel == nil {
		deps.Wheel = NewWheel(nil)
	}
	if deps.Statistics == nil {
		deps.Statistics = NewStatistics(DefaultHistoryCapacity)
	}
	if deps.Durations == nil {
		deps.Durations = FixedDuration(DefaultGameDuration)
	}
	if deps.Scheduler == nil {
		deps.Scheduler = RealScheduler{}
	}
	if deps.Reporter == nil {
		deps.Reporter = ReporterFunc(func(context.Context, *RoundResult) {})
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Bettors == nil {
		deps.Bettors = lock.NewKeyedLock()
	}
	if deps.NeighborCount < 0 {
		deps.NeighborCount = 0
	} else if deps.NeighborCount == 0 {
		deps.NeighborCount = DefaultNeighborCount
	}

	return &Engine{
		catalog:   deps.Catalog,
		wheel:     deps.Wheel,
		stats:     deps.Statistics,
		ledger:    deps.Ledger,
		durations: deps.Durations,
		scheduler: deps.Scheduler,
		reporter:  deps.Reporter,
		observer:  deps.Observer,
		now:       deps.Clock,
		neighbors: deps.NeighborCount,
		bettors:   deps.Bettors,
		tables:    make(map[int64]*table),
	}, nil
}

// Catalog returns the engine's bet catalog.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Wheel returns the engine's wheel.
func (e *Engine) Wheel() *Wheel { return e.wheel }

// Statistics returns the shared house ledger.
func (e *Engine) Statistics() *Statistics { return e.stats }

func (e *Engine) table(tableID int64) *table {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tables[tableID]
	if !ok {
		t = &table{}
		e.tables[tableID] = t
	}
	return t
}

func (e *Engine) lookup(tableID int64) (*table, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tables[tableID]
	return t, ok
}

// ResolveBet looks up a bet placement by alias.
func (e *Engine) ResolveBet(alias string) (*BetDefinition, error) {
	return e.catalog.Resolve(alias)
}

// PlaceWagerByAlias resolves alias and places the wager.
func (e *Engine) PlaceWagerByAlias(ctx context.Context, tableID, bettorID, stake int64, alias string) (*Acknowledgment, error) {
	bet, err := e.catalog.Resolve(alias)
	if err != nil {
		e.observer.WagerRejected(tableID, err)
		return nil, err
	}
	return e.PlaceWager(ctx, tableID, bettorID, stake, bet)
}

// PlaceWager debits the stake and adds the wager to the table's open round,
// opening a new round if the table has none. The round that opens is
// resolved by the scheduler after the table's configured duration.
func (e *Engine) PlaceWager(ctx context.Context, tableID, bettorID, stake int64, bet *BetDefinition) (*Acknowledgment, error) {
	ack, err := e.placeWager(ctx, tableID, bettorID, stake, bet)
	if err != nil {
		e.observer.WagerRejected(tableID, err)
		return nil, err
	}
	return ack, nil
}

func (e *Engine) placeWager(ctx context.Context, tableID, bettorID, stake int64, bet *BetDefinition) (*Acknowledgment, error) {
	if stake <= 0 {
		return nil, ErrInvalidStake
	}
	if bet == nil {
		return nil, ErrUnknownAlias
	}

	t := e.table(tableID)
	t.mu.Lock()
	defer t.mu.Unlock()

	var balance int64
	err := e.bettors.WithLock(ctx, bettorID, func() error {
		current, err := e.ledger.CurrentBalance(ctx, bettorID)
		if err != nil {
			return fmt.Errorf("failed to get balance: %w", err)
		}
		if current < stake {
			return ErrInsufficientBalance
		}
		if err := e.ledger.AdjustBalance(ctx, bettorID, -stake, ReasonBet); err != nil {
			return fmt.Errorf("failed to debit stake: %w", err)
		}
		balance = current - stake
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := e.now()
	s, err := t.open()
	opened := false
	if errors.Is(err, ErrNoActiveSession) {
		d := e.durations.GameDuration(tableID)
		if d <= 0 {
			d = DefaultGameDuration
		}
		s = newSession(uuid.NewString(), tableID, now, d)
		t.session = s
		opened = true
	}

	w := Wager{BettorID: bettorID, Stake: stake, Bet: bet, PlacedAt: now}
	s.wagers = append(s.wagers, w)
	e.stats.RecordStake(stake)

	duration := s.Deadline.Sub(s.OpenedAt)
	if opened {
		s.timer = e.scheduler.AfterFunc(duration, func() {
			e.resolve(tableID, s)
		})
		log.Info().
			Int64("table_id", tableID).
			Str("round_id", s.ID).
			Dur("duration", duration).
			Msg("Roulette round opened")
	}

	e.observer.WagerAccepted(tableID, w)
	log.Debug().
		Int64("table_id", tableID).
		Int64("bettor_id", bettorID).
		Int64("stake", stake).
		Str("bet", bet.Label).
		Msg("Wager accepted")

	return &Acknowledgment{
		RoundID:     s.ID,
		TableID:     tableID,
		BettorID:    bettorID,
		Stake:       stake,
		Bet:         bet,
		Multiplier:  bet.Multiplier,
		Balance:     balance,
		OpenedRound: opened,
		Deadline:    s.Deadline,
		Duration:    duration,
	}, nil
}

// open returns the table's round if it still accepts wagers.
// The caller holds t.mu.
func (t *table) open() (*Session, error) {
	if t.session == nil || t.session.status != StatusOpen {
		return nil, ErrNoActiveSession
	}
	return t.session, nil
}

// IsSessionActive reports whether the table has a round accepting wagers.
func (e *Engine) IsSessionActive(tableID int64) bool {
	t, ok := e.lookup(tableID)
	if !ok {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.open()
	return err == nil
}

// ActiveSession returns a view of the table's open round.
func (e *Engine) ActiveSession(tableID int64) (SessionInfo, bool) {
	t, ok := e.lookup(tableID)
	if !ok {
		return SessionInfo{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.open()
	if err != nil {
		return SessionInfo{}, false
	}
	return s.info(), true
}

// TimeRemaining returns how long the table's open round keeps accepting wagers.
func (e *Engine) TimeRemaining(tableID int64) (time.Duration, bool) {
	info, ok := e.ActiveSession(tableID)
	if !ok {
		return 0, false
	}
	remaining := info.Deadline.Sub(e.now())
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// Summary is the house view of the statistics ledger.
type Summary struct {
	HouseBalance int64              `json:"houseBalance"`
	Report       DistributionReport `json:"report"`
}

// StatisticsSummary returns the house balance and the outcome distribution.
func (e *Engine) StatisticsSummary() Summary {
	return Summary{
		HouseBalance: e.stats.HouseBalance(),
		Report:       e.stats.DistributionReport(),
	}
}

// SettleNow resolves the table's open round without waiting for its countdown.
func (e *Engine) SettleNow(tableID int64) (*RoundResult, error) {
	t, ok := e.lookup(tableID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	t.mu.Lock()
	s, err := t.open()
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}

	result, ok := e.resolve(tableID, s)
	if !ok {
		return nil, ErrNoActiveSession
	}
	return result, nil
}

// ResolveAll settles every open round, e.g. before shutdown.
func (e *Engine) ResolveAll() []*RoundResult {
	e.mu.Lock()
	ids := make([]int64, 0, len(e.tables))
	for id := range e.tables {
		ids = append(ids, id)
	}
	e.mu.Unlock()

	var results []*RoundResult
	for _, id := range ids {
		if r, err := e.SettleNow(id); err == nil {
			results = append(results, r)
		}
	}
	return results
}

// resolve runs the Open to Closed transition for s exactly once.
// A second call for the same session, e.g. a duplicate timer fire, returns false.
func (e *Engine) resolve(tableID int64, s *Session) (*RoundResult, bool) {
	t, ok := e.lookup(tableID)
	if !ok {
		return nil, false
	}

	t.mu.Lock()
	if t.session != s || s.status != StatusOpen {
		t.mu.Unlock()
		return nil, false
	}
	s.status = StatusResolving
	t.session = nil
	if s.timer != nil {
		s.timer.Stop()
	}
	wagers := s.wagers
	s.wagers = nil
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()

	pocket := e.wheel.Draw()
	color := e.wheel.ColorOf(pocket)
	settlement := SettleWagers(wagers, pocket)

	payouts := make([]Payout, 0, len(settlement.Payouts))
	var paid int64
	for _, p := range settlement.Payouts {
		err := e.bettors.WithLock(ctx, p.BettorID, func() error {
			return e.ledger.AdjustBalance(ctx, p.BettorID, p.Amount, ReasonWin)
		})
		if err != nil {
			log.Error().Err(err).
				Int64("table_id", tableID).
				Str("round_id", s.ID).
				Int64("bettor_id", p.BettorID).
				Int64("amount", p.Amount).
				Msg("Failed to credit roulette payout")
			continue
		}
		paid += p.Amount
		payouts = append(payouts, p)
	}

	e.stats.RecordRound(settlement.TotalStaked, paid, pocket, color)

	left, right := e.wheel.Neighbors(pocket, e.neighbors)
	result := &RoundResult{
		RoundID:     s.ID,
		TableID:     tableID,
		Pocket:      pocket,
		Color:       color,
		Left:        left,
		Right:       right,
		Payouts:     payouts,
		TotalStaked: settlement.TotalStaked,
		TotalPaid:   paid,
		WagerCount:  len(wagers),
		OpenedAt:    s.OpenedAt,
		ResolvedAt:  e.now(),
	}

	t.mu.Lock()
	s.status = StatusClosed
	t.mu.Unlock()

	log.Info().
		Int64("table_id", tableID).
		Str("round_id", s.ID).
		Str("pocket", pocket.String()).
		Str("color", string(color)).
		Int("wagers", len(wagers)).
		Int64("staked", settlement.TotalStaked).
		Int64("paid", paid).
		Msg("Roulette round resolved")

	e.observer.RoundResolved(result)
	e.reporter.ReportRound(ctx, result)
	return result, true
}
