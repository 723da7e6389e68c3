package roulette

import "time"

// Status is the lifecycle state of a table's round.
type Status int

const (
	// StatusIdle means the table has no round.
	StatusIdle Status = iota
	// StatusOpen means the round accepts wagers and its countdown is armed.
	StatusOpen
	// StatusResolving means the countdown fired and the draw is in progress.
	StatusResolving
	// StatusClosed is terminal. A closed session is never reused.
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusOpen:
		return "open"
	case StatusResolving:
		return "resolving"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is one betting window on a table, from the first wager to resolution.
// All fields are guarded by the owning table's mutex.
type Session struct {
	ID       string
	TableID  int64
	OpenedAt time.Time
	Deadline time.Time

	status Status
	wagers []Wager
	timer  Timer
}

func newSession(id string, tableID int64, openedAt time.Time, d time.Duration) *Session {
	return &Session{
		ID:       id,
		TableID:  tableID,
		OpenedAt: openedAt,
		Deadline: openedAt.Add(d),
		status:   StatusOpen,
	}
}

// SessionInfo is a read-only view of an open round.
type SessionInfo struct {
	RoundID  string
	TableID  int64
	Status   Status
	Wagers   int
	Staked   int64
	OpenedAt time.Time
	Deadline time.Time
}

func (s *Session) info() SessionInfo {
	var staked int64
	for _, w := range s.wagers {
		staked += w.Stake
	}
	return SessionInfo{
		RoundID:  s.ID,
		TableID:  s.TableID,
		Status:   s.status,
		Wagers:   len(s.wagers),
		Staked:   staked,
		OpenedAt: s.OpenedAt,
		Deadline: s.Deadline,
	}
}

// Acknowledgment describes an accepted wager for the caller to render.
type Acknowledgment struct {
	RoundID     string
	TableID     int64
	BettorID    int64
	Stake       int64
	Bet         *BetDefinition
	Multiplier  int
	Balance     int64 // bettor balance after the debit
	OpenedRound bool
	Deadline    time.Time
	Duration    time.Duration
}

// PotentialPayout is the credit the wager earns if its bet wins.
func (a *Acknowledgment) PotentialPayout() int64 {
	return a.Stake * int64(a.Multiplier)
}

// RoundResult is the summary of a resolved round.
type RoundResult struct {
	RoundID     string    `json:"roundId"`
	TableID     int64     `json:"tableId"`
	Pocket      Pocket    `json:"pocket"`
	Color       Color     `json:"color"`
	Left        []Pocket  `json:"left"`
	Right       []Pocket  `json:"right"`
	Payouts     []Payout  `json:"payouts"`
	TotalStaked int64     `json:"totalStaked"`
	TotalPaid   int64     `json:"totalPaid"`
	WagerCount  int       `json:"wagerCount"`
	OpenedAt    time.Time `json:"openedAt"`
	ResolvedAt  time.Time `json:"resolvedAt"`
}

// NoWinners reports whether nobody was paid this round.
func (r *RoundResult) NoWinners() bool {
	return len(r.Payouts) == 0
}
