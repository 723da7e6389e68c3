package roulette

import (
	"fmt"
	"sync"
)

// DefaultHistoryCapacity is the number of outcomes kept for the distribution report.
const DefaultHistoryCapacity = 400

// Outcome is one resolved spin.
type Outcome struct {
	Pocket Pocket `json:"pocket"`
	Color  Color  `json:"color"`
}

// Snapshot is the persisted form of the statistics ledger.
type Snapshot struct {
	HouseBalance int64     `json:"casinoBalance"`
	TotalWagered int64     `json:"totalWagered"`
	TotalPaid    int64     `json:"totalPaid"`
	Rounds       int64     `json:"rounds"`
	History      []Outcome `json:"history"`
}

// PocketTally counts how often one pocket appears in the history.
type PocketTally struct {
	Pocket Pocket `json:"pocket"`
	Count  int    `json:"count"`
}

// DistributionReport summarises the retained history.
type DistributionReport struct {
	Samples  int           `json:"samples"`
	ByPocket []PocketTally `json:"byPocket"` // wheel order
	ByColor  map[Color]int `json:"byColor"`
}

// Statistics is the house ledger shared by all tables.
type Statistics struct {
	mu           sync.Mutex
	capacity     int
	houseBalance int64
	totalWagered int64
	totalPaid    int64
	rounds       int64
	history      []Outcome
}

// NewStatistics creates an empty ledger keeping at most capacity outcomes.
// A non-positive capacity falls back to DefaultHistoryCapacity.
func NewStatistics(capacity int) *Statistics {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &Statistics{
		capacity: capacity,
		history:  make([]Outcome, 0, capacity),
	}
}

// RecordStake adds an accepted stake to the house balance.
func (s *Statistics) RecordStake(amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.houseBalance += amount
}

// RecordRound rolls a resolved round into the ledger. Stakes were already
// added by RecordStake, so only the payouts move the house balance here.
func (s *Statistics) RecordRound(totalStaked, totalPaid int64, pocket Pocket, color Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.houseBalance -= totalPaid
	s.totalWagered += totalStaked
	s.totalPaid += totalPaid
	s.rounds++
	s.push(Outcome{Pocket: pocket, Color: color})
}

func (s *Statistics) push(o Outcome) {
	if len(s.history) == s.capacity {
		copy(s.history, s.history[1:])
		s.history = s.history[:len(s.history)-1]
	}
	s.history = append(s.history, o)
}

// HouseBalance returns collected stakes minus returned payouts.
func (s *Statistics) HouseBalance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.houseBalance
}

// History returns the retained outcomes, oldest first.
func (s *Statistics) History() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Outcome, len(s.history))
	copy(out, s.history)
	return out
}

// Capacity returns the maximum history length.
func (s *Statistics) Capacity() int {
	return s.capacity
}

// DistributionReport counts pockets and colours over the retained history.
func (s *Statistics) DistributionReport() DistributionReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	var counts [PocketCount]int
	report := DistributionReport{
		Samples: len(s.history),
		ByColor: make(map[Color]int, len(Colors)),
	}
	for _, c := range Colors {
		report.ByColor[c] = 0
	}
	for _, o := range s.history {
		counts[o.Pocket]++
		report.ByColor[o.Color]++
	}

	report.ByPocket = make([]PocketTally, 0, PocketCount)
	for _, p := range wheelOrder {
		report.ByPocket = append(report.ByPocket, PocketTally{Pocket: p, Count: counts[p]})
	}
	return report
}

// Snapshot copies the ledger state.
func (s *Statistics) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]Outcome, len(s.history))
	copy(history, s.history)
	return Snapshot{
		HouseBalance: s.houseBalance,
		TotalWagered: s.totalWagered,
		TotalPaid:    s.totalPaid,
		Rounds:       s.rounds,
		History:      history,
	}
}

// Restore replaces the ledger state. Only the newest Capacity outcomes are kept.
func (s *Statistics) Restore(snap Snapshot) error {
	history := snap.History
	if len(history) > s.capacity {
		history = history[len(history)-s.capacity:]
	}
	for i, o := range history {
		if !o.Pocket.Valid() {
			return fmt.Errorf("history entry %d: invalid pocket %d", i, int(o.Pocket))
		}
		switch o.Color {
		case Red, Black, Green:
		default:
			return fmt.Errorf("history entry %d: invalid color %q", i, o.Color)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.houseBalance = snap.HouseBalance
	s.totalWagered = snap.TotalWagered
	s.totalPaid = snap.TotalPaid
	s.rounds = snap.Rounds
	s.history = make([]Outcome, len(history), s.capacity)
	copy(s.history, history)
	return nil
}
