package roulette

import "time"

// Wager is one accepted bet. It is owned by the session it was placed in.
type Wager struct {
	BettorID int64
	Stake    int64
	Bet      *BetDefinition
	PlacedAt time.Time
}

// Payout is the total credited to one bettor in a round.
type Payout struct {
	BettorID int64 `json:"bettorId"`
	Amount   int64 `json:"amount"`
	Wagers   int   `json:"winningWagers"`
}

// Settlement is the outcome of paying a list of wagers against a pocket.
type Settlement struct {
	Payouts     []Payout
	TotalStaked int64
	TotalPaid   int64
}

// SettleWagers pays every wager whose bet covers pocket at stake*multiplier.
// Payouts are summed per bettor and listed in order of each bettor's first
// winning wager. Losing wagers pay nothing.
func SettleWagers(wagers []Wager, pocket Pocket) Settlement {
	var s Settlement
	index := make(map[int64]int)

	for _, w := range wagers {
		if w.Bet == nil {
			panic("roulette: wager without bet definition")
		}
		s.TotalStaked += w.Stake
		if !w.Bet.Covers(pocket) {
			continue
		}

		amount := w.Stake * int64(w.Bet.Multiplier)
		s.TotalPaid += amount
		if i, ok := index[w.BettorID]; ok {
			s.Payouts[i].Amount += amount
			s.Payouts[i].Wagers++
			continue
		}
		index[w.BettorID] = len(s.Payouts)
		s.Payouts = append(s.Payouts, Payout{BettorID: w.BettorID, Amount: amount, Wagers: 1})
	}
	return s
}
