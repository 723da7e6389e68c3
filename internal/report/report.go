// Package report publishes resolved roulette rounds to external consumers.
package report

import (
	"context"
	"encoding/json"
	"strconv"

	"roulette-bot/internal/game/roulette"
)

// RoundEvent is the published form of a resolved round.
type RoundEvent struct {
	*roulette.RoundResult
	NoWinners bool `json:"noWinners"`
}

// Encode serializes a round for publishing.
func Encode(result *roulette.RoundResult) ([]byte, error) {
	return json.Marshal(RoundEvent{RoundResult: result, NoWinners: result.NoWinners()})
}

func tableKey(result *roulette.RoundResult) []byte {
	return []byte(strconv.FormatInt(result.TableID, 10))
}

// Multi fans a round out to every reporter in order.
type Multi []roulette.Reporter

// ReportRound implements roulette.Reporter.
func (m Multi) ReportRound(ctx context.Context, result *roulette.RoundResult) {
	for _, r := range m {
		if r != nil {
			r.ReportRound(ctx, result)
		}
	}
}
