// Package metrics exposes table activity to Prometheus.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"roulette-bot/internal/game/roulette"
)

// Collector records table activity. It implements roulette.Observer.
type Collector struct {
	wagers      *prometheus.CounterVec
	staked      prometheus.Counter
	rounds      prometheus.Counter
	paid        prometheus.Counter
	pockets     *prometheus.CounterVec
	colors      *prometheus.CounterVec
	roundWagers prometheus.Histogram
}

var _ roulette.Observer = (*Collector)(nil)

// NewCollector registers the roulette metrics on reg. houseBalance backs the
// house balance gauge and may be nil.
func NewCollector(reg prometheus.Registerer, houseBalance func() int64) (*Collector, error) {
	c := &Collector{
		wagers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roulette_wagers_total",
			Help: "Wagers submitted, by outcome.",
		}, []string{"result"}),
		staked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roulette_staked_total",
			Help: "Sum of accepted stakes.",
		}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roulette_rounds_total",
			Help: "Resolved rounds.",
		}),
		paid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roulette_paid_total",
			Help: "Sum of credited payouts.",
		}),
		pockets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roulette_pocket_total",
			Help: "Drawn pockets.",
		}, []string{"pocket"}),
		colors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roulette_color_total",
			Help: "Drawn colours.",
		}, []string{"color"}),
		roundWagers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roulette_round_wagers",
			Help:    "Wagers per resolved round.",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		}),
	}

	collectors := []prometheus.Collector{
		c.wagers, c.staked, c.rounds, c.paid, c.pockets, c.colors, c.roundWagers,
	}
	if houseBalance != nil {
		collectors = append(collectors, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "roulette_house_balance",
			Help: "Collected stakes minus returned payouts.",
		}, func() float64 { return float64(houseBalance()) }))
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WagerAccepted implements roulette.Observer.
func (c *Collector) WagerAccepted(_ int64, w roulette.Wager) {
	c.wagers.WithLabelValues("accepted").Inc()
	c.staked.Add(float64(w.Stake))
}

// WagerRejected implements roulette.Observer.
func (c *Collector) WagerRejected(_ int64, err error) {
	c.wagers.WithLabelValues(rejection(err)).Inc()
}

// RoundResolved implements roulette.Observer.
func (c *Collector) RoundResolved(result *roulette.RoundResult) {
	c.rounds.Inc()
	c.paid.Add(float64(result.TotalPaid))
	c.pockets.WithLabelValues(result.Pocket.String()).Inc()
	c.colors.WithLabelValues(string(result.Color)).Inc()
	c.roundWagers.Observe(float64(result.WagerCount))
}

func rejection(err error) string {
	switch {
	case errors.Is(err, roulette.ErrUnknownAlias):
		return "unknown_alias"
	case errors.Is(err, roulette.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, roulette.ErrInvalidStake):
		return "invalid_stake"
	default:
		return "error"
	}
}
