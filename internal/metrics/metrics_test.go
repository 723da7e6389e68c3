package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roulette-bot/internal/game/roulette"
)

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	balance := int64(15)
	c, err := NewCollector(reg, func() int64 { return balance })
	require.NoError(t, err)

	c.WagerAccepted(1, roulette.Wager{BettorID: 1, Stake: 10})
	c.WagerAccepted(1, roulette.Wager{BettorID: 2, Stake: 5})
	c.WagerRejected(1, roulette.ErrUnknownAlias)
	c.WagerRejected(1, errors.New("db down"))
	c.RoundResolved(&roulette.RoundResult{
		Pocket:     17,
		Color:      roulette.Black,
		TotalPaid:  360,
		WagerCount: 2,
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.wagers.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.wagers.WithLabelValues("unknown_alias")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.wagers.WithLabelValues("error")))
	assert.Equal(t, 15.0, testutil.ToFloat64(c.staked))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rounds))
	assert.Equal(t, 360.0, testutil.ToFloat64(c.paid))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.pockets.WithLabelValues("17")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.colors.WithLabelValues("black")))

	balance = -345
	n, err := testutil.GatherAndCount(reg, "roulette_house_balance")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg, nil)
	require.NoError(t, err)
	_, err = NewCollector(reg, nil)
	assert.Error(t, err)
}

func TestRejectionLabels(t *testing.T) {
	assert.Equal(t, "insufficient_balance", rejection(roulette.ErrInsufficientBalance))
	assert.Equal(t, "invalid_stake", rejection(roulette.ErrInvalidStake))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg, func() int64 { return 42 })
	require.NoError(t, err)

	healthy := NewHandler(reg, func(context.Context) error { return nil })

	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "roulette_house_balance 42")

	rec = httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	unhealthy := NewHandler(reg, func(context.Context) error { return errors.New("db down") })
	rec = httptest.NewRecorder()
	unhealthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "db down")
}
