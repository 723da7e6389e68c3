package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"roulette-bot/internal/game/roulette"
)

// SnapshotStore persists the statistics snapshot as an opaque document.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, data []byte) error
	LoadSnapshot(ctx context.Context) ([]byte, bool, error)
}

// StatisticsService loads and saves the house statistics.
type StatisticsService struct {
	stats *roulette.Statistics
	store SnapshotStore
}

// NewStatisticsService creates a new StatisticsService instance.
func NewStatisticsService(stats *roulette.Statistics, store SnapshotStore) *StatisticsService {
	return &StatisticsService{stats: stats, store: store}
}

// Load restores the ledger from the store. A missing snapshot leaves the
// ledger empty and is not an error.
func (s *StatisticsService) Load(ctx context.Context) error {
	data, ok, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load statistics: %w", err)
	}
	if !ok {
		log.Info().Msg("No statistics snapshot found, starting empty")
		return nil
	}

	var snap roulette.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to decode statistics: %w", err)
	}
	if err := s.stats.Restore(snap); err != nil {
		return fmt.Errorf("failed to restore statistics: %w", err)
	}

	log.Info().
		Int64("house_balance", snap.HouseBalance).
		Int("history", len(s.stats.History())).
		Msg("Statistics restored")
	return nil
}

// Save writes the current ledger to the store.
func (s *StatisticsService) Save(ctx context.Context) error {
	data, err := json.Marshal(s.stats.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode statistics: %w", err)
	}
	if err := s.store.SaveSnapshot(ctx, data); err != nil {
		return fmt.Errorf("failed to save statistics: %w", err)
	}
	return nil
}

// Run saves every interval until ctx is done. A non-positive interval only
// waits for ctx.
func (s *StatisticsService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Save(ctx); err != nil {
				log.Error().Err(err).Msg("Statistics autosave failed")
			}
		}
	}
}
