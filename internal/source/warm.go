package source

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/hoopstats/internal/compare"
)

// Warm fetches every id through src so a Chain backfills its faster tiers.
// At most concurrency fetches run at once.
//
// Postcondition: Returns the number of records fetched and the joined errors
// of the ids that failed.
func Warm(ctx context.Context, src compare.RecordSource, ids []int64, concurrency int, logger *zap.Logger) (int, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	var (
		g      errgroup.Group
		mu     sync.Mutex
		warmed int
		errs   []error
	)
	g.SetLimit(concurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if _, err := src.PlayerStats(ctx, id); err != nil {
				logger.Warn("warm failed", zap.Int64("player_id", id), zap.Error(err))
				mu.Lock()
				errs = append(errs, fmt.Errorf("player %d: %w", id, err))
				mu.Unlock()
				return nil
			}
			mu.Lock()
			warmed++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	logger.Info("warm complete", zap.Int("requested", len(ids)), zap.Int("warmed", warmed))
	return warmed, errors.Join(errs...)
}
