package compare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/hoopstats/internal/stats"
)

// RecordSource resolves a player id to a full stat record.
//
// Postcondition: Returns a validated record, or an error wrapping
// ErrPlayerNotFound. Implementations translate transport and decode failures
// into ErrPlayerNotFound before returning.
type RecordSource interface {
	PlayerStats(ctx context.Context, playerID int64) (*stats.PlayerStatRecord, error)
}

// RecordSourceFunc adapts a function to RecordSource.
type RecordSourceFunc func(ctx context.Context, playerID int64) (*stats.PlayerStatRecord, error)

// PlayerStats calls f.
func (f RecordSourceFunc) PlayerStats(ctx context.Context, playerID int64) (*stats.PlayerStatRecord, error) {
	return f(ctx, playerID)
}

// Request identifies one comparison.
type Request struct {
	Player1 int64
	Player2 int64
	Mode    Mode
	Options Options
}

// Result is the outcome of one comparison.
type Result struct {
	Player1      stats.PlayerStatRecord `json:"player_1"`
	Player2      stats.PlayerStatRecord `json:"player_2"`
	Mode         Mode                   `json:"mode"`
	SeasonType   SeasonType             `json:"season_type"`
	Basis        Basis                  `json:"basis"`
	Player1Stats stats.StatBlock        `json:"player_1_stats"`
	Player2Stats stats.StatBlock        `json:"player_2_stats"`
	Differential stats.StatBlock        `json:"differential"`
	Highlights   Highlights             `json:"highlights"`
}

// Comparator computes comparisons against a RecordSource. It holds no
// per-comparison state and is safe for concurrent use.
type Comparator struct {
	source RecordSource
	logger *zap.Logger
}

// NewComparator creates a Comparator.
//
// Precondition: source and logger must be non-nil.
func NewComparator(source RecordSource, logger *zap.Logger) *Comparator {
	return &Comparator{source: source, logger: logger}
}

// Compare fetches both players concurrently, selects their slices and computes
// the differential and highlights.
//
// Postcondition: Returns a complete Result, or an error wrapping
// ErrPlayerNotFound, ErrSeasonNotFound, ErrSeasonMismatch or ErrInvalidMode.
// No partial Result is ever returned with an error.
func (c *Comparator) Compare(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	opts := req.Options.normalized()

	rec1, rec2, err := c.fetchPair(ctx, req.Player1, req.Player2)
	if err != nil {
		return Result{}, err
	}

	s1, err1 := SelectSlice(*rec1, req.Mode, opts)
	s2, err2 := SelectSlice(*rec2, req.Mode, opts)
	if err := classifySelection(req, err1, err2); err != nil {
		c.logger.Debug("comparison unavailable",
			zap.Int64("player_1", req.Player1),
			zap.Int64("player_2", req.Player2),
			zap.Stringer("mode", req.Mode),
			zap.Error(err),
		)
		return Result{}, err
	}

	diff := Differential(s1, s2)
	res := Result{
		Player1:      *rec1,
		Player2:      *rec2,
		Mode:         req.Mode,
		SeasonType:   opts.SeasonType,
		Basis:        opts.Basis,
		Player1Stats: s1,
		Player2Stats: s2,
		Differential: diff,
		Highlights:   Favor(diff),
	}

	c.logger.Debug("comparison computed",
		zap.Int64("player_1", req.Player1),
		zap.Int64("player_2", req.Player2),
		zap.Stringer("mode", req.Mode),
		zap.String("season_type", string(opts.SeasonType)),
		zap.String("basis", string(opts.Basis)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// fetchPair retrieves both records concurrently. Either failure cancels the
// other fetch and fails the pair.
func (c *Comparator) fetchPair(ctx context.Context, id1, id2 int64) (*stats.PlayerStatRecord, *stats.PlayerStatRecord, error) {
	var rec1, rec2 *stats.PlayerStatRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := c.fetch(gctx, id1)
		rec1 = r
		return err
	})
	g.Go(func() error {
		r, err := c.fetch(gctx, id2)
		rec2 = r
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return rec1, rec2, nil
}

func (c *Comparator) fetch(ctx context.Context, id int64) (*stats.PlayerStatRecord, error) {
	rec, err := c.source.PlayerStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching player %d: %w", id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("fetching player %d: %w", id, ErrPlayerNotFound)
	}
	return rec, nil
}

// classifySelection distinguishes a season both players lack from one only a
// single player lacks.
func classifySelection(req Request, err1, err2 error) error {
	switch {
	case err1 == nil && err2 == nil:
		return nil
	case errors.Is(err1, ErrInvalidMode):
		return err1
	case errors.Is(err2, ErrInvalidMode):
		return err2
	case err1 != nil && err2 != nil:
		return fmt.Errorf("%w: neither player %d nor %d has %s", ErrSeasonNotFound, req.Player1, req.Player2, req.Mode)
	case err1 != nil:
		return fmt.Errorf("%w: %w", ErrSeasonMismatch, err1)
	default:
		return fmt.Errorf("%w: %w", ErrSeasonMismatch, err2)
	}
}
