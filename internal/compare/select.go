package compare

import (
	"fmt"

	"github.com/cory-johannsen/hoopstats/internal/stats"
)

// SelectSlice returns the StatBlock of rec that mode and opts refer to.
//
// Precondition: rec must be a validated record.
// Postcondition: Returns the career or season block of the chosen subset and
// basis; ErrSeasonNotFound if the season (or the postseason subset) is
// absent; ErrInvalidMode for an unknown mode. rec is never modified.
func SelectSlice(rec stats.PlayerStatRecord, mode Mode, opts Options) (stats.StatBlock, error) {
	opts = opts.normalized()

	sub, ok := rec.SubsetFor(opts.SeasonType == Postseason)
	if !ok {
		return stats.StatBlock{}, fmt.Errorf("%w: player %d has no %s record", ErrSeasonNotFound, rec.PlayerID, opts.SeasonType)
	}

	var split stats.Split
	switch opts.Basis {
	case PerGame:
		split = sub.PerGame
	case Totals:
		split = sub.Total
	default:
		return stats.StatBlock{}, fmt.Errorf("%w: unknown basis %q", ErrInvalidMode, opts.Basis)
	}

	switch mode.Type {
	case ModeCareer:
		return split.Career, nil
	case ModeSeason:
		b, ok := split.Seasons[mode.Season]
		if !ok {
			return stats.StatBlock{}, fmt.Errorf("%w: player %d has no %s season %q", ErrSeasonNotFound, rec.PlayerID, opts.SeasonType, mode.Season)
		}
		return b, nil
	}
	return stats.StatBlock{}, fmt.Errorf("%w: unknown mode type %q", ErrInvalidMode, mode.Type)
}
