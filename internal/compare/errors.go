package compare

import "errors"

// ErrPlayerNotFound is returned when a player id does not resolve to a stat
// record. Record sources translate transport and decode failures into it.
var ErrPlayerNotFound = errors.New("player not found")

// ErrSeasonNotFound is returned when the requested season, or the requested
// postseason subset, is absent from a player's record.
var ErrSeasonNotFound = errors.New("season not found")

// ErrSeasonMismatch is returned when only one of the two compared players has
// the requested season. errors.Is(ErrSeasonMismatch, ErrSeasonNotFound) holds.
var ErrSeasonMismatch error = seasonMismatchError{}

// ErrInvalidMode is returned for an unknown or incomplete comparison mode,
// season type or basis.
var ErrInvalidMode = errors.New("invalid comparison mode")

type seasonMismatchError struct{}

func (seasonMismatchError) Error() string { return "season mismatch" }

func (seasonMismatchError) Is(target error) bool { return target == ErrSeasonNotFound }
