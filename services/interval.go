package services

import (
	"errors"
	"time"
)

// ErrInvalidInterval is returned for intervals where end <= start.
var ErrInvalidInterval = errors.New("interval end must be after start")

// Interval is a half-open time range [Start, End). A booking ending at
// 20:00 and another starting at 20:00 occupy the same table without
// conflict.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) Validate() error {
	if !iv.End.After(iv.Start) {
		return ErrInvalidInterval
	}
	return nil
}

// Overlaps reports whether two half-open intervals share any instant.
// Touching endpoints do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}
