package services

import (
	"time"

	"github.com/Conceptual-Machines/poster-api/internal/config"
)

// AttemptStage identifies which model an attempt runs against
type AttemptStage string

const (
	StagePrimary  AttemptStage = "primary"
	StageFallback AttemptStage = "fallback"
)

// primarySlice leaves FallbackReserve of the overall budget for a second
// attempt, but never drops below MinPrimarySlice.
func primarySlice(b config.BudgetConfig, elapsed time.Duration) time.Duration {
	slice := min(b.Slice, b.Overall-elapsed-b.FallbackReserve)
	return max(b.MinPrimarySlice, slice)
}

// fallbackSlice returns the fallback timeout for the time left before the
// overall deadline, or false when a fallback would not fit.
func fallbackSlice(b config.BudgetConfig, remaining time.Duration) (time.Duration, bool) {
	if remaining < b.MinFallback {
		return 0, false
	}
	slice := min(b.Slice, remaining-b.FallbackMargin)
	if slice <= 0 {
		return 0, false
	}
	return slice, true
}
