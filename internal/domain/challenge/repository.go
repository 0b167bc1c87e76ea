package challenge

import (
	"context"
	"time"
)

// Repository defines the interface for daily challenge persistence.
type Repository interface {
	// GetOrCreate returns the user's challenge state for the given day,
	// creating it with targets frozen at the given level when none exists yet.
	// Creation races resolve to the row that won; both callers see identical
	// targets for the rest of the day.
	GetOrCreate(ctx context.Context, userID string, day time.Time, level int) (*DailyState, error)

	// Get returns the user's challenge state for the given day, or
	// shared.ErrNotFound when the day has not been initialized.
	Get(ctx context.Context, userID string, day time.Time) (*DailyState, error)
}

// ClaimResult is the outcome of a successful reward claim.
type ClaimResult struct {
	Kind        Kind
	XPAwarded   int
	Level       int
	CurrentXP   int
	NextLevelXP int
	TotalXP     int
	LeveledUp   bool
}

// Claimer executes the claim of one challenge reward as a single atomic unit:
// lock the user, load the day's state, re-derive completion from the day's
// sessions, flip the claim flag, and credit the XP. Implementations must
// serialize claims per user so two concurrent claims of the same reward
// produce exactly one payout.
type Claimer interface {
	Claim(ctx context.Context, userID string, day time.Time, kind Kind) (*ClaimResult, error)
}
