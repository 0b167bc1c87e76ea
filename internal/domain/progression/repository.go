package progression

import (
	"context"
)

// Reason constants for the XP history journal.
const (
	ReasonSessionReward     = "session_reward"
	ReasonAchievementReward = "achievement_reward"
	ReasonChallengeReward   = "challenge_reward"
	ReasonCorrection        = "correction"
)

// Repository defines the interface for ledger persistence.
// Implementations must execute ApplyDelta under a per-user serialization
// boundary (a transaction with a row lock or equivalent), because evaluation
// and claim paths mutate the same user concurrently.
type Repository interface {
	// Get returns the ledger state for a user. Missing user is a not-found
	// error, never a zero-value state.
	Get(ctx context.Context, userID UserID) (*UserProgression, error)

	// Create persists a fresh ledger state for a new user.
	Create(ctx context.Context, p *UserProgression) error

	// ApplyDelta atomically applies an XP delta, normalizes level-up cascades
	// and persists the result. The whole read-modify-write happens inside one
	// transaction; it never partially applies on failure.
	ApplyDelta(ctx context.Context, userID UserID, delta int, reason string) (*ApplyResult, error)

	// History returns the most recent journal entries for a user, newest first.
	History(ctx context.Context, userID UserID, limit int) ([]XPHistoryEntry, error)
}
