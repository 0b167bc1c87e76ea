package achievement

import (
	"context"
)

// Repository defines the interface for unlock persistence.
type Repository interface {
	// UnlockedIDs returns the set of achievement IDs already unlocked by the
	// user.
	UnlockedIDs(ctx context.Context, userID string) (map[string]bool, error)

	// ListUnlocks returns the user's unlock records, newest first.
	ListUnlocks(ctx context.Context, userID string) ([]*Unlock, error)

	// InsertUnlock persists an unlock record. If the (user, achievement) pair
	// already exists — a concurrent evaluation won the race — it returns
	// ErrAlreadyUnlocked and the caller must skip the XP award.
	InsertUnlock(ctx context.Context, unlock *Unlock) error
}
