package session

import (
	"context"
	"time"
)

// ActivitySource is the read-only gateway to the study-session subsystem.
// The progression engine treats session data as externally owned: it reads
// snapshots, it never writes them.
type ActivitySource interface {
	// SessionsForDay returns all of a user's sessions whose activity falls on
	// the calendar day containing `day`, regardless of status.
	SessionsForDay(ctx context.Context, userID string, day time.Time) ([]*Snapshot, error)

	// CompletedSessionCount returns the user's lifetime count of completed
	// sessions.
	CompletedSessionCount(ctx context.Context, userID string) (int, error)
}

// DeckStatsSource is the read-only gateway to the deck/card subsystem.
type DeckStatsSource interface {
	// DecksCreated returns the count of non-deleted decks owned by the user.
	DecksCreated(ctx context.Context, userID string) (int, error)

	// FullyMasteredDecks returns the count of decks where every card is
	// individually mastered for this user.
	FullyMasteredDecks(ctx context.Context, userID string) (int, error)
}
