package achievement

import (
	"errors"
	"time"
)

// Unlock is the one-time transition of an achievement from locked to unlocked
// for a user. Existence of this record is the sole source of truth for
// "already unlocked"; storage enforces uniqueness on (UserID, AchievementID)
// so a duplicate unlock attempt is a safe no-op, not a double award.
type Unlock struct {
	ID            string
	UserID        string
	AchievementID string
	UnlockedAt    time.Time
	XPAwarded     int
}

// NewUnlock creates an unlock record for persistence.
func NewUnlock(id, userID, achievementID string, xpAwarded int) (*Unlock, error) {
	if id == "" {
		return nil, errors.New("achievement: unlock ID is required")
	}
	if userID == "" {
		return nil, errors.New("achievement: user ID is required")
	}
	if achievementID == "" {
		return nil, ErrUnknownAchievement
	}
	if xpAwarded < 0 {
		return nil, errors.New("achievement: XP award cannot be negative")
	}

	return &Unlock{
		ID:            id,
		UserID:        userID,
		AchievementID: achievementID,
		UnlockedAt:    time.Now().UTC(),
		XPAwarded:     xpAwarded,
	}, nil
}
