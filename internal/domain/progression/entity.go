// Package progression contains the XP ledger domain model: per-user level,
// current XP, the threshold for the next level-up, and lifetime totals.
// This is a pure domain layer with zero external dependencies.
package progression

import (
	"errors"
	"time"
)

// Domain errors for the progression package.
var (
	ErrInvalidUserID    = errors.New("progression: invalid user ID")
	ErrInvalidThreshold = errors.New("progression: next level XP must be positive")
	ErrInvalidLevel     = errors.New("progression: level must be at least 1")
)

// Leveling constants. The base threshold is the XP cost of the first level-up
// (level 1 → 2); every subsequent level costs floor(previous * GrowthFactor),
// which produces a strictly increasing per-level cost.
const (
	BaseLevelThreshold = 100
	GrowthFactor       = 1.2
)

// UserID represents a unique identifier for a user.
type UserID string

// IsValid checks if the user ID is valid.
func (u UserID) IsValid() bool {
	return u != ""
}

// String returns the string representation of UserID.
func (u UserID) String() string {
	return string(u)
}

// NextThreshold returns the XP cost of the level-up after one costing current.
func NextThreshold(current int) int {
	return int(float64(current) * GrowthFactor)
}

// UserProgression is the per-user ledger state. XP and level fields are owned
// by the ledger; streak fields are written by session completion and only read
// here.
type UserProgression struct {
	UserID UserID

	// Ledger-owned fields
	Level       int // >= 1
	CurrentXP   int // >= 0, < NextLevelXP once normalized
	NextLevelXP int // > 0, cost of the next level-up
	TotalXP     int // monotonically non-decreasing

	// Streak fields (owned by session completion, read-only here)
	Streak        int
	LongestStreak int

	// Lifetime aggregates used by achievement evaluation
	TotalCardsLearned   int
	TotalDecksCompleted int

	UpdatedAt time.Time
}

// NewUserProgression creates a fresh ledger state for a user at level 1.
func NewUserProgression(userID UserID) (*UserProgression, error) {
	if !userID.IsValid() {
		return nil, ErrInvalidUserID
	}

	return &UserProgression{
		UserID:      userID,
		Level:       1,
		CurrentXP:   0,
		NextLevelXP: BaseLevelThreshold,
		TotalXP:     0,
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

// ApplyResult describes the ledger state after an ApplyDelta call, plus the
// level delta the mutation produced.
type ApplyResult struct {
	Level       int
	CurrentXP   int
	NextLevelXP int
	TotalXP     int

	// LevelsGained is the number of level-ups the delta cascaded through.
	LevelsGained int
}

// LeveledUp returns true if the mutation raised the level.
func (r ApplyResult) LeveledUp() bool {
	return r.LevelsGained > 0
}

// ApplyDelta mutates the ledger state by delta XP and normalizes level-up
// cascades. Positive deltas are rewards and raise TotalXP; negative deltas are
// corrections, floor CurrentXP at 0 and never touch TotalXP. While CurrentXP
// reaches NextLevelXP the threshold is subtracted, the level incremented and
// the threshold grown, repeatedly.
func (p *UserProgression) ApplyDelta(delta int) ApplyResult {
	oldLevel := p.Level

	if delta >= 0 {
		p.CurrentXP += delta
		p.TotalXP += delta
	} else {
		p.CurrentXP += delta
		if p.CurrentXP < 0 {
			p.CurrentXP = 0
		}
	}

	for p.CurrentXP >= p.NextLevelXP {
		p.CurrentXP -= p.NextLevelXP
		p.Level++
		p.NextLevelXP = NextThreshold(p.NextLevelXP)
	}

	p.UpdatedAt = time.Now().UTC()

	return ApplyResult{
		Level:        p.Level,
		CurrentXP:    p.CurrentXP,
		NextLevelXP:  p.NextLevelXP,
		TotalXP:      p.TotalXP,
		LevelsGained: p.Level - oldLevel,
	}
}

// ProgressToNextLevel returns percentage progress to the next level (0-100).
func (p *UserProgression) ProgressToNextLevel() int {
	if p.NextLevelXP <= 0 {
		return 0
	}
	return (p.CurrentXP * 100) / p.NextLevelXP
}

// Validate checks the normalized-state invariants.
func (p *UserProgression) Validate() error {
	if !p.UserID.IsValid() {
		return ErrInvalidUserID
	}
	if p.Level < 1 {
		return ErrInvalidLevel
	}
	if p.NextLevelXP <= 0 {
		return ErrInvalidThreshold
	}
	if p.CurrentXP < 0 || p.CurrentXP >= p.NextLevelXP {
		return errors.New("progression: current XP out of range")
	}
	if p.TotalXP < 0 {
		return errors.New("progression: total XP cannot be negative")
	}
	return nil
}

// XPHistoryEntry is one record in the append-only ledger journal.
type XPHistoryEntry struct {
	UserID    UserID
	Timestamp time.Time
	OldXP     int
	NewXP     int
	Delta     int
	Reason    string // session_reward, achievement_reward, challenge_reward, correction
}
