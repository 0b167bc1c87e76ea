package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/memodeck/memodeck-progression/internal/domain/achievement"
	"github.com/memodeck/memodeck-progression/internal/domain/progression"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESSION QUERY
// The read model behind the profile header: level, XP bar, streaks, unlocked
// achievements, recent XP history.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultHistoryLimit bounds the journal slice returned with the profile.
const DefaultHistoryLimit = 20

// GetProgressionQuery contains the query parameters.
type GetProgressionQuery struct {
	// UserID is the internal ID of the user.
	UserID string

	// HistoryLimit caps the journal entries returned; 0 means the default.
	HistoryLimit int
}

// Validate validates the query.
func (q GetProgressionQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_progression: user_id is required")
	}
	if q.HistoryLimit < 0 {
		return errors.New("get_progression: history limit cannot be negative")
	}
	return nil
}

// UnlockedView is one unlocked achievement joined with its catalog entry.
type UnlockedView struct {
	ID          string
	Name        string
	Description string
	Tier        achievement.Tier
	XPAwarded   int
	UnlockedAt  time.Time
}

// GetProgressionResult is the assembled profile read model.
type GetProgressionResult struct {
	UserID      string
	Level       int
	CurrentXP   int
	NextLevelXP int
	TotalXP     int

	// ProgressPercent is progress toward the next level, 0-100.
	ProgressPercent int

	Streak        int
	LongestStreak int

	TotalCardsLearned   int
	TotalDecksCompleted int

	Achievements []UnlockedView
	History      []progression.XPHistoryEntry
}

// GetProgressionHandler handles the GetProgressionQuery.
type GetProgressionHandler struct {
	catalog         *achievement.Catalog
	progressionRepo progression.Repository
	achievementRepo achievement.Repository
}

// NewGetProgressionHandler creates a new GetProgressionHandler.
func NewGetProgressionHandler(
	catalog *achievement.Catalog,
	progressionRepo progression.Repository,
	achievementRepo achievement.Repository,
) *GetProgressionHandler {
	return &GetProgressionHandler{
		catalog:         catalog,
		progressionRepo: progressionRepo,
		achievementRepo: achievementRepo,
	}
}

// Handle executes the get progression query.
func (h *GetProgressionHandler) Handle(ctx context.Context, q GetProgressionQuery) (*GetProgressionResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_progression: validation failed: %w", err)
	}

	user, err := h.progressionRepo.Get(ctx, progression.UserID(q.UserID))
	if err != nil {
		return nil, fmt.Errorf("get_progression: failed to get user: %w", err)
	}

	unlocks, err := h.achievementRepo.ListUnlocks(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("get_progression: failed to load unlocks: %w", err)
	}

	limit := q.HistoryLimit
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	history, err := h.progressionRepo.History(ctx, progression.UserID(q.UserID), limit)
	if err != nil {
		return nil, fmt.Errorf("get_progression: failed to load history: %w", err)
	}

	result := &GetProgressionResult{
		UserID:              q.UserID,
		Level:               user.Level,
		CurrentXP:           user.CurrentXP,
		NextLevelXP:         user.NextLevelXP,
		TotalXP:             user.TotalXP,
		ProgressPercent:     user.ProgressToNextLevel(),
		Streak:              user.Streak,
		LongestStreak:       user.LongestStreak,
		TotalCardsLearned:   user.TotalCardsLearned,
		TotalDecksCompleted: user.TotalDecksCompleted,
		Achievements:        make([]UnlockedView, 0, len(unlocks)),
		History:             history,
	}

	for _, u := range unlocks {
		view := UnlockedView{
			ID:         u.AchievementID,
			XPAwarded:  u.XPAwarded,
			UnlockedAt: u.UnlockedAt,
		}
		// Unlocks for definitions since removed from the catalog keep their
		// XP but render without a name.
		if def, ok := h.catalog.Get(u.AchievementID); ok {
			view.Name = def.Name
			view.Description = def.Description
			view.Tier = def.Tier
		}
		result.Achievements = append(result.Achievements, view)
	}

	return result, nil
}
