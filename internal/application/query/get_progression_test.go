package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memodeck/memodeck-progression/internal/domain/achievement"
	"github.com/memodeck/memodeck-progression/internal/domain/progression"
	"github.com/memodeck/memodeck-progression/internal/domain/shared"
)

type fakeAchievementRepo struct {
	unlocks []*achievement.Unlock
}

func (r *fakeAchievementRepo) UnlockedIDs(_ context.Context, _ string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, u := range r.unlocks {
		out[u.AchievementID] = true
	}
	return out, nil
}

func (r *fakeAchievementRepo) ListUnlocks(_ context.Context, _ string) ([]*achievement.Unlock, error) {
	return r.unlocks, nil
}

func (r *fakeAchievementRepo) InsertUnlock(_ context.Context, _ *achievement.Unlock) error {
	return nil
}

type historyRecordingRepo struct {
	fakeProgressionRepo
	history      []progression.XPHistoryEntry
	historyLimit int
}

func (r *historyRecordingRepo) History(_ context.Context, _ progression.UserID, limit int) ([]progression.XPHistoryEntry, error) {
	r.historyLimit = limit
	return r.history, nil
}

func TestGetProgression_AssemblesProfile(t *testing.T) {
	user, _ := progression.NewUserProgression("user-1")
	user.ApplyDelta(150) // level 2, 50/120
	user.Streak = 4
	user.LongestStreak = 9
	user.TotalCardsLearned = 42

	repo := &historyRecordingRepo{
		fakeProgressionRepo: fakeProgressionRepo{user: user},
		history: []progression.XPHistoryEntry{
			{UserID: "user-1", Delta: 50, Reason: progression.ReasonSessionReward},
		},
	}
	unlocks := &fakeAchievementRepo{unlocks: []*achievement.Unlock{
		{ID: "u1", UserID: "user-1", AchievementID: "level_5", XPAwarded: 100, UnlockedAt: time.Now()},
	}}
	h := NewGetProgressionHandler(achievement.DefaultCatalog(), repo, unlocks)

	res, err := h.Handle(context.Background(), GetProgressionQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Level)
	assert.Equal(t, 50, res.CurrentXP)
	assert.Equal(t, 120, res.NextLevelXP)
	assert.Equal(t, 150, res.TotalXP)
	assert.Equal(t, 41, res.ProgressPercent) // 50*100/120
	assert.Equal(t, 4, res.Streak)
	assert.Equal(t, 9, res.LongestStreak)
	assert.Equal(t, 42, res.TotalCardsLearned)
	assert.Len(t, res.History, 1)

	require.Len(t, res.Achievements, 1)
	assert.Equal(t, "Apprentice", res.Achievements[0].Name)
	assert.Equal(t, 100, res.Achievements[0].XPAwarded)
}

func TestGetProgression_DefaultHistoryLimit(t *testing.T) {
	user, _ := progression.NewUserProgression("user-1")
	repo := &historyRecordingRepo{fakeProgressionRepo: fakeProgressionRepo{user: user}}
	h := NewGetProgressionHandler(achievement.DefaultCatalog(), repo, &fakeAchievementRepo{})

	_, err := h.Handle(context.Background(), GetProgressionQuery{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryLimit, repo.historyLimit)

	_, err = h.Handle(context.Background(), GetProgressionQuery{UserID: "user-1", HistoryLimit: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, repo.historyLimit)
}

func TestGetProgression_RetiredAchievementKeepsXP(t *testing.T) {
	user, _ := progression.NewUserProgression("user-1")
	repo := &historyRecordingRepo{fakeProgressionRepo: fakeProgressionRepo{user: user}}
	unlocks := &fakeAchievementRepo{unlocks: []*achievement.Unlock{
		{ID: "u1", UserID: "user-1", AchievementID: "removed_from_catalog", XPAwarded: 75, UnlockedAt: time.Now()},
	}}
	h := NewGetProgressionHandler(achievement.DefaultCatalog(), repo, unlocks)

	res, err := h.Handle(context.Background(), GetProgressionQuery{UserID: "user-1"})
	require.NoError(t, err)

	require.Len(t, res.Achievements, 1)
	assert.Empty(t, res.Achievements[0].Name)
	assert.Equal(t, 75, res.Achievements[0].XPAwarded)
}

func TestGetProgression_UnknownUser(t *testing.T) {
	h := NewGetProgressionHandler(achievement.DefaultCatalog(), &fakeProgressionRepo{}, &fakeAchievementRepo{})

	_, err := h.Handle(context.Background(), GetProgressionQuery{UserID: "ghost"})
	assert.True(t, shared.IsNotFound(err))
}

func TestGetProgression_NegativeHistoryLimit(t *testing.T) {
	h := NewGetProgressionHandler(achievement.DefaultCatalog(), &fakeProgressionRepo{}, &fakeAchievementRepo{})

	_, err := h.Handle(context.Background(), GetProgressionQuery{UserID: "user-1", HistoryLimit: -1})
	assert.Error(t, err)
}
