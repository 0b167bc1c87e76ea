package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memodeck/memodeck-progression/internal/domain/progression"
	"github.com/memodeck/memodeck-progression/internal/domain/shared"
)

func TestApplyXP_CreditsAndReportsState(t *testing.T) {
	repo := newMemProgressionRepo()
	repo.seed("user-1", nil)
	pub := &capturingPublisher{}
	h := NewApplyXPHandler(repo, pub)

	res, err := h.Handle(context.Background(), ApplyXPCommand{
		UserID: "user-1",
		Delta:  40,
		Reason: progression.ReasonSessionReward,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Level)
	assert.Equal(t, 40, res.CurrentXP)
	assert.Equal(t, 40, res.TotalXP)
	assert.False(t, res.LeveledUp)
	assert.Empty(t, pub.byType(shared.EventLevelUp))
}

func TestApplyXP_LevelUpEmitsEvent(t *testing.T) {
	repo := newMemProgressionRepo()
	repo.seed("user-1", func(p *progression.UserProgression) {
		p.CurrentXP = 90
	})
	pub := &capturingPublisher{}
	h := NewApplyXPHandler(repo, pub)

	res, err := h.Handle(context.Background(), ApplyXPCommand{
		UserID: "user-1",
		Delta:  250,
		Reason: progression.ReasonSessionReward,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Level)
	assert.Equal(t, 2, res.LevelsGained)
	assert.True(t, res.LeveledUp)

	events := pub.byType(shared.EventLevelUp)
	require.Len(t, events, 1)
	levelUp := events[0].(shared.LevelUpEvent)
	assert.Equal(t, 1, levelUp.OldLevel)
	assert.Equal(t, 3, levelUp.NewLevel)
	assert.Equal(t, "user-1", levelUp.AggregateID())
}

func TestApplyXP_RejectsUnknownReason(t *testing.T) {
	h := NewApplyXPHandler(newMemProgressionRepo(), nil)

	_, err := h.Handle(context.Background(), ApplyXPCommand{
		UserID: "user-1",
		Delta:  10,
		Reason: "bonus",
	})
	assert.Error(t, err)
}

func TestApplyXP_RejectsEmptyUser(t *testing.T) {
	h := NewApplyXPHandler(newMemProgressionRepo(), nil)

	_, err := h.Handle(context.Background(), ApplyXPCommand{
		Delta:  10,
		Reason: progression.ReasonCorrection,
	})
	assert.Error(t, err)
}

func TestApplyXP_UnknownUser(t *testing.T) {
	h := NewApplyXPHandler(newMemProgressionRepo(), nil)

	_, err := h.Handle(context.Background(), ApplyXPCommand{
		UserID: "ghost",
		Delta:  10,
		Reason: progression.ReasonCorrection,
	})
	assert.True(t, shared.IsNotFound(err))
}

func TestApplyXP_NegativeCorrection(t *testing.T) {
	repo := newMemProgressionRepo()
	repo.seed("user-1", func(p *progression.UserProgression) {
		p.ApplyDelta(50)
	})
	h := NewApplyXPHandler(repo, nil)

	res, err := h.Handle(context.Background(), ApplyXPCommand{
		UserID: "user-1",
		Delta:  -80,
		Reason: progression.ReasonCorrection,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, res.CurrentXP)
	assert.Equal(t, 50, res.TotalXP)
	assert.False(t, res.LeveledUp)
}
