package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserProgression(t *testing.T) {
	p, err := NewUserProgression("user-1")
	require.NoError(t, err)

	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 0, p.CurrentXP)
	assert.Equal(t, BaseLevelThreshold, p.NextLevelXP)
	assert.Equal(t, 0, p.TotalXP)
	assert.NoError(t, p.Validate())
}

func TestNewUserProgression_EmptyID(t *testing.T) {
	_, err := NewUserProgression("")
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestApplyDelta_SimpleCredit(t *testing.T) {
	p, _ := NewUserProgression("user-1")

	res := p.ApplyDelta(40)

	assert.Equal(t, 1, res.Level)
	assert.Equal(t, 40, res.CurrentXP)
	assert.Equal(t, 100, res.NextLevelXP)
	assert.Equal(t, 40, res.TotalXP)
	assert.False(t, res.LeveledUp())
}

func TestApplyDelta_SingleLevelUp(t *testing.T) {
	p, _ := NewUserProgression("user-1")
	p.CurrentXP = 90

	res := p.ApplyDelta(10)

	assert.Equal(t, 2, res.Level)
	assert.Equal(t, 0, res.CurrentXP)
	assert.Equal(t, 120, res.NextLevelXP)
	assert.Equal(t, 1, res.LevelsGained)
	assert.True(t, res.LeveledUp())
}

func TestApplyDelta_CascadesThroughMultipleLevels(t *testing.T) {
	p, _ := NewUserProgression("user-1")
	p.CurrentXP = 90

	// 90+250 = 340: -100 -> level 2 (threshold 120), -120 -> level 3
	// (threshold 144), 120 remaining.
	res := p.ApplyDelta(250)

	assert.Equal(t, 3, res.Level)
	assert.Equal(t, 120, res.CurrentXP)
	assert.Equal(t, 144, res.NextLevelXP)
	assert.Equal(t, 250, res.TotalXP)
	assert.Equal(t, 2, res.LevelsGained)
	assert.NoError(t, p.Validate())
}

func TestApplyDelta_ExactThresholdLevelsUp(t *testing.T) {
	p, _ := NewUserProgression("user-1")

	res := p.ApplyDelta(100)

	assert.Equal(t, 2, res.Level)
	assert.Equal(t, 0, res.CurrentXP)
	assert.Equal(t, 120, res.NextLevelXP)
}

func TestApplyDelta_NegativeFloorsAtZero(t *testing.T) {
	p, _ := NewUserProgression("user-1")
	p.ApplyDelta(50)

	res := p.ApplyDelta(-80)

	assert.Equal(t, 0, res.CurrentXP)
	assert.Equal(t, 1, res.Level)
	// Corrections never reduce the lifetime total.
	assert.Equal(t, 50, res.TotalXP)
	assert.False(t, res.LeveledUp())
}

func TestApplyDelta_NegativeNeverTouchesTotalXP(t *testing.T) {
	p, _ := NewUserProgression("user-1")
	p.ApplyDelta(250)
	total := p.TotalXP

	p.ApplyDelta(-10)

	assert.Equal(t, total, p.TotalXP)
}

func TestApplyDelta_NegativeNeverDropsLevel(t *testing.T) {
	p, _ := NewUserProgression("user-1")
	p.ApplyDelta(100) // level 2, 0/120

	res := p.ApplyDelta(-500)

	assert.Equal(t, 2, res.Level)
	assert.Equal(t, 0, res.CurrentXP)
}

func TestNextThreshold_StrictlyIncreasing(t *testing.T) {
	current := BaseLevelThreshold
	for i := 0; i < 50; i++ {
		next := NextThreshold(current)
		assert.Greater(t, next, current, "threshold must grow at step %d", i)
		current = next
	}
}

func TestNextThreshold_Values(t *testing.T) {
	assert.Equal(t, 120, NextThreshold(100))
	assert.Equal(t, 144, NextThreshold(120))
	assert.Equal(t, 172, NextThreshold(144)) // floor(144 * 1.2)
}

func TestProgressToNextLevel(t *testing.T) {
	p, _ := NewUserProgression("user-1")
	p.ApplyDelta(50)

	assert.Equal(t, 50, p.ProgressToNextLevel())
}

func TestValidate_OutOfRangeCurrentXP(t *testing.T) {
	p, _ := NewUserProgression("user-1")
	p.CurrentXP = 100 // equals threshold, not normalized

	assert.Error(t, p.Validate())
}
