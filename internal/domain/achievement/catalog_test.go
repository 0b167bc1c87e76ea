package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCatalog_AllConditionTypesRecognized(t *testing.T) {
	known := make(map[ConditionType]bool)
	for _, ct := range KnownConditionTypes() {
		known[ct] = true
	}

	for _, def := range DefaultCatalog().All() {
		assert.True(t, known[def.ConditionType],
			"catalog entry %s uses unrecognized condition type %s", def.ID, def.ConditionType)
	}
}

func TestDefaultCatalog_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range DefaultCatalog().All() {
		assert.False(t, seen[def.ID], "duplicate achievement ID %s", def.ID)
		seen[def.ID] = true
	}
}

func TestDefaultCatalog_SaneEntries(t *testing.T) {
	for _, def := range DefaultCatalog().All() {
		assert.NotEmpty(t, def.Name, "achievement %s needs a name", def.ID)
		assert.Greater(t, def.ConditionValue, 0, "achievement %s needs a positive condition value", def.ID)
		assert.GreaterOrEqual(t, def.XPReward, 0, "achievement %s cannot have a negative reward", def.ID)
	}
}

func TestCatalog_Get(t *testing.T) {
	c := DefaultCatalog()

	def, ok := c.Get("level_5")
	assert.True(t, ok)
	assert.Equal(t, ConditionLevelReached, def.ConditionType)
	assert.Equal(t, 5, def.ConditionValue)

	_, ok = c.Get("does_not_exist")
	assert.False(t, ok)
}

func TestCatalog_AllReturnsCopy(t *testing.T) {
	c := DefaultCatalog()

	first := c.All()
	first[0].ID = "mutated"

	assert.NotEqual(t, "mutated", c.All()[0].ID)
}

func TestConditionTypeDependencyPredicates(t *testing.T) {
	assert.True(t, ConditionDecksCreated.RequiresDeckStats())
	assert.True(t, ConditionCardsMasteredSingleDeck.RequiresDeckStats())
	assert.False(t, ConditionLevelReached.RequiresDeckStats())

	assert.True(t, ConditionSessionsCompleted.RequiresSessionStats())
	assert.False(t, ConditionStreakDays.RequiresSessionStats())

	assert.True(t, ConditionCardsPerMinute.RequiresSessionContext())
	assert.True(t, ConditionSessionTimeOfDay.RequiresSessionContext())
	assert.False(t, ConditionTotalXP.RequiresSessionContext())
}
