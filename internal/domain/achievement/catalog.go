// Package achievement contains the achievement catalog, the closed set of
// condition types, and the unlock entity. Condition evaluation is pure; the
// application layer owns orchestration and persistence.
package achievement

import (
	"errors"
)

// Domain errors for the achievement package.
var (
	ErrAlreadyUnlocked      = errors.New("achievement: already unlocked")
	ErrUnknownConditionType = errors.New("achievement: unknown condition type")
	ErrUnknownAchievement   = errors.New("achievement: unknown achievement ID")
)

// ConditionType is the closed set of achievement condition kinds. Adding a
// kind means adding a constant here, a case to ConditionMet, and an entry to
// the dependency predicates below; the evaluator treats anything else as a
// malformed catalog entry, never as a silent no-op.
type ConditionType string

const (
	// Lifetime-stat conditions (evaluated from the user record alone)
	ConditionDecksCompleted ConditionType = "decks_completed"
	ConditionStreakDays     ConditionType = "streak_days"
	ConditionCardsMastered  ConditionType = "cards_mastered"
	ConditionLevelReached   ConditionType = "level_reached"
	ConditionTotalXP        ConditionType = "total_xp"

	// Counted conditions (evaluated from external subsystem counts)
	ConditionDecksCreated            ConditionType = "decks_created"
	ConditionSessionsCompleted       ConditionType = "total_sessions_completed"
	ConditionCardsMasteredSingleDeck ConditionType = "cards_mastered_single_deck"

	// Session conditions (require a session context; silently skipped without one)
	ConditionCardsPerMinute       ConditionType = "cards_per_minute"
	ConditionSessionTimeOfDay     ConditionType = "session_time_of_day"
	ConditionPerfectScoreMinCards ConditionType = "perfect_score_min_cards"
	ConditionSingleSessionXP      ConditionType = "single_session_xp"
)

// KnownConditionTypes lists every recognized condition type.
func KnownConditionTypes() []ConditionType {
	return []ConditionType{
		ConditionDecksCompleted,
		ConditionStreakDays,
		ConditionCardsMastered,
		ConditionLevelReached,
		ConditionTotalXP,
		ConditionDecksCreated,
		ConditionSessionsCompleted,
		ConditionCardsMasteredSingleDeck,
		ConditionCardsPerMinute,
		ConditionSessionTimeOfDay,
		ConditionPerfectScoreMinCards,
		ConditionSingleSessionXP,
	}
}

// RequiresSessionContext reports whether the condition can only be evaluated
// with a session context.
func (t ConditionType) RequiresSessionContext() bool {
	switch t {
	case ConditionCardsPerMinute, ConditionSessionTimeOfDay,
		ConditionPerfectScoreMinCards, ConditionSingleSessionXP:
		return true
	}
	return false
}

// RequiresDeckStats reports whether the condition needs deck subsystem counts.
func (t ConditionType) RequiresDeckStats() bool {
	return t == ConditionDecksCreated || t == ConditionCardsMasteredSingleDeck
}

// RequiresSessionStats reports whether the condition needs session subsystem
// counts.
func (t ConditionType) RequiresSessionStats() bool {
	return t == ConditionSessionsCompleted
}

// Tier groups achievements for presentation.
type Tier string

const (
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

// Definition is a static catalog entry. Immutable at runtime.
type Definition struct {
	ID             string
	Name           string
	Description    string
	ConditionType  ConditionType
	ConditionValue int
	XPReward       int
	Tier           Tier
}

// Catalog is an injected immutable lookup over achievement definitions.
// Modeled as a value rather than a package-level singleton so tests can
// substitute a synthetic catalog.
type Catalog struct {
	defs []Definition
	byID map[string]Definition
}

// NewCatalog builds a catalog from a definition list.
func NewCatalog(defs []Definition) *Catalog {
	byID := make(map[string]Definition, len(defs))
	for _, d := range defs {
		byID[d.ID] = d
	}
	return &Catalog{defs: defs, byID: byID}
}

// All returns every definition in catalog order.
func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Get returns a definition by ID.
func (c *Catalog) Get(id string) (Definition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// DefaultCatalog returns the production achievement set.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Definition{
		{ID: "first_deck_done", Name: "Getting Started", Description: "Complete your first deck", ConditionType: ConditionDecksCompleted, ConditionValue: 1, XPReward: 50, Tier: TierBronze},
		{ID: "deck_collector", Name: "Deck Collector", Description: "Complete 10 decks", ConditionType: ConditionDecksCompleted, ConditionValue: 10, XPReward: 200, Tier: TierSilver},
		{ID: "streak_week", Name: "Week of Fire", Description: "Study 7 days in a row", ConditionType: ConditionStreakDays, ConditionValue: 7, XPReward: 100, Tier: TierBronze},
		{ID: "streak_month", Name: "Iron Will", Description: "Study 30 days in a row", ConditionType: ConditionStreakDays, ConditionValue: 30, XPReward: 500, Tier: TierGold},
		{ID: "cards_100", Name: "Century", Description: "Master 100 cards", ConditionType: ConditionCardsMastered, ConditionValue: 100, XPReward: 150, Tier: TierSilver},
		{ID: "level_5", Name: "Apprentice", Description: "Reach level 5", ConditionType: ConditionLevelReached, ConditionValue: 5, XPReward: 100, Tier: TierBronze},
		{ID: "level_10", Name: "Scholar", Description: "Reach level 10", ConditionType: ConditionLevelReached, ConditionValue: 10, XPReward: 250, Tier: TierGold},
		{ID: "xp_5000", Name: "Point Hoarder", Description: "Earn 5000 lifetime XP", ConditionType: ConditionTotalXP, ConditionValue: 5000, XPReward: 200, Tier: TierSilver},
		{ID: "deck_builder", Name: "Deck Builder", Description: "Create 5 decks", ConditionType: ConditionDecksCreated, ConditionValue: 5, XPReward: 75, Tier: TierBronze},
		{ID: "sessions_50", Name: "Regular", Description: "Complete 50 study sessions", ConditionType: ConditionSessionsCompleted, ConditionValue: 50, XPReward: 150, Tier: TierSilver},
		{ID: "speed_demon", Name: "Speed Demon", Description: "Answer 20 cards per minute", ConditionType: ConditionCardsPerMinute, ConditionValue: 20, XPReward: 200, Tier: TierGold},
		{ID: "night_owl", Name: "Night Owl", Description: "Finish a session in the dead of night", ConditionType: ConditionSessionTimeOfDay, ConditionValue: 2200, XPReward: 25, Tier: TierBronze},
		{ID: "early_bird", Name: "Early Bird", Description: "Finish a session before the day begins", ConditionType: ConditionSessionTimeOfDay, ConditionValue: 500, XPReward: 25, Tier: TierBronze},
		{ID: "perfectionist", Name: "Perfectionist", Description: "Score 100% on a session of 20+ cards", ConditionType: ConditionPerfectScoreMinCards, ConditionValue: 20, XPReward: 150, Tier: TierSilver},
		{ID: "big_session", Name: "Marathon", Description: "Earn 300 XP in one session", ConditionType: ConditionSingleSessionXP, ConditionValue: 300, XPReward: 100, Tier: TierSilver},
		{ID: "deck_master", Name: "Deck Master", Description: "Fully master every card of a deck", ConditionType: ConditionCardsMasteredSingleDeck, ConditionValue: 1, XPReward: 300, Tier: TierGold},
	})
}
