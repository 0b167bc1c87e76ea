// Package shared contains common domain types, errors and events used across
// all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the progression engine and that the calling layer may want to
// surface (celebration animations, notifications, analytics).
const (
	// Ledger events
	EventXPApplied EventType = "progression.xp_applied"
	EventLevelUp   EventType = "progression.level_up"

	// Achievement events
	EventAchievementUnlocked EventType = "achievement.unlocked"

	// Challenge events
	EventChallengeCreated EventType = "challenge.created"
	EventRewardClaimed    EventType = "challenge.reward_claimed"

	// Streak events
	EventStreakContinued EventType = "streak.continued"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes a single domain event.
type EventHandler interface {
	Handle(event Event) error
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(event Event) error

// Handle implements EventHandler.
func (f EventHandlerFunc) Handle(event Event) error {
	return f(event)
}

// EventPublisher publishes domain events to interested subscribers.
type EventPublisher interface {
	Publish(event Event) error
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// LevelUpEvent is emitted when a ledger mutation raised the user's level.
type LevelUpEvent struct {
	BaseEvent
	OldLevel int `json:"old_level"`
	NewLevel int `json:"new_level"`
	TotalXP  int `json:"total_xp"`
}

// NewLevelUpEvent creates a level-up event.
func NewLevelUpEvent(userID string, oldLevel, newLevel, totalXP int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, userID),
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		TotalXP:   totalXP,
	}
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"old_level": e.OldLevel,
		"new_level": e.NewLevel,
		"total_xp":  e.TotalXP,
	}
}

// AchievementUnlockedEvent is emitted when an achievement is newly unlocked.
type AchievementUnlockedEvent struct {
	BaseEvent
	AchievementID string `json:"achievement_id"`
	XPAwarded     int    `json:"xp_awarded"`
}

// NewAchievementUnlockedEvent creates an achievement-unlocked event.
func NewAchievementUnlockedEvent(userID, achievementID string, xpAwarded int) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:     NewBaseEvent(EventAchievementUnlocked, userID),
		AchievementID: achievementID,
		XPAwarded:     xpAwarded,
	}
}

// Payload implements Event interface.
func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"achievement_id": e.AchievementID,
		"xp_awarded":     e.XPAwarded,
	}
}

// RewardClaimedEvent is emitted when a daily-challenge reward is paid out.
type RewardClaimedEvent struct {
	BaseEvent
	Challenge string `json:"challenge"`
	XPAwarded int    `json:"xp_awarded"`
	LeveledUp bool   `json:"leveled_up"`
}

// NewRewardClaimedEvent creates a reward-claimed event.
func NewRewardClaimedEvent(userID, challenge string, xpAwarded int, leveledUp bool) RewardClaimedEvent {
	return RewardClaimedEvent{
		BaseEvent: NewBaseEvent(EventRewardClaimed, userID),
		Challenge: challenge,
		XPAwarded: xpAwarded,
		LeveledUp: leveledUp,
	}
}

// Payload implements Event interface.
func (e RewardClaimedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"challenge":  e.Challenge,
		"xp_awarded": e.XPAwarded,
		"leveled_up": e.LeveledUp,
	}
}
