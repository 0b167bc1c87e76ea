// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/memodeck/memodeck-progression/internal/domain/progression"
	"github.com/memodeck/memodeck-progression/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLY XP COMMAND
// Credits or corrects a user's XP through the ledger. Every XP mutation in the
// system — session rewards, achievement awards, challenge payouts, manual
// corrections — goes through this single path.
// ══════════════════════════════════════════════════════════════════════════════

// ApplyXPCommand contains the data for one ledger mutation.
type ApplyXPCommand struct {
	// UserID is the internal ID of the user.
	UserID string

	// Delta is the XP change. Positive deltas are rewards; negative deltas are
	// corrections and never reduce lifetime totals.
	Delta int

	// Reason tags the journal entry (see progression.Reason* constants).
	Reason string
}

// Validate validates the command.
func (c ApplyXPCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("apply_xp: user_id is required")
	}
	switch c.Reason {
	case progression.ReasonSessionReward, progression.ReasonAchievementReward,
		progression.ReasonChallengeReward, progression.ReasonCorrection:
	default:
		return fmt.Errorf("apply_xp: unknown reason: %s", c.Reason)
	}
	return nil
}

// ApplyXPResult contains the normalized ledger state after the mutation.
type ApplyXPResult struct {
	UserID       string
	Level        int
	CurrentXP    int
	NextLevelXP  int
	TotalXP      int
	LeveledUp    bool
	LevelsGained int

	// Events contains domain events generated.
	Events []shared.Event
}

// ApplyXPHandler handles the ApplyXPCommand.
type ApplyXPHandler struct {
	progressionRepo progression.Repository
	eventPublisher  shared.EventPublisher
}

// NewApplyXPHandler creates a new ApplyXPHandler.
func NewApplyXPHandler(
	progressionRepo progression.Repository,
	eventPublisher shared.EventPublisher,
) *ApplyXPHandler {
	return &ApplyXPHandler{
		progressionRepo: progressionRepo,
		eventPublisher:  eventPublisher,
	}
}

// Handle executes the apply XP command.
func (h *ApplyXPHandler) Handle(ctx context.Context, cmd ApplyXPCommand) (*ApplyXPResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("apply_xp: validation failed: %w", err)
	}

	applied, err := h.progressionRepo.ApplyDelta(ctx, progression.UserID(cmd.UserID), cmd.Delta, cmd.Reason)
	if err != nil {
		return nil, fmt.Errorf("apply_xp: failed to apply delta: %w", err)
	}

	result := &ApplyXPResult{
		UserID:       cmd.UserID,
		Level:        applied.Level,
		CurrentXP:    applied.CurrentXP,
		NextLevelXP:  applied.NextLevelXP,
		TotalXP:      applied.TotalXP,
		LeveledUp:    applied.LeveledUp(),
		LevelsGained: applied.LevelsGained,
		Events:       make([]shared.Event, 0, 1),
	}

	if applied.LeveledUp() {
		event := shared.NewLevelUpEvent(cmd.UserID, applied.Level-applied.LevelsGained, applied.Level, applied.TotalXP)
		result.Events = append(result.Events, event)
	}

	// Publish events
	if h.eventPublisher != nil {
		for _, event := range result.Events {
			_ = h.eventPublisher.Publish(event)
		}
	}

	return result, nil
}
