package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/memodeck/memodeck-progression/internal/domain/challenge"
	"github.com/memodeck/memodeck-progression/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLAIM REWARD COMMAND
// Pays out one daily-challenge reward. Completion is re-derived from the day's
// sessions inside the claim transaction, never trusted from the client or from
// a cached display value.
// ══════════════════════════════════════════════════════════════════════════════

// ClaimRewardCommand contains the data for one reward claim.
type ClaimRewardCommand struct {
	// UserID is the internal ID of the user.
	UserID string

	// Challenge is the challenge kind to claim (cards, time, streak).
	Challenge challenge.Kind

	// Day is any time within the calendar day to claim for. Zero means today.
	Day time.Time
}

// Validate validates the command.
func (c ClaimRewardCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("claim_reward: user_id is required")
	}
	if !c.Challenge.IsValid() {
		return fmt.Errorf("claim_reward: %w: %s", challenge.ErrUnknownKind, c.Challenge)
	}
	return nil
}

// ClaimRewardResult contains the outcome of a successful claim.
type ClaimRewardResult struct {
	UserID      string
	Challenge   challenge.Kind
	XPAwarded   int
	Level       int
	CurrentXP   int
	NextLevelXP int
	TotalXP     int
	LeveledUp   bool

	// Events contains domain events generated.
	Events []shared.Event

	ClaimedAt time.Time
}

// ClaimRewardHandler handles the ClaimRewardCommand. It is deliberately thin:
// the lock / re-check / flag / credit sequence must be one atomic unit, so it
// lives behind the Claimer port and runs inside storage's transaction.
type ClaimRewardHandler struct {
	claimer        challenge.Claimer
	eventPublisher shared.EventPublisher
}

// NewClaimRewardHandler creates a new ClaimRewardHandler.
func NewClaimRewardHandler(
	claimer challenge.Claimer,
	eventPublisher shared.EventPublisher,
) *ClaimRewardHandler {
	return &ClaimRewardHandler{
		claimer:        claimer,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the claim reward command. Expected rejections — the reward
// was already claimed, or the challenge is not actually complete — come back
// as shared.ErrAlreadyProcessed / shared.ErrNotEligible wrapped errors.
func (h *ClaimRewardHandler) Handle(ctx context.Context, cmd ClaimRewardCommand) (*ClaimRewardResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("claim_reward: validation failed: %w", err)
	}

	day := cmd.Day
	if day.IsZero() {
		day = time.Now().UTC()
	}

	claimed, err := h.claimer.Claim(ctx, cmd.UserID, day, cmd.Challenge)
	if err != nil {
		if shared.IsRejection(err) {
			return nil, err
		}
		return nil, fmt.Errorf("claim_reward: claim failed: %w", err)
	}

	result := &ClaimRewardResult{
		UserID:      cmd.UserID,
		Challenge:   claimed.Kind,
		XPAwarded:   claimed.XPAwarded,
		Level:       claimed.Level,
		CurrentXP:   claimed.CurrentXP,
		NextLevelXP: claimed.NextLevelXP,
		TotalXP:     claimed.TotalXP,
		LeveledUp:   claimed.LeveledUp,
		Events:      make([]shared.Event, 0, 1),
		ClaimedAt:   time.Now().UTC(),
	}

	result.Events = append(result.Events,
		shared.NewRewardClaimedEvent(cmd.UserID, string(claimed.Kind), claimed.XPAwarded, claimed.LeveledUp))

	if h.eventPublisher != nil {
		for _, event := range result.Events {
			_ = h.eventPublisher.Publish(event)
		}
	}

	return result, nil
}
