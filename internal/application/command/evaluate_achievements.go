package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/memodeck/memodeck-progression/internal/domain/achievement"
	"github.com/memodeck/memodeck-progression/internal/domain/progression"
	"github.com/memodeck/memodeck-progression/internal/domain/session"
	"github.com/memodeck/memodeck-progression/internal/domain/shared"
	"github.com/memodeck/memodeck-progression/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVALUATE ACHIEVEMENTS COMMAND
// Runs one evaluation pass over the achievement catalog for a user, unlocking
// everything whose condition is met and crediting the rewards. Called after
// session completion (with a session context) or after any stat change
// (without one).
// ══════════════════════════════════════════════════════════════════════════════

// EvaluateAchievementsCommand contains the data for one evaluation pass.
type EvaluateAchievementsCommand struct {
	// UserID is the internal ID of the user.
	UserID string

	// SessionContext carries per-session aggregates for session-scoped
	// conditions. Nil outside session completion; session-scoped conditions
	// are then skipped, not failed.
	SessionContext *session.Context
}

// Validate validates the command.
func (c EvaluateAchievementsCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("evaluate_achievements: user_id is required")
	}
	return nil
}

// UnlockedAchievement describes one achievement unlocked by the pass.
type UnlockedAchievement struct {
	ID       string
	Name     string
	Tier     achievement.Tier
	XPReward int
}

// EvaluateAchievementsResult contains the outcome of an evaluation pass.
type EvaluateAchievementsResult struct {
	UserID string

	// Unlocked lists achievements newly unlocked by this pass, in unlock
	// order. Empty on a pass where nothing fired — including any repeat of an
	// earlier pass, since unlocks are one-time.
	Unlocked []UnlockedAchievement

	// XPAwarded is the total XP credited by this pass.
	XPAwarded int

	// Level and TotalXP are the ledger state after all awards.
	Level   int
	TotalXP int

	// Events contains domain events generated.
	Events []shared.Event

	EvaluatedAt time.Time
}

// EvaluateAchievementsHandler handles the EvaluateAchievementsCommand.
type EvaluateAchievementsHandler struct {
	catalog         *achievement.Catalog
	progressionRepo progression.Repository
	achievementRepo achievement.Repository
	activitySource  session.ActivitySource
	deckStats       session.DeckStatsSource
	eventPublisher  shared.EventPublisher
	log             *logger.Logger
}

// NewEvaluateAchievementsHandler creates a new EvaluateAchievementsHandler.
func NewEvaluateAchievementsHandler(
	catalog *achievement.Catalog,
	progressionRepo progression.Repository,
	achievementRepo achievement.Repository,
	activitySource session.ActivitySource,
	deckStats session.DeckStatsSource,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *EvaluateAchievementsHandler {
	if log == nil {
		log = logger.Default()
	}
	return &EvaluateAchievementsHandler{
		catalog:         catalog,
		progressionRepo: progressionRepo,
		achievementRepo: achievementRepo,
		activitySource:  activitySource,
		deckStats:       deckStats,
		eventPublisher:  eventPublisher,
		log:             log.With(logger.Component("achievement_evaluator")),
	}
}

// Handle executes the evaluate achievements command.
//
// The pass keeps a stat snapshot that it updates in place as awards land, and
// repeats until a full sweep unlocks nothing, so an award that raises the
// level can immediately unlock a level_reached achievement in the same call.
// The loop terminates because each sweep either shrinks the locked set or
// ends the pass.
func (h *EvaluateAchievementsHandler) Handle(ctx context.Context, cmd EvaluateAchievementsCommand) (*EvaluateAchievementsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("evaluate_achievements: validation failed: %w", err)
	}

	user, err := h.progressionRepo.Get(ctx, progression.UserID(cmd.UserID))
	if err != nil {
		return nil, fmt.Errorf("evaluate_achievements: failed to get user: %w", err)
	}

	unlocked, err := h.achievementRepo.UnlockedIDs(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("evaluate_achievements: failed to load unlocks: %w", err)
	}

	stats, err := h.buildStats(ctx, cmd.UserID, user)
	if err != nil {
		return nil, err
	}

	result := &EvaluateAchievementsResult{
		UserID:      cmd.UserID,
		Unlocked:    make([]UnlockedAchievement, 0),
		Events:      make([]shared.Event, 0),
		EvaluatedAt: time.Now().UTC(),
	}

	for {
		fired := false
		for _, def := range h.catalog.All() {
			if unlocked[def.ID] {
				continue
			}

			met, err := achievement.ConditionMet(def, stats, cmd.SessionContext)
			if err != nil {
				// A malformed catalog entry must not block the pass.
				h.log.Warn("skipping achievement with unknown condition type",
					logger.String("achievement_id", def.ID),
					logger.String("condition_type", string(def.ConditionType)),
					logger.Err(err))
				unlocked[def.ID] = true
				continue
			}
			if !met {
				continue
			}

			awarded, err := h.unlock(ctx, cmd.UserID, def, stats)
			if err != nil {
				return nil, err
			}
			unlocked[def.ID] = true
			if !awarded {
				// Lost the race to a concurrent pass; the winner pays out.
				continue
			}

			fired = true
			result.Unlocked = append(result.Unlocked, UnlockedAchievement{
				ID:       def.ID,
				Name:     def.Name,
				Tier:     def.Tier,
				XPReward: def.XPReward,
			})
			result.XPAwarded += def.XPReward
			result.Events = append(result.Events,
				shared.NewAchievementUnlockedEvent(cmd.UserID, def.ID, def.XPReward))
		}
		if !fired {
			break
		}
	}

	result.Level = stats.Level
	result.TotalXP = stats.TotalXP

	if h.eventPublisher != nil {
		for _, event := range result.Events {
			_ = h.eventPublisher.Publish(event)
		}
	}

	return result, nil
}

// unlock persists one unlock and credits its reward, updating the stat
// snapshot with the post-award ledger state. Returns false when a concurrent
// pass already holds the unlock; the XP award is skipped in that case.
func (h *EvaluateAchievementsHandler) unlock(
	ctx context.Context,
	userID string,
	def achievement.Definition,
	stats *achievement.Stats,
) (bool, error) {
	rec, err := achievement.NewUnlock(uuid.NewString(), userID, def.ID, def.XPReward)
	if err != nil {
		return false, fmt.Errorf("evaluate_achievements: invalid unlock: %w", err)
	}

	if err := h.achievementRepo.InsertUnlock(ctx, rec); err != nil {
		if errors.Is(err, achievement.ErrAlreadyUnlocked) || shared.IsAlreadyExists(err) {
			return false, nil
		}
		return false, fmt.Errorf("evaluate_achievements: failed to persist unlock: %w", err)
	}

	if def.XPReward > 0 {
		applied, err := h.progressionRepo.ApplyDelta(
			ctx, progression.UserID(userID), def.XPReward, progression.ReasonAchievementReward)
		if err != nil {
			return false, fmt.Errorf("evaluate_achievements: failed to credit reward: %w", err)
		}
		stats.Level = applied.Level
		stats.TotalXP = applied.TotalXP
	}

	h.log.Info("achievement unlocked",
		logger.UserID(userID),
		logger.String("achievement_id", def.ID),
		logger.XPAmount(def.XPReward))

	return true, nil
}

// buildStats assembles the stat snapshot for the pass. External subsystem
// counts are fetched only when some still-locked definition needs them; a
// catalog with no decks_created entry never touches the deck subsystem.
func (h *EvaluateAchievementsHandler) buildStats(
	ctx context.Context,
	userID string,
	user *progression.UserProgression,
) (*achievement.Stats, error) {
	stats := &achievement.Stats{
		Level:               user.Level,
		StreakDays:          user.Streak,
		TotalCardsLearned:   user.TotalCardsLearned,
		TotalDecksCompleted: user.TotalDecksCompleted,
		TotalXP:             user.TotalXP,
	}

	needDeck, needSession := false, false
	for _, def := range h.catalog.All() {
		if def.ConditionType.RequiresDeckStats() {
			needDeck = true
		}
		if def.ConditionType.RequiresSessionStats() {
			needSession = true
		}
	}

	if needDeck && h.deckStats != nil {
		created, err := h.deckStats.DecksCreated(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("evaluate_achievements: failed to count decks: %w", err)
		}
		mastered, err := h.deckStats.FullyMasteredDecks(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("evaluate_achievements: failed to count mastered decks: %w", err)
		}
		stats.DecksCreated = created
		stats.FullyMasteredDecks = mastered
		stats.HasDeckStats = true
	}

	if needSession && h.activitySource != nil {
		completed, err := h.activitySource.CompletedSessionCount(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("evaluate_achievements: failed to count sessions: %w", err)
		}
		stats.SessionsCompleted = completed
		stats.HasSessionStats = true
	}

	return stats, nil
}
