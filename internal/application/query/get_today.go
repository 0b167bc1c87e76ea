// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/memodeck/memodeck-progression/internal/domain/challenge"
	"github.com/memodeck/memodeck-progression/internal/domain/progression"
	"github.com/memodeck/memodeck-progression/internal/domain/session"
	"github.com/memodeck/memodeck-progression/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET TODAY QUERY
// Returns the user's daily challenge board: frozen targets, live progress
// derived from today's sessions, and claim state. Polled by the client on
// every auto-save tick, so the activity aggregate sits behind a short cache.
// ══════════════════════════════════════════════════════════════════════════════

// ActivityCache is a short-TTL cache in front of the day's activity aggregate.
// A cached value may lag the database, and within a day activity only grows,
// so staleness can only under-report progress — a cache hit can never show a
// challenge as complete that a claim would reject.
type ActivityCache interface {
	GetDayActivity(ctx context.Context, userID string, day time.Time) (*session.DayActivity, bool)
	SetDayActivity(ctx context.Context, userID string, day time.Time, activity session.DayActivity)
	InvalidateDay(ctx context.Context, userID string, day time.Time)
}

// GetTodayQuery contains the query parameters.
type GetTodayQuery struct {
	// UserID is the internal ID of the user.
	UserID string

	// Day is any time within the calendar day to display. Zero means now.
	Day time.Time
}

// Validate validates the query.
func (q GetTodayQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_today: user_id is required")
	}
	return nil
}

// GetTodayResult is the challenge board for one day.
type GetTodayResult struct {
	UserID string
	Date   time.Time

	Challenges []challenge.Progress

	// Activity echoes the aggregate the progress numbers were derived from.
	CorrectAnswers int
	MinutesStudied int
}

// GetTodayHandler handles the GetTodayQuery.
type GetTodayHandler struct {
	challengeRepo   challenge.Repository
	progressionRepo progression.Repository
	activitySource  session.ActivitySource
	cache           ActivityCache // optional
	log             *logger.Logger
}

// NewGetTodayHandler creates a new GetTodayHandler.
func NewGetTodayHandler(
	challengeRepo challenge.Repository,
	progressionRepo progression.Repository,
	activitySource session.ActivitySource,
	cache ActivityCache,
	log *logger.Logger,
) *GetTodayHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetTodayHandler{
		challengeRepo:   challengeRepo,
		progressionRepo: progressionRepo,
		activitySource:  activitySource,
		cache:           cache,
		log:             log.With(logger.Component("daily_challenge")),
	}
}

// Handle executes the get today query.
func (h *GetTodayHandler) Handle(ctx context.Context, q GetTodayQuery) (*GetTodayResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_today: validation failed: %w", err)
	}

	day := q.Day
	if day.IsZero() {
		day = time.Now().UTC()
	}

	user, err := h.progressionRepo.Get(ctx, progression.UserID(q.UserID))
	if err != nil {
		return nil, fmt.Errorf("get_today: failed to get user: %w", err)
	}

	state, err := h.challengeRepo.GetOrCreate(ctx, q.UserID, day, user.Level)
	if err != nil {
		return nil, fmt.Errorf("get_today: failed to load challenge state: %w", err)
	}

	activity, err := h.dayActivity(ctx, q.UserID, day)
	if err != nil {
		return nil, err
	}

	for _, d := range activity.Divergent {
		h.log.Warn("session correct-count diverges from answer map",
			logger.UserID(q.UserID),
			logger.String("session_id", d.SessionID),
			logger.Int("correct_count", d.CorrectCount),
			logger.Int("answer_count", d.AnswerCount))
	}

	result := &GetTodayResult{
		UserID:         q.UserID,
		Date:           state.Date,
		Challenges:     make([]challenge.Progress, 0, len(challenge.Kinds())),
		CorrectAnswers: activity.CorrectAnswers,
		MinutesStudied: activity.MinutesStudied(),
	}

	for _, kind := range challenge.Kinds() {
		p, err := state.ProgressFor(kind, activity)
		if err != nil {
			return nil, fmt.Errorf("get_today: failed to compute progress: %w", err)
		}
		result.Challenges = append(result.Challenges, p)
	}

	return result, nil
}

// dayActivity returns the day's aggregate, consulting the cache first.
func (h *GetTodayHandler) dayActivity(ctx context.Context, userID string, day time.Time) (session.DayActivity, error) {
	if h.cache != nil {
		if cached, ok := h.cache.GetDayActivity(ctx, userID, day); ok {
			return *cached, nil
		}
	}

	sessions, err := h.activitySource.SessionsForDay(ctx, userID, day)
	if err != nil {
		return session.DayActivity{}, fmt.Errorf("get_today: failed to load sessions: %w", err)
	}
	activity := session.AggregateDay(sessions)

	if h.cache != nil {
		h.cache.SetDayActivity(ctx, userID, day, activity)
	}

	return activity, nil
}
