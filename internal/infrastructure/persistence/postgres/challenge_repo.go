package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/memodeck/memodeck-progression/internal/domain/challenge"
	"github.com/memodeck/memodeck-progression/internal/domain/progression"
	"github.com/memodeck/memodeck-progression/internal/domain/session"
	"github.com/memodeck/memodeck-progression/internal/domain/shared"
	"github.com/memodeck/memodeck-progression/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHALLENGE REPOSITORY
// Implements challenge.Repository and challenge.Claimer. The claim runs as one
// transaction: lock the user row, re-derive today's aggregate from the
// sessions table, check eligibility, flip the flag, credit the XP. Nothing
// about eligibility is trusted from outside the transaction.
// ══════════════════════════════════════════════════════════════════════════════

// ChallengeRepository is the PostgreSQL daily challenge store.
type ChallengeRepository struct {
	conn *Connection
	loc  *time.Location
}

// NewChallengeRepository creates a new ChallengeRepository.
func NewChallengeRepository(conn *Connection, loc *time.Location) *ChallengeRepository {
	return &ChallengeRepository{conn: conn, loc: timeutil.In(loc)}
}

const selectChallengeSQL = `
	SELECT user_id, date, cards_target, time_target,
	       cards_claimed, time_claimed, streak_claimed, created_at
	FROM daily_challenges
	WHERE user_id = $1 AND date = $2`

// GetOrCreate returns the user's challenge state for the given day, creating
// it with targets frozen at the given level when none exists. The insert uses
// ON CONFLICT DO NOTHING so creation races resolve to a single row.
func (r *ChallengeRepository) GetOrCreate(ctx context.Context, userID string, day time.Time, level int) (*challenge.DailyState, error) {
	date := timeutil.StartOfDay(day, r.loc)

	state, err := challenge.NewDailyState(userID, date, level)
	if err != nil {
		return nil, err
	}

	_, err = r.conn.Exec(ctx, `
		INSERT INTO daily_challenges (user_id, date, cards_target, time_target)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, date) DO NOTHING`,
		userID, date, state.CardsTarget, state.TimeTarget)
	if err != nil {
		return nil, shared.WrapError("challenge", "GetOrCreate", shared.ErrExternalService, "insert failed", err)
	}

	return r.Get(ctx, userID, day)
}

// Get returns the user's challenge state for the given day.
func (r *ChallengeRepository) Get(ctx context.Context, userID string, day time.Time) (*challenge.DailyState, error) {
	date := timeutil.StartOfDay(day, r.loc)
	return scanChallenge(r.conn.QueryRow(ctx, selectChallengeSQL, userID, date))
}

// Claim executes one reward claim atomically. The user row lock serializes
// concurrent claims for the same user, so the claimed-flag check cannot race.
func (r *ChallengeRepository) Claim(ctx context.Context, userID string, day time.Time, kind challenge.Kind) (*challenge.ClaimResult, error) {
	if !kind.IsValid() {
		return nil, shared.ErrUnknownChallengeKind
	}

	date := timeutil.StartOfDay(day, r.loc)
	var result *challenge.ClaimResult

	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		user, err := lockProgressionTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		state, err := r.challengeForUpdateTx(ctx, tx, userID, date, user.Level)
		if err != nil {
			return err
		}

		claimed, err := state.Claimed(kind)
		if err != nil {
			return shared.ErrUnknownChallengeKind
		}
		if claimed {
			return shared.ErrAlreadyClaimed
		}

		// Completion is re-derived from the sessions table inside this
		// transaction — the display path and this check share AggregateDay,
		// so they cannot disagree on the same data.
		start, end := timeutil.DayBounds(date, r.loc)
		sessions, err := querySessionsForDay(ctx, tx, userID, start, end)
		if err != nil {
			return err
		}
		done, err := state.Completed(kind, session.AggregateDay(sessions))
		if err != nil {
			return shared.ErrUnknownChallengeKind
		}
		if !done {
			return shared.ErrChallengeNotCompleted
		}

		column, err := claimColumn(kind)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, fmt.Sprintf(
			`UPDATE daily_challenges SET %s = TRUE WHERE user_id = $1 AND date = $2`, column),
			userID, date)
		if err != nil {
			return shared.WrapError("challenge", "Claim", shared.ErrExternalService, "flag update failed", err)
		}

		applied, err := applyDeltaTx(ctx, tx, userID, kind.RewardXP(), progression.ReasonChallengeReward)
		if err != nil {
			return err
		}

		result = &challenge.ClaimResult{
			Kind:        kind,
			XPAwarded:   kind.RewardXP(),
			Level:       applied.Level,
			CurrentXP:   applied.CurrentXP,
			NextLevelXP: applied.NextLevelXP,
			TotalXP:     applied.TotalXP,
			LeveledUp:   applied.LeveledUp(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// challengeForUpdateTx loads the day's challenge row inside the transaction,
// lazily creating it when the claim is the day's first touch.
func (r *ChallengeRepository) challengeForUpdateTx(ctx context.Context, tx pgx.Tx, userID string, date time.Time, level int) (*challenge.DailyState, error) {
	state, err := scanChallenge(tx.QueryRow(ctx, selectChallengeSQL+" FOR UPDATE", userID, date))
	if err == nil {
		return state, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	fresh, err := challenge.NewDailyState(userID, date, level)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO daily_challenges (user_id, date, cards_target, time_target)
		VALUES ($1, $2, $3, $4)`,
		userID, date, fresh.CardsTarget, fresh.TimeTarget)
	if err != nil {
		return nil, shared.WrapError("challenge", "Claim", shared.ErrExternalService, "lazy insert failed", err)
	}
	return fresh, nil
}

// claimColumn maps a challenge kind to its flag column. Column names are
// fixed strings, never user input.
func claimColumn(kind challenge.Kind) (string, error) {
	switch kind {
	case challenge.KindCards:
		return "cards_claimed", nil
	case challenge.KindTime:
		return "time_claimed", nil
	case challenge.KindStreak:
		return "streak_claimed", nil
	}
	return "", shared.ErrUnknownChallengeKind
}

// scanChallenge scans one daily_challenges row.
func scanChallenge(row pgx.Row) (*challenge.DailyState, error) {
	var s challenge.DailyState
	err := row.Scan(&s.UserID, &s.Date, &s.CardsTarget, &s.TimeTarget,
		&s.CardsRewardClaimed, &s.TimeRewardClaimed, &s.StreakRewardClaimed, &s.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrChallengeNotFound
		}
		return nil, shared.WrapError("challenge", "Get", shared.ErrExternalService, "scan failed", err)
	}
	return &s, nil
}

var (
	_ challenge.Repository = (*ChallengeRepository)(nil)
	_ challenge.Claimer    = (*ChallengeRepository)(nil)
)
