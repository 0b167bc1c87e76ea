package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/memodeck/memodeck-progression/internal/domain/progression"
	"github.com/memodeck/memodeck-progression/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESSION REPOSITORY
// Implements progression.Repository on top of the user_progression table.
// Every XP mutation runs inside a transaction that locks the user row, so
// concurrent rewards for the same user serialize instead of clobbering.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressionRepository is the PostgreSQL ledger store.
type ProgressionRepository struct {
	conn *Connection
}

// NewProgressionRepository creates a new ProgressionRepository.
func NewProgressionRepository(conn *Connection) *ProgressionRepository {
	return &ProgressionRepository{conn: conn}
}

const selectProgressionSQL = `
	SELECT user_id, level, current_xp, next_level_xp, total_xp,
	       streak, longest_streak, total_cards_learned, total_decks_completed,
	       updated_at
	FROM user_progression
	WHERE user_id = $1`

// Get returns the ledger state for a user.
func (r *ProgressionRepository) Get(ctx context.Context, userID progression.UserID) (*progression.UserProgression, error) {
	row := r.conn.QueryRow(ctx, selectProgressionSQL, string(userID))
	p, err := scanProgression(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrUserNotFound
		}
		return nil, shared.WrapError("progression", "Get", shared.ErrExternalService, "query failed", err)
	}
	return p, nil
}

// Create persists a fresh ledger state for a new user.
func (r *ProgressionRepository) Create(ctx context.Context, p *progression.UserProgression) error {
	if err := p.Validate(); err != nil {
		return err
	}

	_, err := r.conn.Exec(ctx, `
		INSERT INTO user_progression
			(user_id, level, current_xp, next_level_xp, total_xp,
			 streak, longest_streak, total_cards_learned, total_decks_completed, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(p.UserID), p.Level, p.CurrentXP, p.NextLevelXP, p.TotalXP,
		p.Streak, p.LongestStreak, p.TotalCardsLearned, p.TotalDecksCompleted, p.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("progression", "Create", shared.ErrAlreadyExists, "user already exists")
		}
		return shared.WrapError("progression", "Create", shared.ErrExternalService, "insert failed", err)
	}
	return nil
}

// ApplyDelta atomically applies an XP delta and journals the change.
func (r *ProgressionRepository) ApplyDelta(ctx context.Context, userID progression.UserID, delta int, reason string) (*progression.ApplyResult, error) {
	var result *progression.ApplyResult

	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		applied, err := applyDeltaTx(ctx, tx, string(userID), delta, reason)
		if err != nil {
			return err
		}
		result = applied
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// History returns the most recent journal entries for a user, newest first.
func (r *ProgressionRepository) History(ctx context.Context, userID progression.UserID, limit int) ([]progression.XPHistoryEntry, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT user_id, old_xp, new_xp, delta, reason, created_at
		FROM xp_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		string(userID), limit)
	if err != nil {
		return nil, shared.WrapError("progression", "History", shared.ErrExternalService, "query failed", err)
	}
	defer rows.Close()

	entries := make([]progression.XPHistoryEntry, 0, limit)
	for rows.Next() {
		var e progression.XPHistoryEntry
		var uid string
		if err := rows.Scan(&uid, &e.OldXP, &e.NewXP, &e.Delta, &e.Reason, &e.Timestamp); err != nil {
			return nil, shared.WrapError("progression", "History", shared.ErrExternalService, "scan failed", err)
		}
		e.UserID = progression.UserID(uid)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// SHARED TX HELPERS
// The claim transaction reuses these so a challenge payout and a plain XP
// credit are the exact same mutation.
// ══════════════════════════════════════════════════════════════════════════════

// lockProgressionTx loads the user row under FOR UPDATE, serializing every
// concurrent mutation for this user behind the row lock.
func lockProgressionTx(ctx context.Context, q Querier, userID string) (*progression.UserProgression, error) {
	row := q.QueryRow(ctx, selectProgressionSQL+" FOR UPDATE", userID)
	p, err := scanProgression(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrUserNotFound
		}
		return nil, shared.WrapError("progression", "Lock", shared.ErrExternalService, "query failed", err)
	}
	return p, nil
}

// applyDeltaTx runs the full ledger mutation inside the caller's transaction:
// lock the row, apply the delta through the domain rules, persist the
// normalized state, journal the change.
func applyDeltaTx(ctx context.Context, q Querier, userID string, delta int, reason string) (*progression.ApplyResult, error) {
	p, err := lockProgressionTx(ctx, q, userID)
	if err != nil {
		return nil, err
	}

	oldXP := p.CurrentXP
	applied := p.ApplyDelta(delta)

	_, err = q.Exec(ctx, `
		UPDATE user_progression
		SET level = $2, current_xp = $3, next_level_xp = $4, total_xp = $5, updated_at = $6
		WHERE user_id = $1`,
		userID, applied.Level, applied.CurrentXP, applied.NextLevelXP, applied.TotalXP, time.Now().UTC())
	if err != nil {
		return nil, shared.WrapError("progression", "ApplyDelta", shared.ErrExternalService, "update failed", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO xp_history (user_id, old_xp, new_xp, delta, reason)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, oldXP, applied.CurrentXP, delta, reason)
	if err != nil {
		return nil, shared.WrapError("progression", "ApplyDelta", shared.ErrExternalService, "journal insert failed", err)
	}

	return &applied, nil
}

// scanProgression scans one user_progression row.
func scanProgression(row interface{ Scan(...any) error }) (*progression.UserProgression, error) {
	var p progression.UserProgression
	var uid string
	err := row.Scan(&uid, &p.Level, &p.CurrentXP, &p.NextLevelXP, &p.TotalXP,
		&p.Streak, &p.LongestStreak, &p.TotalCardsLearned, &p.TotalDecksCompleted,
		&p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.UserID = progression.UserID(uid)
	return &p, nil
}

var _ progression.Repository = (*ProgressionRepository)(nil)
