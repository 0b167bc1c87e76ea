package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/memodeck/memodeck-progression/internal/domain/session"
	"github.com/memodeck/memodeck-progression/internal/domain/shared"
	"github.com/memodeck/memodeck-progression/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION ACTIVITY SOURCE
// Read-only views over the study_sessions / decks tables owned by the
// deck/session service. The progression engine never writes here.
// ══════════════════════════════════════════════════════════════════════════════

// SessionRepository implements session.ActivitySource and
// session.DeckStatsSource over the shared database.
type SessionRepository struct {
	conn *Connection

	// loc decides which calendar day a session belongs to.
	loc *time.Location
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(conn *Connection, loc *time.Location) *SessionRepository {
	return &SessionRepository{conn: conn, loc: timeutil.In(loc)}
}

const selectSessionsForDaySQL = `
	SELECT id, user_id, deck_id, status, started_at, completed_at,
	       correct_count, duration_seconds, answers
	FROM study_sessions
	WHERE user_id = $1 AND started_at >= $2 AND started_at < $3
	ORDER BY started_at`

// SessionsForDay returns all of a user's sessions started on the calendar day
// containing `day`, regardless of status.
func (r *SessionRepository) SessionsForDay(ctx context.Context, userID string, day time.Time) ([]*session.Snapshot, error) {
	start, end := timeutil.DayBounds(day, r.loc)
	return querySessionsForDay(ctx, r.conn, userID, start, end)
}

// CompletedSessionCount returns the user's lifetime count of completed
// sessions.
func (r *SessionRepository) CompletedSessionCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM study_sessions WHERE user_id = $1 AND status = 'completed'`,
		userID).Scan(&count)
	if err != nil {
		return 0, shared.WrapError("session", "CompletedSessionCount", shared.ErrServiceUnavailable, "count failed", err)
	}
	return count, nil
}

// DecksCreated returns the count of non-deleted decks owned by the user.
func (r *SessionRepository) DecksCreated(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM decks WHERE owner_id = $1 AND deleted_at IS NULL`,
		userID).Scan(&count)
	if err != nil {
		return 0, shared.WrapError("session", "DecksCreated", shared.ErrServiceUnavailable, "count failed", err)
	}
	return count, nil
}

// FullyMasteredDecks returns the count of decks where every card is mastered
// for this user. Empty decks never count.
func (r *SessionRepository) FullyMasteredDecks(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM decks d
		WHERE d.deleted_at IS NULL
		  AND EXISTS (SELECT 1 FROM cards c WHERE c.deck_id = d.id)
		  AND NOT EXISTS (
			SELECT 1
			FROM cards c
			LEFT JOIN card_progress p ON p.card_id = c.id AND p.user_id = $1
			WHERE c.deck_id = d.id AND COALESCE(p.mastered, FALSE) = FALSE
		  )`,
		userID).Scan(&count)
	if err != nil {
		return 0, shared.WrapError("session", "FullyMasteredDecks", shared.ErrServiceUnavailable, "count failed", err)
	}
	return count, nil
}

// querySessionsForDay runs the day query against any Querier, so the claim
// transaction can re-read today's sessions inside its own tx.
func querySessionsForDay(ctx context.Context, q Querier, userID string, start, end time.Time) ([]*session.Snapshot, error) {
	rows, err := q.Query(ctx, selectSessionsForDaySQL, userID, start, end)
	if err != nil {
		return nil, shared.WrapError("session", "SessionsForDay", shared.ErrServiceUnavailable, "query failed", err)
	}
	defer rows.Close()

	sessions := make([]*session.Snapshot, 0)
	for rows.Next() {
		var s session.Snapshot
		var answersRaw []byte
		err := rows.Scan(&s.ID, &s.UserID, &s.DeckID, &s.Status, &s.StartedAt,
			&s.CompletedAt, &s.CorrectCount, &s.DurationSeconds, &answersRaw)
		if err != nil {
			return nil, shared.WrapError("session", "SessionsForDay", shared.ErrServiceUnavailable, "scan failed", err)
		}

		if len(answersRaw) > 0 {
			if err := json.Unmarshal(answersRaw, &s.Answers); err != nil {
				// A corrupt answers map degrades this session's map-derived
				// contribution to zero; the finalized counter still counts.
				s.Answers = nil
			}
		}

		sessions = append(sessions, &s)
	}

	return sessions, rows.Err()
}

var (
	_ session.ActivitySource  = (*SessionRepository)(nil)
	_ session.DeckStatsSource = (*SessionRepository)(nil)
)
