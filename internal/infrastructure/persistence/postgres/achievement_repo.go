package postgres

import (
	"context"

	"github.com/memodeck/memodeck-progression/internal/domain/achievement"
	"github.com/memodeck/memodeck-progression/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT REPOSITORY
// Implements achievement.Repository. The UNIQUE(user_id, achievement_id)
// constraint is the source of truth for unlock idempotence.
// ══════════════════════════════════════════════════════════════════════════════

// AchievementRepository is the PostgreSQL unlock store.
type AchievementRepository struct {
	conn *Connection
}

// NewAchievementRepository creates a new AchievementRepository.
func NewAchievementRepository(conn *Connection) *AchievementRepository {
	return &AchievementRepository{conn: conn}
}

// UnlockedIDs returns the set of achievement IDs already unlocked by the user.
func (r *AchievementRepository) UnlockedIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT achievement_id FROM achievement_unlocks WHERE user_id = $1`, userID)
	if err != nil {
		return nil, shared.WrapError("achievement", "UnlockedIDs", shared.ErrExternalService, "query failed", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, shared.WrapError("achievement", "UnlockedIDs", shared.ErrExternalService, "scan failed", err)
		}
		ids[id] = true
	}

	return ids, rows.Err()
}

// ListUnlocks returns the user's unlock records, newest first.
func (r *AchievementRepository) ListUnlocks(ctx context.Context, userID string) ([]*achievement.Unlock, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, user_id, achievement_id, unlocked_at, xp_awarded
		FROM achievement_unlocks
		WHERE user_id = $1
		ORDER BY unlocked_at DESC`,
		userID)
	if err != nil {
		return nil, shared.WrapError("achievement", "ListUnlocks", shared.ErrExternalService, "query failed", err)
	}
	defer rows.Close()

	unlocks := make([]*achievement.Unlock, 0)
	for rows.Next() {
		var u achievement.Unlock
		if err := rows.Scan(&u.ID, &u.UserID, &u.AchievementID, &u.UnlockedAt, &u.XPAwarded); err != nil {
			return nil, shared.WrapError("achievement", "ListUnlocks", shared.ErrExternalService, "scan failed", err)
		}
		unlocks = append(unlocks, &u)
	}

	return unlocks, rows.Err()
}

// InsertUnlock persists an unlock record. A unique violation means a
// concurrent evaluation already holds the unlock; the caller must skip the
// XP award.
func (r *AchievementRepository) InsertUnlock(ctx context.Context, unlock *achievement.Unlock) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO achievement_unlocks (id, user_id, achievement_id, unlocked_at, xp_awarded)
		VALUES ($1, $2, $3, $4, $5)`,
		unlock.ID, unlock.UserID, unlock.AchievementID, unlock.UnlockedAt, unlock.XPAwarded)
	if err != nil {
		if IsUniqueViolation(err) {
			return achievement.ErrAlreadyUnlocked
		}
		return shared.WrapError("achievement", "InsertUnlock", shared.ErrExternalService, "insert failed", err)
	}
	return nil
}

// SyncCatalog mirrors the in-code catalog into achievement_catalog so
// reporting queries can join on definitions. Called once at startup;
// definitions removed from code stay in the table for historical joins.
func (r *AchievementRepository) SyncCatalog(ctx context.Context, catalog *achievement.Catalog) error {
	for _, def := range catalog.All() {
		_, err := r.conn.Exec(ctx, `
			INSERT INTO achievement_catalog
				(id, name, description, condition_type, condition_value, xp_reward, tier)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name,
			    description = EXCLUDED.description,
			    condition_type = EXCLUDED.condition_type,
			    condition_value = EXCLUDED.condition_value,
			    xp_reward = EXCLUDED.xp_reward,
			    tier = EXCLUDED.tier`,
			def.ID, def.Name, def.Description, string(def.ConditionType),
			def.ConditionValue, def.XPReward, string(def.Tier))
		if err != nil {
			return shared.WrapError("achievement", "SyncCatalog", shared.ErrExternalService, "upsert failed", err)
		}
	}
	return nil
}

var _ achievement.Repository = (*AchievementRepository)(nil)
