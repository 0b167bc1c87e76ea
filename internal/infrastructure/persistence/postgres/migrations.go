package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_progression",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_study_tables",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE PROGRESSION
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create progression tables
-- Version: 001

-- Per-user ledger state. One row per user; all XP mutations lock this row
-- (SELECT ... FOR UPDATE) so concurrent credits serialize per user.
CREATE TABLE IF NOT EXISTS user_progression (
    user_id UUID PRIMARY KEY,
    level INTEGER NOT NULL DEFAULT 1,
    current_xp INTEGER NOT NULL DEFAULT 0,
    next_level_xp INTEGER NOT NULL DEFAULT 100,
    total_xp INTEGER NOT NULL DEFAULT 0,
    streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    total_cards_learned INTEGER NOT NULL DEFAULT 0,
    total_decks_completed INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_level CHECK (level >= 1),
    CONSTRAINT valid_current_xp CHECK (current_xp >= 0),
    CONSTRAINT valid_next_level_xp CHECK (next_level_xp > 0),
    CONSTRAINT valid_total_xp CHECK (total_xp >= 0),
    CONSTRAINT valid_streak CHECK (streak >= 0 AND longest_streak >= streak)
);

CREATE INDEX IF NOT EXISTS idx_user_progression_total_xp ON user_progression(total_xp DESC);

-- Append-only XP journal
CREATE TABLE IF NOT EXISTS xp_history (
    id SERIAL PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES user_progression(user_id) ON DELETE CASCADE,
    old_xp INTEGER NOT NULL,
    new_xp INTEGER NOT NULL,
    delta INTEGER NOT NULL,
    reason VARCHAR(50) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_xp_history_user_date ON xp_history(user_id, created_at DESC);

-- Achievement catalog mirror; definitions live in code and are synced here at
-- startup for reporting joins.
CREATE TABLE IF NOT EXISTS achievement_catalog (
    id VARCHAR(50) PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    condition_type VARCHAR(50) NOT NULL,
    condition_value INTEGER NOT NULL,
    xp_reward INTEGER NOT NULL DEFAULT 0,
    tier VARCHAR(20) NOT NULL DEFAULT 'bronze',

    CONSTRAINT valid_tier CHECK (tier IN ('bronze', 'silver', 'gold'))
);

-- One row per unlocked achievement. The UNIQUE pair is the idempotence
-- guarantee: a duplicate unlock attempt fails the insert instead of paying
-- out twice.
CREATE TABLE IF NOT EXISTS achievement_unlocks (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES user_progression(user_id) ON DELETE CASCADE,
    achievement_id VARCHAR(50) NOT NULL,
    unlocked_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    xp_awarded INTEGER NOT NULL DEFAULT 0,

    UNIQUE(user_id, achievement_id)
);

CREATE INDEX IF NOT EXISTS idx_achievement_unlocks_user ON achievement_unlocks(user_id, unlocked_at DESC);

-- Daily challenge state, one row per user per day, created lazily. Targets
-- are written once at creation and never updated.
CREATE TABLE IF NOT EXISTS daily_challenges (
    id SERIAL PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES user_progression(user_id) ON DELETE CASCADE,
    date DATE NOT NULL,
    cards_target INTEGER NOT NULL,
    time_target INTEGER NOT NULL,
    cards_claimed BOOLEAN NOT NULL DEFAULT FALSE,
    time_claimed BOOLEAN NOT NULL DEFAULT FALSE,
    streak_claimed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(user_id, date),
    CONSTRAINT valid_targets CHECK (cards_target > 0 AND time_target > 0)
);

CREATE INDEX IF NOT EXISTS idx_daily_challenges_user_date ON daily_challenges(user_id, date DESC);
`

const migration001Down = `
DROP TABLE IF EXISTS daily_challenges;
DROP TABLE IF EXISTS achievement_unlocks;
DROP TABLE IF EXISTS achievement_catalog;
DROP TABLE IF EXISTS xp_history;
DROP TABLE IF EXISTS user_progression;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE STUDY TABLES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create study tables
-- Version: 002
-- These tables are owned by the deck/session service; the progression engine
-- only reads them. They are created here so the engine runs standalone in
-- development and tests.

CREATE TABLE IF NOT EXISTS decks (
    id UUID PRIMARY KEY,
    owner_id UUID NOT NULL,
    title VARCHAR(255) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    deleted_at TIMESTAMP WITH TIME ZONE
);

CREATE INDEX IF NOT EXISTS idx_decks_owner ON decks(owner_id) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS cards (
    id UUID PRIMARY KEY,
    deck_id UUID NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_cards_deck ON cards(deck_id);

-- Per-user card mastery written by the spaced-repetition scheduler.
CREATE TABLE IF NOT EXISTS card_progress (
    user_id UUID NOT NULL,
    card_id UUID NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
    mastered BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY(user_id, card_id)
);

-- Study sessions. correct_count stays NULL until the session completes; the
-- answers map is written continuously while it is active.
CREATE TABLE IF NOT EXISTS study_sessions (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    deck_id UUID NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    started_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    completed_at TIMESTAMP WITH TIME ZONE,
    correct_count INTEGER,
    duration_seconds INTEGER NOT NULL DEFAULT 0,
    answers JSONB NOT NULL DEFAULT '{}'::jsonb,

    CONSTRAINT valid_session_status CHECK (status IN ('active', 'completed'))
);

CREATE INDEX IF NOT EXISTS idx_study_sessions_user_started ON study_sessions(user_id, started_at DESC);
CREATE INDEX IF NOT EXISTS idx_study_sessions_user_status ON study_sessions(user_id, status);
`

const migration002Down = `
DROP TABLE IF EXISTS study_sessions;
DROP TABLE IF EXISTS card_progress;
DROP TABLE IF EXISTS cards;
DROP TABLE IF EXISTS decks;
`
