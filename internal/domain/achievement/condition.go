package achievement

import (
	"github.com/memodeck/memodeck-progression/internal/domain/session"
)

// TimeOfDayWindowHours is the width of a session_time_of_day window.
const TimeOfDayWindowHours = 4

// NightWindowStartHour: windows starting at or after this hour wrap past
// midnight; earlier start hours are plain morning windows.
const NightWindowStartHour = 20

// CardsPerMinuteMinCorrect is the floor of the minimum-count guard for
// cards_per_minute: a session must have at least max(this, conditionValue)
// correct answers before its rate counts. Prevents a single lucky fast card
// from qualifying.
const CardsPerMinuteMinCorrect = 10

// Stats is the snapshot of a user's aggregate numbers that condition
// evaluation reads. The evaluator updates Level and TotalXP in place during a
// pass so one session can cascade into chained unlocks.
type Stats struct {
	Level               int
	StreakDays          int
	TotalCardsLearned   int
	TotalDecksCompleted int
	TotalXP             int

	// Counts fetched lazily from external subsystems; valid only when the
	// corresponding Has flag is set.
	DecksCreated       int
	HasDeckStats       bool
	SessionsCompleted  int
	HasSessionStats    bool
	FullyMasteredDecks int
}

// ConditionMet evaluates one catalog definition against the stat snapshot and
// an optional session context. Conditions that require a session context
// return false without error when sctx is nil — evaluation is safe to call
// with or without one. An unrecognized condition type is an error the caller
// logs and skips, so one malformed catalog entry cannot block the rest of the
// pass.
func ConditionMet(def Definition, stats *Stats, sctx *session.Context) (bool, error) {
	switch def.ConditionType {
	case ConditionDecksCompleted:
		return stats.TotalDecksCompleted >= def.ConditionValue, nil

	case ConditionStreakDays:
		return stats.StreakDays >= def.ConditionValue, nil

	case ConditionCardsMastered:
		return stats.TotalCardsLearned >= def.ConditionValue, nil

	case ConditionLevelReached:
		return stats.Level >= def.ConditionValue, nil

	case ConditionTotalXP:
		return stats.TotalXP >= def.ConditionValue, nil

	case ConditionDecksCreated:
		return stats.DecksCreated >= def.ConditionValue, nil

	case ConditionSessionsCompleted:
		return stats.SessionsCompleted >= def.ConditionValue, nil

	case ConditionCardsMasteredSingleDeck:
		return stats.FullyMasteredDecks >= def.ConditionValue, nil

	case ConditionCardsPerMinute:
		if sctx == nil {
			return false, nil
		}
		minCorrect := CardsPerMinuteMinCorrect
		if def.ConditionValue > minCorrect {
			minCorrect = def.ConditionValue
		}
		if sctx.CorrectCount < minCorrect {
			return false, nil
		}
		return sctx.CardsPerMinute() >= float64(def.ConditionValue), nil

	case ConditionSessionTimeOfDay:
		if sctx == nil {
			return false, nil
		}
		if sctx.CorrectCount <= 0 {
			return false, nil
		}
		return hourInWindow(sctx.CompletedAtHour, def.ConditionValue/100), nil

	case ConditionPerfectScoreMinCards:
		if sctx == nil {
			return false, nil
		}
		return sctx.Score == 100 && sctx.TotalCards >= def.ConditionValue, nil

	case ConditionSingleSessionXP:
		if sctx == nil {
			return false, nil
		}
		return sctx.SessionXP >= def.ConditionValue, nil
	}

	return false, ErrUnknownConditionType
}

// hourInWindow checks whether hour falls inside the 4-hour window starting at
// startHour. Windows starting at NightWindowStartHour or later wrap past
// midnight (e.g. 22 covers 22,23,0,1); earlier windows do not.
func hourInWindow(hour, startHour int) bool {
	if hour < 0 || hour > 23 {
		return false
	}

	end := startHour + TimeOfDayWindowHours
	if startHour >= NightWindowStartHour {
		end = end % 24
		return hour >= startHour || hour < end
	}
	return hour >= startHour && hour < end
}
