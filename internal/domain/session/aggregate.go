package session

import (
	"time"
)

// Streak-qualification thresholds: a day counts toward the consecutive-day
// streak when at least this many minutes were studied OR at least this many
// cards were answered correctly.
const (
	StreakMinMinutes = 10
	StreakMinCorrect = 20
)

// DayActivity is the aggregate of one user's study activity over one calendar
// day, derived from all of the day's sessions regardless of status.
type DayActivity struct {
	CorrectAnswers int
	SecondsStudied int

	// Divergent lists sessions whose finalized counter disagrees with their
	// answer map. Divergence is a data-quality signal worth logging, never
	// something to silently average.
	Divergent []Divergence
}

// Divergence records a finalized-counter / answer-map disagreement.
type Divergence struct {
	SessionID    string
	CorrectCount int
	AnswerCount  int
}

// MinutesStudied returns the studied time rounded down to whole minutes.
func (a DayActivity) MinutesStudied() int {
	return a.SecondsStudied / 60
}

// QualifiesForStreak reports whether this day's activity counts toward the
// consecutive-day streak. The daily challenge tracker uses the same predicate
// for its streak challenge, so the two can never disagree.
func (a DayActivity) QualifiesForStreak() bool {
	return a.MinutesStudied() >= StreakMinMinutes || a.CorrectAnswers >= StreakMinCorrect
}

// AggregateDay folds a day's sessions into one activity aggregate.
//
// For completed sessions the finalized CorrectCount is authoritative; for
// active sessions the live answer map is. Both progress display and reward
// eligibility MUST go through this one function — computing them separately is
// exactly the bug where the UI shows a challenge as complete while the claim
// is rejected.
func AggregateDay(sessions []*Snapshot) DayActivity {
	var agg DayActivity

	for _, s := range sessions {
		if s == nil {
			continue
		}

		switch s.Status {
		case StatusCompleted:
			if s.CorrectCount != nil {
				agg.CorrectAnswers += *s.CorrectCount
				if len(s.Answers) > 0 && s.CorrectAnswers() != *s.CorrectCount {
					agg.Divergent = append(agg.Divergent, Divergence{
						SessionID:    s.ID,
						CorrectCount: *s.CorrectCount,
						AnswerCount:  s.CorrectAnswers(),
					})
				}
			} else if len(s.Answers) > 0 {
				// Completed without a finalized counter: fall back to the map
				// and flag the record.
				agg.CorrectAnswers += s.CorrectAnswers()
				agg.Divergent = append(agg.Divergent, Divergence{
					SessionID:   s.ID,
					AnswerCount: s.CorrectAnswers(),
				})
			}
			agg.SecondsStudied += s.DurationSeconds

		case StatusActive:
			agg.CorrectAnswers += s.CorrectAnswers()
			agg.SecondsStudied += s.DurationSeconds
		}
	}

	return agg
}

// ContinuesStreak reports whether activity on day `today` continues a streak
// whose last qualifying day was `lastActive`. Same day keeps the streak
// unchanged, the next day extends it, any gap breaks it.
type StreakStep int

const (
	StreakSameDay StreakStep = iota
	StreakExtended
	StreakBroken
	StreakStarted
)

// ClassifyStreakDay decides how a qualifying day relates to the previous
// qualifying day. Both times are truncated to dates in loc.
func ClassifyStreakDay(lastActive, today time.Time, loc *time.Location) StreakStep {
	if lastActive.IsZero() {
		return StreakStarted
	}

	last := truncateToDay(lastActive, loc)
	cur := truncateToDay(today, loc)

	switch int(cur.Sub(last).Hours() / 24) {
	case 0:
		return StreakSameDay
	case 1:
		return StreakExtended
	default:
		return StreakBroken
	}
}

func truncateToDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
