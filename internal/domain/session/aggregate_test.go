package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestAggregateDay_CompletedUsesFinalizedCounter(t *testing.T) {
	sessions := []*Snapshot{
		{
			ID:              "s1",
			Status:          StatusCompleted,
			CorrectCount:    intPtr(25),
			DurationSeconds: 600,
			Answers: map[string]AnswerOutcome{
				"c1": AnswerCorrect,
				"c2": AnswerIncorrect,
			},
		},
	}

	agg := AggregateDay(sessions)

	// The finalized counter wins even though the map only holds 1 correct.
	assert.Equal(t, 25, agg.CorrectAnswers)
	assert.Equal(t, 600, agg.SecondsStudied)
}

func TestAggregateDay_CompletedDivergenceIsRecorded(t *testing.T) {
	sessions := []*Snapshot{
		{
			ID:           "s1",
			Status:       StatusCompleted,
			CorrectCount: intPtr(25),
			Answers: map[string]AnswerOutcome{
				"c1": AnswerCorrect,
				"c2": AnswerCorrect,
				"c3": AnswerIncorrect,
			},
		},
	}

	agg := AggregateDay(sessions)

	assert.Len(t, agg.Divergent, 1)
	assert.Equal(t, "s1", agg.Divergent[0].SessionID)
	assert.Equal(t, 25, agg.Divergent[0].CorrectCount)
	assert.Equal(t, 2, agg.Divergent[0].AnswerCount)
}

func TestAggregateDay_CompletedAgreementIsNotDivergent(t *testing.T) {
	sessions := []*Snapshot{
		{
			ID:           "s1",
			Status:       StatusCompleted,
			CorrectCount: intPtr(1),
			Answers:      map[string]AnswerOutcome{"c1": AnswerCorrect},
		},
	}

	agg := AggregateDay(sessions)

	assert.Empty(t, agg.Divergent)
}

func TestAggregateDay_CompletedWithoutCounterFallsBackToMap(t *testing.T) {
	sessions := []*Snapshot{
		{
			ID:     "s1",
			Status: StatusCompleted,
			Answers: map[string]AnswerOutcome{
				"c1": AnswerCorrect,
				"c2": AnswerCorrect,
				"c3": AnswerSkipped,
			},
			DurationSeconds: 120,
		},
	}

	agg := AggregateDay(sessions)

	assert.Equal(t, 2, agg.CorrectAnswers)
	assert.Len(t, agg.Divergent, 1)
}

func TestAggregateDay_ActiveUsesAnswerMap(t *testing.T) {
	sessions := []*Snapshot{
		{
			ID:     "s1",
			Status: StatusActive,
			Answers: map[string]AnswerOutcome{
				"c1": AnswerCorrect,
				"c2": AnswerCorrect,
				"c3": AnswerIncorrect,
				"c4": AnswerSkipped,
			},
			DurationSeconds: 300,
		},
	}

	agg := AggregateDay(sessions)

	assert.Equal(t, 2, agg.CorrectAnswers)
	assert.Equal(t, 300, agg.SecondsStudied)
	assert.Empty(t, agg.Divergent)
}

func TestAggregateDay_MixedStatuses(t *testing.T) {
	sessions := []*Snapshot{
		{ID: "done", Status: StatusCompleted, CorrectCount: intPtr(20), DurationSeconds: 480},
		{
			ID:     "live",
			Status: StatusActive,
			Answers: map[string]AnswerOutcome{
				"c1": AnswerCorrect,
				"c2": AnswerCorrect,
			},
			DurationSeconds: 240,
		},
		nil, // tolerated
	}

	agg := AggregateDay(sessions)

	assert.Equal(t, 22, agg.CorrectAnswers)
	assert.Equal(t, 720, agg.SecondsStudied)
}

func TestAggregateDay_Empty(t *testing.T) {
	agg := AggregateDay(nil)

	assert.Equal(t, 0, agg.CorrectAnswers)
	assert.Equal(t, 0, agg.SecondsStudied)
	assert.False(t, agg.QualifiesForStreak())
}

func TestQualifiesForStreak_MinutesBoundary(t *testing.T) {
	assert.False(t, DayActivity{SecondsStudied: 9 * 60}.QualifiesForStreak())
	assert.False(t, DayActivity{SecondsStudied: 10*60 - 1}.QualifiesForStreak())
	assert.True(t, DayActivity{SecondsStudied: 10 * 60}.QualifiesForStreak())
}

func TestQualifiesForStreak_CorrectBoundary(t *testing.T) {
	assert.False(t, DayActivity{CorrectAnswers: 19}.QualifiesForStreak())
	assert.True(t, DayActivity{CorrectAnswers: 20}.QualifiesForStreak())
}

func TestQualifiesForStreak_EitherSuffices(t *testing.T) {
	assert.True(t, DayActivity{CorrectAnswers: 20, SecondsStudied: 0}.QualifiesForStreak())
	assert.True(t, DayActivity{CorrectAnswers: 0, SecondsStudied: 600}.QualifiesForStreak())
}

func TestMinutesStudied_RoundsDown(t *testing.T) {
	assert.Equal(t, 9, DayActivity{SecondsStudied: 599}.MinutesStudied())
	assert.Equal(t, 10, DayActivity{SecondsStudied: 600}.MinutesStudied())
}

func TestClassifyStreakDay(t *testing.T) {
	loc := time.UTC
	day := time.Date(2026, 3, 10, 15, 0, 0, 0, loc)

	assert.Equal(t, StreakStarted, ClassifyStreakDay(time.Time{}, day, loc))
	assert.Equal(t, StreakSameDay, ClassifyStreakDay(day.Add(-2*time.Hour), day, loc))
	assert.Equal(t, StreakExtended, ClassifyStreakDay(day.AddDate(0, 0, -1), day, loc))
	assert.Equal(t, StreakBroken, ClassifyStreakDay(day.AddDate(0, 0, -2), day, loc))
}

func TestClassifyStreakDay_LateNightToEarlyMorning(t *testing.T) {
	loc := time.UTC
	last := time.Date(2026, 3, 9, 23, 50, 0, 0, loc)
	today := time.Date(2026, 3, 10, 0, 10, 0, 0, loc)

	// 20 minutes apart but on consecutive calendar days.
	assert.Equal(t, StreakExtended, ClassifyStreakDay(last, today, loc))
}

func TestSnapshotCorrectAnswers(t *testing.T) {
	s := Snapshot{Answers: map[string]AnswerOutcome{
		"a": AnswerCorrect,
		"b": AnswerIncorrect,
		"c": AnswerCorrect,
		"d": AnswerSkipped,
	}}

	assert.Equal(t, 2, s.CorrectAnswers())
}

func TestContextCardsPerMinute(t *testing.T) {
	c := Context{CorrectCount: 30, DurationSeconds: 90}
	assert.InDelta(t, 20.0, c.CardsPerMinute(), 0.001)

	zero := Context{CorrectCount: 30, DurationSeconds: 0}
	assert.Equal(t, 0.0, zero.CardsPerMinute())
}
