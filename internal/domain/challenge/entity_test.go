package challenge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memodeck/memodeck-progression/internal/domain/session"
)

func TestTargetsForLevel(t *testing.T) {
	tests := []struct {
		level       int
		wantCards   int
		wantMinutes int
	}{
		{1, 30, 20},
		{2, 35, 20},
		{3, 35, 25},
		{4, 40, 25},
		{6, 45, 30},
		{8, 50, 30},  // cards capped
		{15, 50, 45}, // both capped
		{100, 50, 45},
	}

	for _, tt := range tests {
		got := TargetsForLevel(tt.level)
		assert.Equal(t, tt.wantCards, got.Cards, "cards target at level %d", tt.level)
		assert.Equal(t, tt.wantMinutes, got.TimeMinutes, "time target at level %d", tt.level)
	}
}

func TestTargetsForLevel_ClampsInvalidLevel(t *testing.T) {
	assert.Equal(t, TargetsForLevel(1), TargetsForLevel(0))
	assert.Equal(t, TargetsForLevel(1), TargetsForLevel(-3))
}

func TestKindRewardXP(t *testing.T) {
	assert.Equal(t, 50, KindCards.RewardXP())
	assert.Equal(t, 30, KindTime.RewardXP())
	assert.Equal(t, 100, KindStreak.RewardXP())
	assert.Equal(t, 0, Kind("bogus").RewardXP())
}

func TestKindIsValid(t *testing.T) {
	for _, k := range Kinds() {
		assert.True(t, k.IsValid())
	}
	assert.False(t, Kind("weekly").IsValid())
	assert.False(t, Kind("").IsValid())
}

func TestNewDailyState_FreezesTargets(t *testing.T) {
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	s, err := NewDailyState("user-1", date, 4)
	require.NoError(t, err)

	assert.Equal(t, 40, s.CardsTarget)
	assert.Equal(t, 25, s.TimeTarget)
	assert.False(t, s.CardsRewardClaimed)
	assert.False(t, s.TimeRewardClaimed)
	assert.False(t, s.StreakRewardClaimed)
}

func TestNewDailyState_EmptyUser(t *testing.T) {
	_, err := NewDailyState("", time.Now(), 1)
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestCompleted_Cards(t *testing.T) {
	s := &DailyState{CardsTarget: 30}

	done, err := s.Completed(KindCards, session.DayActivity{CorrectAnswers: 29})
	require.NoError(t, err)
	assert.False(t, done)

	done, err = s.Completed(KindCards, session.DayActivity{CorrectAnswers: 30})
	require.NoError(t, err)
	assert.True(t, done)
}

func TestCompleted_Time(t *testing.T) {
	s := &DailyState{TimeTarget: 20}

	done, err := s.Completed(KindTime, session.DayActivity{SecondsStudied: 20*60 - 1})
	require.NoError(t, err)
	assert.False(t, done, "19m59s rounds down to 19 minutes")

	done, err = s.Completed(KindTime, session.DayActivity{SecondsStudied: 20 * 60})
	require.NoError(t, err)
	assert.True(t, done)
}

func TestCompleted_StreakUsesSharedPredicate(t *testing.T) {
	s := &DailyState{}

	done, err := s.Completed(KindStreak, session.DayActivity{CorrectAnswers: 20})
	require.NoError(t, err)
	assert.True(t, done)

	done, err = s.Completed(KindStreak, session.DayActivity{SecondsStudied: 10 * 60})
	require.NoError(t, err)
	assert.True(t, done)

	done, err = s.Completed(KindStreak, session.DayActivity{CorrectAnswers: 19, SecondsStudied: 9 * 60})
	require.NoError(t, err)
	assert.False(t, done)
}

func TestCompleted_UnknownKind(t *testing.T) {
	s := &DailyState{}
	_, err := s.Completed(Kind("bogus"), session.DayActivity{})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestClaimFlagsAreIndependent(t *testing.T) {
	s := &DailyState{}

	require.NoError(t, s.MarkClaimed(KindCards))

	cards, _ := s.Claimed(KindCards)
	tim, _ := s.Claimed(KindTime)
	streak, _ := s.Claimed(KindStreak)

	assert.True(t, cards)
	assert.False(t, tim)
	assert.False(t, streak)
}

func TestMarkClaimed_UnknownKind(t *testing.T) {
	s := &DailyState{}
	assert.ErrorIs(t, s.MarkClaimed(Kind("bogus")), ErrUnknownKind)
}

func TestProgressFor_Cards(t *testing.T) {
	s := &DailyState{CardsTarget: 30}

	p, err := s.ProgressFor(KindCards, session.DayActivity{CorrectAnswers: 12})
	require.NoError(t, err)

	assert.Equal(t, KindCards, p.Kind)
	assert.Equal(t, 12, p.Current)
	assert.Equal(t, 30, p.Target)
	assert.False(t, p.Done)
	assert.False(t, p.Claimed)
	assert.Equal(t, 50, p.Reward)
}

func TestProgressFor_StreakIsBinary(t *testing.T) {
	s := &DailyState{}

	p, err := s.ProgressFor(KindStreak, session.DayActivity{})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Current)
	assert.Equal(t, 1, p.Target)

	p, err = s.ProgressFor(KindStreak, session.DayActivity{SecondsStudied: 15 * 60})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Current)
	assert.True(t, p.Done)
}

func TestProgressFor_ReflectsClaimState(t *testing.T) {
	s := &DailyState{TimeTarget: 20}
	require.NoError(t, s.MarkClaimed(KindTime))

	p, err := s.ProgressFor(KindTime, session.DayActivity{SecondsStudied: 25 * 60})
	require.NoError(t, err)
	assert.True(t, p.Done)
	assert.True(t, p.Claimed)
}
