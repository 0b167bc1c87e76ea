package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memodeck/memodeck-progression/internal/domain/challenge"
	"github.com/memodeck/memodeck-progression/internal/domain/session"
	"github.com/memodeck/memodeck-progression/internal/domain/shared"
)

func newClaimFixture(t *testing.T, level int, activity session.DayActivity) (*memClaimer, *memProgressionRepo) {
	t.Helper()

	repo := newMemProgressionRepo()
	repo.seed("user-1", nil)

	state, err := challenge.NewDailyState("user-1", time.Now().UTC(), level)
	require.NoError(t, err)

	return &memClaimer{progression: repo, state: state, activity: activity}, repo
}

func TestClaimReward_PaysOutCompletedChallenge(t *testing.T) {
	claimer, repo := newClaimFixture(t, 1, session.DayActivity{CorrectAnswers: 30})
	pub := &capturingPublisher{}
	h := NewClaimRewardHandler(claimer, pub)

	res, err := h.Handle(context.Background(), ClaimRewardCommand{
		UserID:    "user-1",
		Challenge: challenge.KindCards,
	})
	require.NoError(t, err)

	assert.Equal(t, challenge.KindCards, res.Challenge)
	assert.Equal(t, 50, res.XPAwarded)

	user, _ := repo.Get(context.Background(), "user-1")
	assert.Equal(t, 50, user.TotalXP)

	events := pub.byType(shared.EventRewardClaimed)
	require.Len(t, events, 1)
	claimed := events[0].(shared.RewardClaimedEvent)
	assert.Equal(t, "cards", claimed.Challenge)
	assert.Equal(t, "user-1", claimed.AggregateID())
}

func TestClaimReward_SecondClaimRejected(t *testing.T) {
	claimer, repo := newClaimFixture(t, 1, session.DayActivity{CorrectAnswers: 30})
	h := NewClaimRewardHandler(claimer, nil)

	_, err := h.Handle(context.Background(), ClaimRewardCommand{UserID: "user-1", Challenge: challenge.KindCards})
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), ClaimRewardCommand{UserID: "user-1", Challenge: challenge.KindCards})
	assert.ErrorIs(t, err, shared.ErrAlreadyProcessed)
	assert.True(t, shared.IsRejection(err))

	// No double payout.
	user, _ := repo.Get(context.Background(), "user-1")
	assert.Equal(t, 50, user.TotalXP)
}

func TestClaimReward_IncompleteChallengeRejected(t *testing.T) {
	claimer, repo := newClaimFixture(t, 1, session.DayActivity{CorrectAnswers: 29})
	h := NewClaimRewardHandler(claimer, nil)

	_, err := h.Handle(context.Background(), ClaimRewardCommand{UserID: "user-1", Challenge: challenge.KindCards})
	assert.ErrorIs(t, err, shared.ErrNotEligible)
	assert.True(t, shared.IsRejection(err))

	user, _ := repo.Get(context.Background(), "user-1")
	assert.Equal(t, 0, user.TotalXP)
}

func TestClaimReward_KindsClaimIndependently(t *testing.T) {
	// 30 correct and 25 minutes: cards, time and streak all complete.
	claimer, repo := newClaimFixture(t, 1, session.DayActivity{CorrectAnswers: 30, SecondsStudied: 25 * 60})
	h := NewClaimRewardHandler(claimer, nil)

	for _, kind := range challenge.Kinds() {
		res, err := h.Handle(context.Background(), ClaimRewardCommand{UserID: "user-1", Challenge: kind})
		require.NoError(t, err, "claiming %s", kind)
		assert.Equal(t, kind.RewardXP(), res.XPAwarded)
	}

	user, _ := repo.Get(context.Background(), "user-1")
	assert.Equal(t, 50+30+100, user.TotalXP)
}

func TestClaimReward_StreakRewardCanLevelUp(t *testing.T) {
	claimer, repo := newClaimFixture(t, 1, session.DayActivity{SecondsStudied: 15 * 60})
	repo.users["user-1"].CurrentXP = 90
	h := NewClaimRewardHandler(claimer, nil)

	res, err := h.Handle(context.Background(), ClaimRewardCommand{UserID: "user-1", Challenge: challenge.KindStreak})
	require.NoError(t, err)

	assert.Equal(t, 100, res.XPAwarded)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.Level)
}

func TestClaimReward_UnknownKindRejected(t *testing.T) {
	claimer, _ := newClaimFixture(t, 1, session.DayActivity{})
	h := NewClaimRewardHandler(claimer, nil)

	_, err := h.Handle(context.Background(), ClaimRewardCommand{UserID: "user-1", Challenge: challenge.Kind("weekly")})
	assert.Error(t, err)
}

func TestClaimReward_DisplayAndClaimAgreeOnActiveSessions(t *testing.T) {
	// An active session's answer map alone satisfies the cards target. The
	// claim derives eligibility from the same AggregateDay fold the display
	// uses, so a board showing "complete" must claim successfully.
	answers := make(map[string]session.AnswerOutcome, 32)
	for i := 0; i < 32; i++ {
		answers[string(rune('a'+i%26))+string(rune('0'+i/26))] = session.AnswerCorrect
	}
	live := []*session.Snapshot{{ID: "s1", Status: session.StatusActive, Answers: answers}}

	activity := session.AggregateDay(live)
	require.Equal(t, 32, activity.CorrectAnswers)

	claimer, _ := newClaimFixture(t, 1, activity) // target 30 at level 1
	h := NewClaimRewardHandler(claimer, nil)

	res, err := h.Handle(context.Background(), ClaimRewardCommand{UserID: "user-1", Challenge: challenge.KindCards})
	require.NoError(t, err)
	assert.Equal(t, 50, res.XPAwarded)
}
