package command

import (
	"context"
	"sync"
	"time"

	"github.com/memodeck/memodeck-progression/internal/domain/achievement"
	"github.com/memodeck/memodeck-progression/internal/domain/challenge"
	"github.com/memodeck/memodeck-progression/internal/domain/progression"
	"github.com/memodeck/memodeck-progression/internal/domain/session"
	"github.com/memodeck/memodeck-progression/internal/domain/shared"
)

// In-memory test doubles. They reproduce the persistence contracts the
// handlers rely on (per-user serialization, unlock uniqueness) without a
// database.

type memProgressionRepo struct {
	mu    sync.Mutex
	users map[progression.UserID]*progression.UserProgression
}

func newMemProgressionRepo() *memProgressionRepo {
	return &memProgressionRepo{users: make(map[progression.UserID]*progression.UserProgression)}
}

func (r *memProgressionRepo) seed(userID string, mutate func(*progression.UserProgression)) {
	p, _ := progression.NewUserProgression(progression.UserID(userID))
	if mutate != nil {
		mutate(p)
	}
	r.users[p.UserID] = p
}

func (r *memProgressionRepo) Get(_ context.Context, userID progression.UserID) (*progression.UserProgression, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.users[userID]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProgressionRepo) Create(_ context.Context, p *progression.UserProgression) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[p.UserID]; ok {
		return shared.WrapError("progression", "Create", shared.ErrAlreadyExists, "user exists", nil)
	}
	cp := *p
	r.users[p.UserID] = &cp
	return nil
}

func (r *memProgressionRepo) ApplyDelta(_ context.Context, userID progression.UserID, delta int, _ string) (*progression.ApplyResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.users[userID]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	res := p.ApplyDelta(delta)
	return &res, nil
}

func (r *memProgressionRepo) History(_ context.Context, _ progression.UserID, _ int) ([]progression.XPHistoryEntry, error) {
	return nil, nil
}

type memAchievementRepo struct {
	mu      sync.Mutex
	unlocks map[string]map[string]*achievement.Unlock // userID -> achievementID

	// insertHook runs before each insert, for racing-pass simulations.
	insertHook func(userID, achievementID string)
}

func newMemAchievementRepo() *memAchievementRepo {
	return &memAchievementRepo{unlocks: make(map[string]map[string]*achievement.Unlock)}
}

func (r *memAchievementRepo) UnlockedIDs(_ context.Context, userID string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]bool)
	for id := range r.unlocks[userID] {
		out[id] = true
	}
	return out, nil
}

func (r *memAchievementRepo) ListUnlocks(_ context.Context, userID string) ([]*achievement.Unlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*achievement.Unlock, 0, len(r.unlocks[userID]))
	for _, u := range r.unlocks[userID] {
		out = append(out, u)
	}
	return out, nil
}

func (r *memAchievementRepo) InsertUnlock(_ context.Context, unlock *achievement.Unlock) error {
	if r.insertHook != nil {
		r.insertHook(unlock.UserID, unlock.AchievementID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byUser := r.unlocks[unlock.UserID]
	if byUser == nil {
		byUser = make(map[string]*achievement.Unlock)
		r.unlocks[unlock.UserID] = byUser
	}
	if _, exists := byUser[unlock.AchievementID]; exists {
		return achievement.ErrAlreadyUnlocked
	}
	byUser[unlock.AchievementID] = unlock
	return nil
}

// forceUnlock inserts an unlock record directly, bypassing the hook.
func (r *memAchievementRepo) forceUnlock(userID, achievementID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byUser := r.unlocks[userID]
	if byUser == nil {
		byUser = make(map[string]*achievement.Unlock)
		r.unlocks[userID] = byUser
	}
	byUser[achievementID] = &achievement.Unlock{
		ID: "race", UserID: userID, AchievementID: achievementID, UnlockedAt: time.Now(),
	}
}

type memActivitySource struct {
	sessions         []*session.Snapshot
	completedCount   int
	decksCreated     int
	fullyMastered    int
	sessionsForDayFn func() []*session.Snapshot
}

func (s *memActivitySource) SessionsForDay(_ context.Context, _ string, _ time.Time) ([]*session.Snapshot, error) {
	if s.sessionsForDayFn != nil {
		return s.sessionsForDayFn(), nil
	}
	return s.sessions, nil
}

func (s *memActivitySource) CompletedSessionCount(_ context.Context, _ string) (int, error) {
	return s.completedCount, nil
}

func (s *memActivitySource) DecksCreated(_ context.Context, _ string) (int, error) {
	return s.decksCreated, nil
}

func (s *memActivitySource) FullyMasteredDecks(_ context.Context, _ string) (int, error) {
	return s.fullyMastered, nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturingPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) byType(t shared.EventType) []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []shared.Event
	for _, e := range p.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

// memClaimer executes claims against in-memory state using the same domain
// functions the PostgreSQL claimer uses.
type memClaimer struct {
	mu          sync.Mutex
	progression *memProgressionRepo
	state       *challenge.DailyState
	activity    session.DayActivity
}

func (c *memClaimer) Claim(ctx context.Context, userID string, _ time.Time, kind challenge.Kind) (*challenge.ClaimResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	claimed, err := c.state.Claimed(kind)
	if err != nil {
		return nil, shared.ErrUnknownChallengeKind
	}
	if claimed {
		return nil, shared.ErrAlreadyClaimed
	}

	done, err := c.state.Completed(kind, c.activity)
	if err != nil {
		return nil, shared.ErrUnknownChallengeKind
	}
	if !done {
		return nil, shared.ErrChallengeNotCompleted
	}

	if err := c.state.MarkClaimed(kind); err != nil {
		return nil, err
	}
	applied, err := c.progression.ApplyDelta(ctx, progression.UserID(userID), kind.RewardXP(), progression.ReasonChallengeReward)
	if err != nil {
		return nil, err
	}

	return &challenge.ClaimResult{
		Kind:        kind,
		XPAwarded:   kind.RewardXP(),
		Level:       applied.Level,
		CurrentXP:   applied.CurrentXP,
		NextLevelXP: applied.NextLevelXP,
		TotalXP:     applied.TotalXP,
		LeveledUp:   applied.LeveledUp(),
	}, nil
}
