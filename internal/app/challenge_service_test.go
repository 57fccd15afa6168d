package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"peco-service/internal/app"
	"peco-service/internal/content"
	"peco-service/internal/domain"
	"peco-service/internal/infra/memory"
	"peco-service/internal/logging"
)

type challengeFixture struct {
	challenges *app.ChallengeService
	stats      *app.StatsService
	flashcards *app.FlashcardService
	dashboard  *app.DashboardService
}

func newChallengeFixture() challengeFixture {
	kv := memory.NewKVStore()
	board := app.NewLeaderboard()
	stats := app.NewStatsService(kv, board, logging.Discard())
	challenges := app.NewChallengeService(memory.NewChallengeCatalog(content.Challenges()), kv, stats, logging.Discard())
	flashcards := app.NewFlashcardService(memory.NewFlashcardStore(content.Flashcards()), kv, logging.Discard())
	return challengeFixture{
		challenges: challenges,
		stats:      stats,
		flashcards: flashcards,
		dashboard:  app.NewDashboardService(stats, flashcards, challenges, board),
	}
}

func TestChallengeStepsAndSubmit(t *testing.T) {
	ctx := context.Background()
	f := newChallengeFixture()
	svc := f.challenges

	if _, err := svc.CompleteStep(ctx, "u1", "today-1", 0); !errors.Is(err, domain.ErrChallengeNotStarted) {
		t.Fatalf("expected not started, got %v", err)
	}
	if _, err := svc.Start(ctx, "u1", "today-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.CompleteStep(ctx, "u1", "today-1", 1); !errors.Is(err, domain.ErrStepLocked) {
		t.Fatalf("expected locked step, got %v", err)
	}
	if _, err := svc.CompleteStep(ctx, "u1", "today-1", 0); err != nil {
		t.Fatalf("step 0: %v", err)
	}
	if _, err := svc.Submit(ctx, "u1", "today-1"); !errors.Is(err, domain.ErrChallengeIncomplete) {
		t.Fatalf("expected incomplete, got %v", err)
	}

	view, _ := svc.Get(ctx, "u1", "today-1")
	if view.CanSubmit || view.Progress.CompletedSteps != 1 || view.Progress.CurrentStep != 1 {
		t.Fatalf("unexpected progress %+v", view.Progress)
	}

	_, _ = svc.CompleteStep(ctx, "u1", "today-1", 1)
	p, _ := svc.CompleteStep(ctx, "u1", "today-1", 2)
	if p.CompletedSteps != 3 {
		t.Fatalf("expected 3 steps done, got %d", p.CompletedSteps)
	}
	// Revisiting an earlier step never lowers progress.
	p, _ = svc.CompleteStep(ctx, "u1", "today-1", 0)
	if p.CompletedSteps != 3 {
		t.Fatalf("expected progress kept, got %d", p.CompletedSteps)
	}

	p, err := svc.Submit(ctx, "u1", "today-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !p.Completed || p.PointsEarned != 150 {
		t.Fatalf("unexpected progress %+v", p)
	}
	if _, err := svc.Submit(ctx, "u1", "today-1"); !errors.Is(err, domain.ErrChallengeCompleted) {
		t.Fatalf("expected second submit rejected, got %v", err)
	}

	stats, _ := f.stats.Get(ctx, "u1")
	if stats.Points != 150 || stats.CompletedChallenges != 1 || stats.Streak != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if len(stats.Achievements) != 1 || stats.Achievements[0] != "Air Quality Hero Badge" {
		t.Fatalf("expected bonus reward, got %+v", stats.Achievements)
	}
}

// flakyStore fails saves of keys ending in failSuffix.
type flakyStore struct {
	app.Store
	mu         sync.Mutex
	failSuffix string
}

func (s *flakyStore) failOn(suffix string) {
	s.mu.Lock()
	s.failSuffix = suffix
	s.mu.Unlock()
}

func (s *flakyStore) Save(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	suffix := s.failSuffix
	s.mu.Unlock()
	if suffix != "" && strings.HasSuffix(key, suffix) {
		return errors.New("store unavailable")
	}
	return s.Store.Save(ctx, key, value)
}

func TestChallengeSubmitRollsBackWhenStatsFail(t *testing.T) {
	ctx := context.Background()
	kv := &flakyStore{Store: memory.NewKVStore()}
	stats := app.NewStatsService(kv, app.NewLeaderboard(), logging.Discard())
	svc := app.NewChallengeService(memory.NewChallengeCatalog(content.Challenges()), kv, stats, logging.Discard())

	if _, err := svc.Start(ctx, "u1", "today-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	for step := 0; step < 3; step++ {
		if _, err := svc.CompleteStep(ctx, "u1", "today-1", step); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
	}

	kv.failOn(domain.KeyUserStats)
	if _, err := svc.Submit(ctx, "u1", "today-1"); err == nil {
		t.Fatalf("expected submit to fail while stats cannot be saved")
	}
	view, err := svc.Get(ctx, "u1", "today-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Progress.Completed || !view.CanSubmit {
		t.Fatalf("expected completion rolled back, got %+v", view.Progress)
	}

	kv.failOn("")
	p, err := svc.Submit(ctx, "u1", "today-1")
	if err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if !p.Completed {
		t.Fatalf("expected completed after retry, got %+v", p)
	}
	got, _ := stats.Get(ctx, "u1")
	if got.Points != 150 || got.CompletedChallenges != 1 {
		t.Fatalf("expected a single credit, got %+v", got)
	}
}

func TestChallengePhotosAndReflection(t *testing.T) {
	ctx := context.Background()
	svc := newChallengeFixture().challenges
	_, _ = svc.Start(ctx, "u1", "today-1")

	if _, err := svc.AddPhoto(ctx, "u1", "today-1", domain.Photo{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid photo, got %v", err)
	}
	var p domain.ChallengeProgress
	for i := 0; i < 3; i++ {
		var err error
		p, err = svc.AddPhoto(ctx, "u1", "today-1", domain.Photo{Name: "compost.jpg", URL: "blob:compost"})
		if err != nil {
			t.Fatalf("photo %d: %v", i, err)
		}
	}
	if _, err := svc.AddPhoto(ctx, "u1", "today-1", domain.Photo{Name: "x.jpg", URL: "blob:x"}); !errors.Is(err, domain.ErrPhotoLimit) {
		t.Fatalf("expected photo limit, got %v", err)
	}

	p, _ = svc.RemovePhoto(ctx, "u1", "today-1", p.Photos[0].ID)
	if len(p.Photos) != 2 {
		t.Fatalf("expected 2 photos after removal, got %d", len(p.Photos))
	}

	p, _ = svc.SetReflection(ctx, "u1", "today-1", "We compost now.")
	if p.Reflection != "We compost now." {
		t.Fatalf("unexpected reflection %q", p.Reflection)
	}
}

func TestChallengeTabs(t *testing.T) {
	ctx := context.Background()
	svc := newChallengeFixture().challenges

	today, _ := svc.List(ctx, "u1", app.TabToday)
	upcoming, _ := svc.List(ctx, "u1", app.TabUpcoming)
	history, _ := svc.List(ctx, "u1", app.TabHistory)
	if len(today) != 3 || len(upcoming) != 1 || len(history) != 1 {
		t.Fatalf("unexpected tab sizes %d/%d/%d", len(today), len(upcoming), len(history))
	}

	_, _ = svc.Start(ctx, "u1", "today-3")
	_, _ = svc.CompleteStep(ctx, "u1", "today-3", 0)
	_, _ = svc.CompleteStep(ctx, "u1", "today-3", 1)
	if _, err := svc.Submit(ctx, "u1", "today-3"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	today, _ = svc.List(ctx, "u1", app.TabToday)
	history, _ = svc.List(ctx, "u1", app.TabHistory)
	if len(today) != 2 || len(history) != 2 {
		t.Fatalf("expected completed challenge to move to history, got %d/%d", len(today), len(history))
	}
	started, completed, _ := svc.Counts(ctx, "u1")
	if started != 1 || completed != 1 {
		t.Fatalf("unexpected counts %d/%d", started, completed)
	}
}

func TestDashboardSummary(t *testing.T) {
	ctx := context.Background()
	f := newChallengeFixture()

	_, _ = f.challenges.Start(ctx, "u1", "today-3")
	_, _ = f.challenges.CompleteStep(ctx, "u1", "today-3", 0)
	_, _ = f.challenges.CompleteStep(ctx, "u1", "today-3", 1)
	_, _ = f.challenges.Submit(ctx, "u1", "today-3")
	_, _ = f.stats.RecordQuiz(ctx, "u2", domain.Result{PointsEarned: 40})
	_, _ = f.flashcards.MarkStudied(ctx, "u1", "card-1")

	dash, err := f.dashboard.Summary(ctx, domain.User{ID: "u1", Name: "Simran"})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if dash.Stats.Points != 100 || dash.StudiedCards != 1 || dash.ChallengesCompleted != 1 || dash.Rank != 1 {
		t.Fatalf("unexpected dashboard %+v", dash)
	}
	if board := f.dashboard.Leaderboard(); len(board.Entries) != 2 || board.Entries[1].UserID != "u2" {
		t.Fatalf("unexpected leaderboard %+v", board.Entries)
	}
}
