package app_test

import (
	"context"
	"testing"
	"time"

	"peco-service/internal/app"
	"peco-service/internal/domain"
	"peco-service/internal/infra/memory"
	"peco-service/internal/logging"
)

func TestLeaderboardOrdering(t *testing.T) {
	clock := newFakeClock()
	board := app.NewLeaderboardWithClock(clock.Now)

	board.Set("u1", "Arjun", 100)
	clock.Advance(time.Second)
	board.Set("u2", "Bani", 100)
	clock.Advance(time.Second)
	board.Set("u3", "Charan", 250)

	snap := board.Snapshot()
	order := []string{snap.Entries[0].UserID, snap.Entries[1].UserID, snap.Entries[2].UserID}
	if order[0] != "u3" || order[1] != "u1" || order[2] != "u2" {
		t.Fatalf("unexpected order %v", order)
	}
	if board.Rank("u2") != 3 || board.Rank("nobody") != 0 {
		t.Fatalf("unexpected ranks")
	}
}

func TestRecordQuizDedupesBadges(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	board := app.NewLeaderboard()
	stats := app.NewStatsService(kv, board, logging.Discard())
	_ = kv.Save(ctx, domain.UserKey("u1", domain.KeyAuth), domain.AuthRecord{User: domain.User{ID: "u1", Name: "Simran"}})

	result := domain.Result{PointsEarned: 300, Badges: []domain.Badge{{Name: "Perfect Score"}}}
	_, _ = stats.RecordQuiz(ctx, "u1", result)
	got, err := stats.RecordQuiz(ctx, "u1", result)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if got.Points != 600 || len(got.Achievements) != 1 {
		t.Fatalf("unexpected stats %+v", got)
	}
	if entry := board.Snapshot().Entries[0]; entry.DisplayName != "Simran" || entry.Score != 600 {
		t.Fatalf("unexpected leaderboard entry %+v", entry)
	}
}
