package app_test

import (
	"context"
	"errors"
	"testing"

	"peco-service/internal/domain"
)

func TestFlashcardFilters(t *testing.T) {
	ctx := context.Background()
	svc := newChallengeFixture().flashcards

	easy, err := svc.List(ctx, domain.FlashcardFilter{Difficulty: "easy", Topic: "all"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(easy) != 3 || easy[0].CardNumber != 2 || easy[2].CardNumber != 6 {
		t.Fatalf("unexpected easy cards %+v", easy)
	}

	fresh, _ := svc.List(ctx, domain.FlashcardFilter{ReviewFrequency: "new"})
	if len(fresh) != 3 {
		t.Fatalf("expected 3 new cards, got %d", len(fresh))
	}

	shuffled, _ := svc.List(ctx, domain.FlashcardFilter{Shuffle: true})
	if len(shuffled) != 6 {
		t.Fatalf("expected whole deck shuffled, got %d", len(shuffled))
	}
}

func TestStudiedCards(t *testing.T) {
	ctx := context.Background()
	svc := newChallengeFixture().flashcards

	_, _ = svc.MarkStudied(ctx, "u1", "card-3")
	_, _ = svc.MarkStudied(ctx, "u1", "card-1")
	studied, err := svc.MarkStudied(ctx, "u1", "card-3")
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if len(studied) != 2 || studied[0] != "card-1" {
		t.Fatalf("expected idempotent sorted set, got %v", studied)
	}
	if _, err := svc.MarkStudied(ctx, "u1", "card-99"); !errors.Is(err, domain.ErrFlashcardNotFound) {
		t.Fatalf("expected unknown card rejected, got %v", err)
	}

	if err := svc.ResetStudied(ctx, "u1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	studied, _ = svc.Studied(ctx, "u1")
	if len(studied) != 0 {
		t.Fatalf("expected empty set after reset, got %v", studied)
	}
}

func TestRateFlashcard(t *testing.T) {
	ctx := context.Background()
	svc := newChallengeFixture().flashcards

	r, err := svc.Rate(ctx, "card-3", "easy")
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if !r.Correct || r.Card.Difficulty != "easy" || r.Card.TimesReviewed != 1 || r.Card.LastReviewed == nil {
		t.Fatalf("unexpected rating %+v", r)
	}
	r, _ = svc.Rate(ctx, "card-3", "hard")
	if r.Correct || r.Card.TimesReviewed != 2 {
		t.Fatalf("unexpected second rating %+v", r)
	}
	if _, err := svc.Rate(ctx, "card-3", "impossible"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid difficulty, got %v", err)
	}
}
