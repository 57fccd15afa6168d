package app

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"peco-service/internal/domain"
)

// FlashcardRepository stores the revision deck.
type FlashcardRepository interface {
	ListFlashcards(ctx context.Context) ([]domain.Flashcard, error)
	GetFlashcard(ctx context.Context, id string) (domain.Flashcard, error)
	SaveFlashcard(ctx context.Context, card domain.Flashcard) error
}

// Rating outcome of a reviewed card.
type Rating struct {
	Card    domain.Flashcard `json:"card"`
	Correct bool             `json:"correct"`
}

// FlashcardService serves the deck and tracks which cards a user has studied.
type FlashcardService struct {
	repo    FlashcardRepository
	store   Store
	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
	log     logrus.FieldLogger
	mu      sync.Mutex
}

func NewFlashcardService(repo FlashcardRepository, store Store, log logrus.FieldLogger) *FlashcardService {
	return &FlashcardService{repo: repo, store: store, now: time.Now, shuffle: rand.Shuffle, log: log}
}

// List returns the filtered deck ordered by card number, or shuffled on request.
func (s *FlashcardService) List(ctx context.Context, f domain.FlashcardFilter) ([]domain.Flashcard, error) {
	cards, err := s.repo.ListFlashcards(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Flashcard, 0, len(cards))
	for _, c := range cards {
		if matchesAll(f.Topic, c.Topic) && matchesAll(f.Difficulty, c.Difficulty) && matchesAll(f.ReviewFrequency, c.ReviewFrequency) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CardNumber < out[j].CardNumber })
	if f.Shuffle {
		s.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out, nil
}

// MarkStudied adds the card to the user's studied set. Marking twice is a no-op.
func (s *FlashcardService) MarkStudied(ctx context.Context, userID, cardID string) ([]string, error) {
	if _, err := s.repo.GetFlashcard(ctx, cardID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	studied, err := s.Studied(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := sort.SearchStrings(studied, cardID)
	if i < len(studied) && studied[i] == cardID {
		return studied, nil
	}
	studied = append(studied, "")
	copy(studied[i+1:], studied[i:])
	studied[i] = cardID
	if err := s.store.Save(ctx, domain.UserKey(userID, domain.KeyStudiedCards), studied); err != nil {
		return nil, fmt.Errorf("save studied cards: %w", err)
	}
	return studied, nil
}

// Studied returns the sorted ids of studied cards.
func (s *FlashcardService) Studied(ctx context.Context, userID string) ([]string, error) {
	var studied []string
	if _, err := s.store.Load(ctx, domain.UserKey(userID, domain.KeyStudiedCards), &studied); err != nil {
		return nil, fmt.Errorf("load studied cards: %w", err)
	}
	if studied == nil {
		studied = []string{}
	}
	sort.Strings(studied)
	return studied, nil
}

// ResetStudied clears the studied set.
func (s *FlashcardService) ResetStudied(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, domain.UserKey(userID, domain.KeyStudiedCards))
}

// Rate records a review. Rating a card "easy" counts as a correct recall.
func (s *FlashcardService) Rate(ctx context.Context, cardID, difficulty string) (Rating, error) {
	switch difficulty {
	case "easy", "medium", "hard":
	default:
		return Rating{}, fmt.Errorf("%w: difficulty %q", domain.ErrInvalidInput, difficulty)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	card, err := s.repo.GetFlashcard(ctx, cardID)
	if err != nil {
		return Rating{}, err
	}
	now := s.now().UTC()
	card.Difficulty = difficulty
	card.LastReviewed = &now
	card.TimesReviewed++
	if err := s.repo.SaveFlashcard(ctx, card); err != nil {
		return Rating{}, err
	}
	s.log.WithFields(logrus.Fields{"card": cardID, "difficulty": difficulty}).Debug("flashcard rated")
	return Rating{Card: card, Correct: difficulty == "easy"}, nil
}
