package memory

import (
	"context"
	"sort"
	"sync"

	"peco-service/internal/domain"
)

// LessonStore keeps lessons in memory.
type LessonStore struct {
	mu      sync.RWMutex
	lessons map[string]domain.Lesson
}

func NewLessonStore(seed []domain.Lesson) *LessonStore {
	s := &LessonStore{lessons: make(map[string]domain.Lesson, len(seed))}
	for _, l := range seed {
		s.lessons[l.ID] = l
	}
	return s
}

func (s *LessonStore) ListLessons(_ context.Context) ([]domain.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Lesson, 0, len(s.lessons))
	for _, l := range s.lessons {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *LessonStore) GetLesson(_ context.Context, id string) (domain.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lessons[id]
	if !ok {
		return domain.Lesson{}, domain.ErrLessonNotFound
	}
	return l, nil
}

func (s *LessonStore) SaveLesson(_ context.Context, lesson domain.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lessons[lesson.ID] = lesson
	return nil
}

func (s *LessonStore) DeleteLessons(_ context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.lessons, id)
	}
	return nil
}

// FlashcardStore keeps the revision deck in memory.
type FlashcardStore struct {
	mu    sync.RWMutex
	cards map[string]domain.Flashcard
}

func NewFlashcardStore(seed []domain.Flashcard) *FlashcardStore {
	s := &FlashcardStore{cards: make(map[string]domain.Flashcard, len(seed))}
	for _, c := range seed {
		s.cards[c.ID] = c
	}
	return s
}

func (s *FlashcardStore) ListFlashcards(_ context.Context) ([]domain.Flashcard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Flashcard, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, c)
	}
	return out, nil
}

func (s *FlashcardStore) GetFlashcard(_ context.Context, id string) (domain.Flashcard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[id]
	if !ok {
		return domain.Flashcard{}, domain.ErrFlashcardNotFound
	}
	return c, nil
}

func (s *FlashcardStore) SaveFlashcard(_ context.Context, card domain.Flashcard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[card.ID] = card
	return nil
}

// ChallengeCatalog is a fixed list of challenges.
type ChallengeCatalog struct {
	challenges []domain.Challenge
}

func NewChallengeCatalog(challenges []domain.Challenge) *ChallengeCatalog {
	return &ChallengeCatalog{challenges: challenges}
}

func (c *ChallengeCatalog) ListChallenges(_ context.Context) ([]domain.Challenge, error) {
	out := make([]domain.Challenge, len(c.challenges))
	copy(out, c.challenges)
	return out, nil
}

func (c *ChallengeCatalog) GetChallenge(_ context.Context, id string) (domain.Challenge, error) {
	for _, ch := range c.challenges {
		if ch.ID == id {
			return ch, nil
		}
	}
	return domain.Challenge{}, domain.ErrChallengeNotFound
}
