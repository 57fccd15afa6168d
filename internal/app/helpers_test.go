package app_test

import (
	"sync"
	"time"

	"peco-service/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// choiceQuiz builds n single-choice questions worth points each; "a" is always right.
func choiceQuiz(n, points int) domain.Quiz {
	quiz := domain.Quiz{ID: "choice", Title: "Choices", TimeLimit: 60}
	for i := 0; i < n; i++ {
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:     string(rune('1'+i)) + "q",
			Type:   domain.QuestionSingleChoice,
			Prompt: "Pick a",
			Hint:   "It is the first one",
			Options: []domain.Option{
				{ID: "a", Text: "right"},
				{ID: "b", Text: "wrong"},
			},
			CorrectChoice: "a",
			Points:        points,
		})
	}
	return quiz
}

var (
	right = domain.Answer{ChoiceID: "a"}
	wrong = domain.Answer{ChoiceID: "b"}
)

func punjabMatches() map[string]string {
	return map[string]string{"plastic": "item1", "organic": "item2", "paper": "item3", "glass": "item4"}
}
