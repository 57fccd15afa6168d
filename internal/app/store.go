package app

import (
	"context"

	"peco-service/internal/domain"
)

// Store is the persistence collaborator for per-user state (auth, progress, stats, studied
// cards). Values are JSON documents.
type Store interface {
	// Load decodes the value at key into dst. found is false when the key is absent.
	Load(ctx context.Context, key string, dst any) (found bool, err error)
	Save(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// SessionRepository abstracts how live quiz sessions are held (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
	// Range calls fn for each held session until fn returns false.
	Range(fn func(*Session) bool)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error)
}
