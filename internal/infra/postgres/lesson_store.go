package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"peco-service/internal/domain"
)

// LessonStore persists lessons in the lessons table through bun.
type LessonStore struct {
	db *bun.DB
}

func NewLessonStore(db *bun.DB) *LessonStore {
	return &LessonStore{db: db}
}

func (s *LessonStore) ListLessons(ctx context.Context) ([]domain.Lesson, error) {
	lessons := []domain.Lesson{}
	if err := s.db.NewSelect().Model(&lessons).OrderExpr("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

func (s *LessonStore) GetLesson(ctx context.Context, id string) (domain.Lesson, error) {
	var lesson domain.Lesson
	err := s.db.NewSelect().Model(&lesson).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lesson{}, domain.ErrLessonNotFound
	}
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("get lesson: %w", err)
	}
	return lesson, nil
}

// SaveLesson upserts by id.
func (s *LessonStore) SaveLesson(ctx context.Context, lesson domain.Lesson) error {
	_, err := s.db.NewInsert().
		Model(&lesson).
		On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("description = EXCLUDED.description").
		Set("category = EXCLUDED.category").
		Set("difficulty = EXCLUDED.difficulty").
		Set("status = EXCLUDED.status").
		Set("last_modified = EXCLUDED.last_modified").
		Set("content = EXCLUDED.content").
		Set("estimated_time = EXCLUDED.estimated_time").
		Set("tags = EXCLUDED.tags").
		Set("prerequisites = EXCLUDED.prerequisites").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save lesson: %w", err)
	}
	return nil
}

func (s *LessonStore) DeleteLessons(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.NewDelete().
		Model((*domain.Lesson)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete lessons: %w", err)
	}
	return nil
}

// SeedLessons stores the given lessons when the table is empty.
func (s *LessonStore) SeedLessons(ctx context.Context, lessons []domain.Lesson) error {
	n, err := s.db.NewSelect().Model((*domain.Lesson)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count lessons: %w", err)
	}
	if n > 0 || len(lessons) == 0 {
		return nil
	}
	if _, err := s.db.NewInsert().Model(&lessons).Exec(ctx); err != nil {
		return fmt.Errorf("seed lessons: %w", err)
	}
	return nil
}
