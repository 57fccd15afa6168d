package app

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"peco-service/internal/domain"
)

// LessonRepository persists admin-managed lessons.
type LessonRepository interface {
	ListLessons(ctx context.Context) ([]domain.Lesson, error)
	GetLesson(ctx context.Context, id string) (domain.Lesson, error)
	SaveLesson(ctx context.Context, lesson domain.Lesson) error
	DeleteLessons(ctx context.Context, ids ...string) error
}

// Bulk actions.
const (
	BulkPublish   = "publish"
	BulkUnpublish = "unpublish"
	BulkArchive   = "archive"
	BulkDelete    = "delete"
	BulkDuplicate = "duplicate"
)

// LessonList is a filtered, sorted page of lessons. Empty is set when nothing matched so
// clients can render a "nothing found" view.
type LessonList struct {
	Items []domain.Lesson   `json:"items"`
	Total int               `json:"total"`
	Empty bool              `json:"empty"`
	Sort  domain.SortConfig `json:"sort"`
}

// LessonService implements the admin content console.
type LessonService struct {
	repo     LessonRepository
	validate *Validator
	now      func() time.Time
	newID    func() string
	log      logrus.FieldLogger
}

func NewLessonService(repo LessonRepository, log logrus.FieldLogger) *LessonService {
	return &LessonService{
		repo:     repo,
		validate: NewValidator(),
		now:      time.Now,
		newID:    uuid.NewString,
		log:      log,
	}
}

// List applies filter and sort to the whole library.
func (s *LessonService) List(ctx context.Context, filter domain.LessonFilter, sortCfg domain.SortConfig) (LessonList, error) {
	lessons, err := s.repo.ListLessons(ctx)
	if err != nil {
		return LessonList{}, err
	}
	sortCfg = normalizeSort(sortCfg)
	items := FilterLessons(lessons, filter)
	SortLessons(items, sortCfg)
	return LessonList{Items: items, Total: len(items), Empty: len(items) == 0, Sort: sortCfg}, nil
}

// Get returns one lesson.
func (s *LessonService) Get(ctx context.Context, id string) (domain.Lesson, error) {
	return s.repo.GetLesson(ctx, id)
}

// Create stores a new lesson as a draft unless a status is given.
func (s *LessonService) Create(ctx context.Context, lesson domain.Lesson) (domain.Lesson, error) {
	if err := s.validate.Struct(lesson); err != nil {
		return domain.Lesson{}, err
	}
	lesson.ID = s.newID()
	if lesson.Status == "" {
		lesson.Status = domain.LessonDraft
	}
	lesson.LastModified = s.now().UTC()
	normalizeLists(&lesson)
	if err := s.repo.SaveLesson(ctx, lesson); err != nil {
		return domain.Lesson{}, err
	}
	s.log.WithFields(logrus.Fields{"lesson": lesson.ID, "title": lesson.Title}).Info("lesson created")
	return lesson, nil
}

// Update replaces an existing lesson.
func (s *LessonService) Update(ctx context.Context, id string, lesson domain.Lesson) (domain.Lesson, error) {
	existing, err := s.repo.GetLesson(ctx, id)
	if err != nil {
		return domain.Lesson{}, err
	}
	if err := s.validate.Struct(lesson); err != nil {
		return domain.Lesson{}, err
	}
	lesson.ID = existing.ID
	if lesson.Status == "" {
		lesson.Status = existing.Status
	}
	lesson.LastModified = s.now().UTC()
	normalizeLists(&lesson)
	if err := s.repo.SaveLesson(ctx, lesson); err != nil {
		return domain.Lesson{}, err
	}
	s.log.WithField("lesson", id).Info("lesson updated")
	return lesson, nil
}

// Delete removes a lesson once the caller has confirmed.
func (s *LessonService) Delete(ctx context.Context, id string, confirmed bool) error {
	if _, err := s.repo.GetLesson(ctx, id); err != nil {
		return err
	}
	if !confirmed {
		return domain.ErrConfirmationRequired
	}
	if err := s.repo.DeleteLessons(ctx, id); err != nil {
		return err
	}
	s.log.WithField("lesson", id).Info("lesson deleted")
	return nil
}

// Bulk applies action to every listed lesson and returns how many were affected. Unknown ids
// are ignored.
func (s *LessonService) Bulk(ctx context.Context, action string, ids []string, confirmed bool) (int, error) {
	switch action {
	case BulkPublish, BulkUnpublish, BulkArchive, BulkDelete, BulkDuplicate:
	default:
		return 0, domain.ErrUnknownAction
	}
	if action == BulkDelete && !confirmed {
		return 0, domain.ErrConfirmationRequired
	}

	lessons, err := s.repo.ListLessons(ctx)
	if err != nil {
		return 0, err
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	now := s.now().UTC()
	affected := 0
	var doomed []string
	for _, l := range lessons {
		if !wanted[l.ID] {
			continue
		}
		affected++
		switch action {
		case BulkDelete:
			doomed = append(doomed, l.ID)
			continue
		case BulkDuplicate:
			l.ID = s.newID()
			l.Title += " (Copy)"
			l.Status = domain.LessonDraft
		case BulkPublish:
			l.Status = domain.LessonPublished
		case BulkUnpublish:
			l.Status = domain.LessonDraft
		case BulkArchive:
			l.Status = domain.LessonArchived
		}
		l.LastModified = now
		if err := s.repo.SaveLesson(ctx, l); err != nil {
			return 0, err
		}
	}
	if len(doomed) > 0 {
		if err := s.repo.DeleteLessons(ctx, doomed...); err != nil {
			return 0, err
		}
	}
	s.log.WithFields(logrus.Fields{"action": action, "affected": affected}).Info("bulk lesson action")
	return affected, nil
}

// Stats counts lessons per status and category.
func (s *LessonService) Stats(ctx context.Context) (domain.LessonStats, error) {
	lessons, err := s.repo.ListLessons(ctx)
	if err != nil {
		return domain.LessonStats{}, err
	}
	stats := domain.LessonStats{Total: len(lessons), Categories: make(map[string]int)}
	for _, l := range lessons {
		switch l.Status {
		case domain.LessonPublished:
			stats.Published++
		case domain.LessonDraft:
			stats.Draft++
		case domain.LessonArchived:
			stats.Archived++
		}
		stats.Categories[l.Category]++
	}
	return stats, nil
}

// FilterLessons keeps lessons matching every set criterion.
func FilterLessons(lessons []domain.Lesson, f domain.LessonFilter) []domain.Lesson {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.Lesson, 0, len(lessons))
	for _, l := range lessons {
		if search != "" &&
			!strings.Contains(strings.ToLower(l.Title), search) &&
			!strings.Contains(strings.ToLower(l.Description), search) {
			continue
		}
		if !matchesAll(f.Category, l.Category) || !matchesAll(f.Status, l.Status) || !matchesAll(f.Difficulty, l.Difficulty) {
			continue
		}
		if !f.DateFrom.IsZero() && l.LastModified.Before(f.DateFrom) {
			continue
		}
		if !f.DateTo.IsZero() && l.LastModified.After(f.DateTo) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// SortLessons orders lessons in place. Ties keep their original order.
func SortLessons(lessons []domain.Lesson, cfg domain.SortConfig) {
	cfg = normalizeSort(cfg)
	asc := cfg.Direction == "asc"
	sort.SliceStable(lessons, func(i, j int) bool {
		c := compareLessons(lessons[i], lessons[j], cfg.Key)
		if asc {
			return c < 0
		}
		return c > 0
	})
}

// ToggleSort flips the direction when the same key is picked again while ascending, otherwise
// sorts ascending by the new key.
func ToggleSort(current domain.SortConfig, key string) domain.SortConfig {
	if current.Key == key && current.Direction == "asc" {
		return domain.SortConfig{Key: key, Direction: "desc"}
	}
	return domain.SortConfig{Key: key, Direction: "asc"}
}

func compareLessons(a, b domain.Lesson, key string) int {
	switch key {
	case "title":
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case "category":
		return strings.Compare(a.Category, b.Category)
	case "difficulty":
		return strings.Compare(a.Difficulty, b.Difficulty)
	case "status":
		return strings.Compare(a.Status, b.Status)
	case "estimatedTime":
		return a.EstimatedTime - b.EstimatedTime
	default:
		return a.LastModified.Compare(b.LastModified)
	}
}

func normalizeSort(cfg domain.SortConfig) domain.SortConfig {
	switch cfg.Key {
	case "title", "category", "difficulty", "status", "estimatedTime", "lastModified":
	default:
		cfg.Key = "lastModified"
	}
	if cfg.Direction != "asc" {
		cfg.Direction = "desc"
	}
	return cfg
}

func matchesAll(want, got string) bool {
	return want == "" || want == "all" || want == got
}

func normalizeLists(l *domain.Lesson) {
	if l.Tags == nil {
		l.Tags = []string{}
	}
	if l.Prerequisites == nil {
		l.Prerequisites = []string{}
	}
}
