package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"peco-service/internal/domain"
)

// ChallengeCatalog lists the daily challenges.
type ChallengeCatalog interface {
	ListChallenges(ctx context.Context) ([]domain.Challenge, error)
	GetChallenge(ctx context.Context, id string) (domain.Challenge, error)
}

// Challenge tabs.
const (
	TabToday    = "today"
	TabUpcoming = "upcoming"
	TabHistory  = "history"
)

// ChallengeView pairs a challenge with the caller's progress on it.
type ChallengeView struct {
	domain.Challenge
	Progress  *domain.ChallengeProgress `json:"progress,omitempty"`
	CanSubmit bool                      `json:"canSubmit"`
}

// ChallengeService tracks per-user challenge progress. Progress for all challenges lives in a
// single userProgress document keyed by challenge id.
type ChallengeService struct {
	catalog  ChallengeCatalog
	store    Store
	stats    *StatsService
	validate *Validator
	now      func() time.Time
	log      logrus.FieldLogger

	mu sync.Mutex // serializes read-modify-write of progress documents
}

func NewChallengeService(catalog ChallengeCatalog, store Store, stats *StatsService, log logrus.FieldLogger) *ChallengeService {
	return &ChallengeService{
		catalog:  catalog,
		store:    store,
		stats:    stats,
		validate: NewValidator(),
		now:      time.Now,
		log:      log,
	}
}

// List returns the challenges of one tab. An unknown tab lists everything.
func (s *ChallengeService) List(ctx context.Context, userID, tab string) ([]ChallengeView, error) {
	all, err := s.catalog.ListChallenges(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := s.loadProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]ChallengeView, 0, len(all))
	for _, c := range all {
		p, ok := progress[c.ID]
		done := c.Status == "completed" || (ok && p.Completed)
		switch strings.ToLower(tab) {
		case TabToday:
			if c.Status != "available" || done {
				continue
			}
		case TabUpcoming:
			if c.Status != "upcoming" {
				continue
			}
		case TabHistory:
			if !done {
				continue
			}
		}
		views = append(views, view(c, p, ok))
	}
	return views, nil
}

// Get returns one challenge with the caller's progress.
func (s *ChallengeService) Get(ctx context.Context, userID, challengeID string) (ChallengeView, error) {
	c, err := s.catalog.GetChallenge(ctx, challengeID)
	if err != nil {
		return ChallengeView{}, err
	}
	progress, err := s.loadProgress(ctx, userID)
	if err != nil {
		return ChallengeView{}, err
	}
	p, ok := progress[challengeID]
	return view(c, p, ok), nil
}

// Start opens a challenge. Starting twice keeps the existing progress.
func (s *ChallengeService) Start(ctx context.Context, userID, challengeID string) (domain.ChallengeProgress, error) {
	return s.mutate(ctx, userID, challengeID, true, func(_ domain.Challenge, p *domain.ChallengeProgress) error {
		if p.Started {
			return nil
		}
		p.Started = true
		p.StartedAt = s.now().UTC()
		p.Photos = []domain.Photo{}
		return nil
	})
}

// CompleteStep marks step done. Only steps up to the first incomplete one are reachable.
func (s *ChallengeService) CompleteStep(ctx context.Context, userID, challengeID string, step int) (domain.ChallengeProgress, error) {
	return s.mutate(ctx, userID, challengeID, false, func(c domain.Challenge, p *domain.ChallengeProgress) error {
		if step < 0 || step >= len(c.Steps) {
			return fmt.Errorf("%w: step %d", domain.ErrInvalidInput, step)
		}
		if step > p.CompletedSteps {
			return domain.ErrStepLocked
		}
		if step+1 > p.CompletedSteps {
			p.CompletedSteps = step + 1
		}
		p.CurrentStep = step + 1
		if p.CurrentStep >= len(c.Steps) {
			p.CurrentStep = len(c.Steps) - 1
		}
		return nil
	})
}

// AddPhoto attaches evidence, bounded by the challenge's photo allowance.
func (s *ChallengeService) AddPhoto(ctx context.Context, userID, challengeID string, photo domain.Photo) (domain.ChallengeProgress, error) {
	if err := s.validate.Struct(photo); err != nil {
		return domain.ChallengeProgress{}, err
	}
	return s.mutate(ctx, userID, challengeID, false, func(c domain.Challenge, p *domain.ChallengeProgress) error {
		if len(p.Photos) >= c.PhotoLimit() {
			return domain.ErrPhotoLimit
		}
		photo.ID = uuid.NewString()
		photo.Timestamp = s.now().UTC()
		p.Photos = append(p.Photos, photo)
		return nil
	})
}

// RemovePhoto drops a photo by id. Unknown ids are ignored.
func (s *ChallengeService) RemovePhoto(ctx context.Context, userID, challengeID, photoID string) (domain.ChallengeProgress, error) {
	return s.mutate(ctx, userID, challengeID, false, func(_ domain.Challenge, p *domain.ChallengeProgress) error {
		kept := p.Photos[:0]
		for _, ph := range p.Photos {
			if ph.ID != photoID {
				kept = append(kept, ph)
			}
		}
		p.Photos = kept
		return nil
	})
}

// SetReflection stores the free-text reflection.
func (s *ChallengeService) SetReflection(ctx context.Context, userID, challengeID, text string) (domain.ChallengeProgress, error) {
	return s.mutate(ctx, userID, challengeID, false, func(_ domain.Challenge, p *domain.ChallengeProgress) error {
		p.Reflection = text
		return nil
	})
}

// Submit completes the challenge and credits the user's stats. If crediting fails the
// completion is rolled back, so the submission can be retried.
func (s *ChallengeService) Submit(ctx context.Context, userID, challengeID string) (domain.ChallengeProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var earned int
	var reward string
	var before domain.ChallengeProgress
	progress, err := s.mutateLocked(ctx, userID, challengeID, false, func(c domain.Challenge, p *domain.ChallengeProgress) error {
		if p.CompletedSteps < c.RequiredSteps() {
			return domain.ErrChallengeIncomplete
		}
		before = *p
		p.Completed = true
		p.CompletedAt = s.now().UTC()
		p.PointsEarned = c.Points
		earned, reward = c.Points, c.BonusReward
		return nil
	})
	if err != nil {
		return domain.ChallengeProgress{}, err
	}
	if s.stats != nil {
		if _, err := s.stats.RecordChallenge(ctx, userID, earned, reward); err != nil {
			if rerr := s.restoreLocked(ctx, userID, challengeID, before); rerr != nil {
				s.log.WithError(rerr).WithField("challenge", challengeID).Error("roll back challenge completion failed")
			}
			return domain.ChallengeProgress{}, err
		}
	}
	s.log.WithFields(logrus.Fields{"user": userID, "challenge": challengeID, "points": earned}).Info("challenge submitted")
	return progress, nil
}

// Counts reports how many challenges the user has started and completed.
func (s *ChallengeService) Counts(ctx context.Context, userID string) (started, completed int, err error) {
	progress, err := s.loadProgress(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	for _, p := range progress {
		if p.Started {
			started++
		}
		if p.Completed {
			completed++
		}
	}
	return started, completed, nil
}

// mutate loads the progress document, applies fn to one challenge's entry and saves it back.
// Unless starting, the challenge must have been started and not yet completed.
func (s *ChallengeService) mutate(ctx context.Context, userID, challengeID string, starting bool, fn func(domain.Challenge, *domain.ChallengeProgress) error) (domain.ChallengeProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutateLocked(ctx, userID, challengeID, starting, fn)
}

func (s *ChallengeService) mutateLocked(ctx context.Context, userID, challengeID string, starting bool, fn func(domain.Challenge, *domain.ChallengeProgress) error) (domain.ChallengeProgress, error) {
	c, err := s.catalog.GetChallenge(ctx, challengeID)
	if err != nil {
		return domain.ChallengeProgress{}, err
	}
	progress, err := s.loadProgress(ctx, userID)
	if err != nil {
		return domain.ChallengeProgress{}, err
	}
	p := progress[challengeID]
	if p.Completed {
		return domain.ChallengeProgress{}, domain.ErrChallengeCompleted
	}
	if !starting && !p.Started {
		return domain.ChallengeProgress{}, domain.ErrChallengeNotStarted
	}
	if err := fn(c, &p); err != nil {
		return domain.ChallengeProgress{}, err
	}
	progress[challengeID] = p
	if err := s.store.Save(ctx, domain.UserKey(userID, domain.KeyUserProgress), progress); err != nil {
		return domain.ChallengeProgress{}, fmt.Errorf("save challenge progress: %w", err)
	}
	return p, nil
}

// restoreLocked puts back one challenge's entry as it was before a failed submission.
func (s *ChallengeService) restoreLocked(ctx context.Context, userID, challengeID string, p domain.ChallengeProgress) error {
	progress, err := s.loadProgress(ctx, userID)
	if err != nil {
		return err
	}
	progress[challengeID] = p
	if err := s.store.Save(ctx, domain.UserKey(userID, domain.KeyUserProgress), progress); err != nil {
		return fmt.Errorf("restore challenge progress: %w", err)
	}
	return nil
}

func (s *ChallengeService) loadProgress(ctx context.Context, userID string) (map[string]domain.ChallengeProgress, error) {
	progress := make(map[string]domain.ChallengeProgress)
	if _, err := s.store.Load(ctx, domain.UserKey(userID, domain.KeyUserProgress), &progress); err != nil {
		return nil, fmt.Errorf("load challenge progress: %w", err)
	}
	if progress == nil {
		progress = make(map[string]domain.ChallengeProgress)
	}
	return progress, nil
}

func view(c domain.Challenge, p domain.ChallengeProgress, ok bool) ChallengeView {
	v := ChallengeView{Challenge: c}
	if ok {
		progress := p
		v.Progress = &progress
		v.CanSubmit = p.Started && !p.Completed && p.CompletedSteps >= c.RequiredSteps()
	}
	return v
}
