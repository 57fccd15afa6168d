package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"peco-service/internal/domain"
	"peco-service/internal/logging"
	"peco-service/internal/metrics"
)

const (
	defaultAutoAdvance  = 2500 * time.Millisecond
	defaultTickInterval = time.Second
	defaultRetention    = 10 * time.Minute
)

// QuizService contains the quiz session use cases.
type QuizService struct {
	sessions    SessionRepository
	quizzes     QuizRepository
	stats       *StatsService
	scheduler   Scheduler
	metrics     *metrics.Metrics
	log         logrus.FieldLogger
	now         func() time.Time
	newID       func() string
	autoAdvance time.Duration
	tick        time.Duration
	retention   time.Duration
}

// QuizOption customizes a QuizService.
type QuizOption func(*QuizService)

func WithScheduler(s Scheduler) QuizOption        { return func(q *QuizService) { q.scheduler = s } }
func WithStats(s *StatsService) QuizOption        { return func(q *QuizService) { q.stats = s } }
func WithMetrics(m *metrics.Metrics) QuizOption   { return func(q *QuizService) { q.metrics = m } }
func WithLogger(l logrus.FieldLogger) QuizOption  { return func(q *QuizService) { q.log = l } }
func WithClock(now func() time.Time) QuizOption   { return func(q *QuizService) { q.now = now } }
func WithIDGenerator(f func() string) QuizOption  { return func(q *QuizService) { q.newID = f } }
func WithAutoAdvance(d time.Duration) QuizOption  { return func(q *QuizService) { q.autoAdvance = d } }
func WithTickInterval(d time.Duration) QuizOption { return func(q *QuizService) { q.tick = d } }

// WithRetention sets how long a finished session stays readable before it is evicted.
func WithRetention(d time.Duration) QuizOption { return func(q *QuizService) { q.retention = d } }

func NewQuizService(store SessionRepository, quizzes QuizRepository, opts ...QuizOption) *QuizService {
	s := &QuizService{
		sessions:    store,
		quizzes:     quizzes,
		scheduler:   RealScheduler{},
		log:         logging.Discard(),
		now:         time.Now,
		newID:       uuid.NewString,
		autoAdvance: defaultAutoAdvance,
		tick:        defaultTickInterval,
		retention:   defaultRetention,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ListQuizzes returns the available quizzes.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	return s.quizzes.ListQuizzes(ctx)
}

// Start creates a session for the user and arms its countdown.
func (s *QuizService) Start(ctx context.Context, quizID, userID string) (domain.SessionState, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.SessionState{}, err
	}
	if len(quiz.Questions) == 0 {
		return domain.SessionState{}, domain.ErrEmptyQuiz
	}

	s.EvictExpired()
	session := NewSessionWithClock(s.newID(), userID, quiz, s.now)
	s.sessions.Put(session)
	s.armCountdown(session)
	s.metrics.SessionStarted()
	s.log.WithFields(logrus.Fields{"session": session.ID(), "quiz": quizID, "user": userID}).Info("quiz session started")
	return session.Snapshot(), nil
}

func (s *QuizService) armCountdown(session *Session) {
	id, attempt := session.ID(), session.Attempt()
	session.SetCountdown(s.scheduler.Every(s.tick, func() { s.onTick(id, attempt) }))
}

func (s *QuizService) onTick(sessionID string, attempt int) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	expired, err := session.TickAttempt(attempt)
	if err != nil {
		return
	}
	if expired {
		s.complete(context.Background(), session, "expired")
	}
}

func (s *QuizService) session(sessionID, userID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if userID != "" && session.UserID() != userID {
		return nil, domain.ErrNotSessionMember
	}
	return session, nil
}

// Answer records an answer for the current question and schedules the auto-advance.
func (s *QuizService) Answer(_ context.Context, sessionID, userID string, answer domain.Answer) (domain.Feedback, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return domain.Feedback{}, err
	}
	fb, err := session.Answer(answer)
	if err != nil {
		return domain.Feedback{}, err
	}
	s.metrics.AnswerRecorded(fb.Correct)

	if fb.QuestionIndex < len(session.Quiz().Questions)-1 && s.autoAdvance > 0 {
		from := fb.QuestionIndex
		session.After(s.scheduler, s.autoAdvance, func() {
			if err := session.AdvanceFrom(from); err != nil && !errors.Is(err, domain.ErrStaleAdvance) {
				s.log.WithError(err).WithField("session", sessionID).Debug("auto-advance skipped")
			}
		})
	}
	return fb, nil
}

// Next advances from the given index; a negative index means "the current one".
func (s *QuizService) Next(_ context.Context, sessionID, userID string, from int) (domain.SessionState, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return domain.SessionState{}, err
	}
	if from < 0 {
		err = session.Next()
	} else {
		err = session.AdvanceFrom(from)
	}
	if err != nil {
		return domain.SessionState{}, err
	}
	return session.Snapshot(), nil
}

func (s *QuizService) Previous(_ context.Context, sessionID, userID string) (domain.SessionState, error) {
	return s.apply(sessionID, userID, (*Session).Previous)
}

func (s *QuizService) Skip(_ context.Context, sessionID, userID string) (domain.SessionState, error) {
	return s.apply(sessionID, userID, (*Session).Skip)
}

// Submit completes the session and returns its result.
func (s *QuizService) Submit(ctx context.Context, sessionID, userID string) (domain.Result, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return domain.Result{}, err
	}
	if err := session.Submit(); err != nil {
		return domain.Result{}, err
	}
	return s.complete(ctx, session, "submitted"), nil
}

// Restart resets the session and re-arms its countdown.
func (s *QuizService) Restart(_ context.Context, sessionID, userID string) (domain.SessionState, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return domain.SessionState{}, err
	}
	if err := session.Restart(); err != nil {
		return domain.SessionState{}, err
	}
	s.armCountdown(session)
	return session.Snapshot(), nil
}

func (s *QuizService) Hint(_ context.Context, sessionID, userID string) (string, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return "", err
	}
	return session.Hint()
}

func (s *QuizService) State(_ context.Context, sessionID, userID string) (domain.SessionState, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return domain.SessionState{}, err
	}
	return session.Snapshot(), nil
}

func (s *QuizService) Result(_ context.Context, sessionID, userID string) (domain.Result, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return domain.Result{}, err
	}
	return session.Result()
}

func (s *QuizService) Review(_ context.Context, sessionID, userID string) ([]domain.ReviewItem, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return session.Review()
}

// Subscribe returns a channel that receives state snapshots for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID, userID string) (<-chan domain.SessionState, func(), error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Dispose tears the session down and forgets it.
func (s *QuizService) Dispose(_ context.Context, sessionID, userID string) error {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return err
	}
	session.Dispose()
	s.sessions.Delete(sessionID)
	s.log.WithField("session", sessionID).Debug("quiz session disposed")
	return nil
}

// EvictExpired disposes and forgets sessions that finished more than the retention period ago.
// It returns how many were evicted.
func (s *QuizService) EvictExpired() int {
	if s.retention <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.retention)
	var expired []*Session
	s.sessions.Range(func(session *Session) bool {
		if session.CompletedBefore(cutoff) {
			expired = append(expired, session)
		}
		return true
	})
	for _, session := range expired {
		session.Dispose()
		s.sessions.Delete(session.ID())
	}
	if len(expired) > 0 {
		s.log.WithField("count", len(expired)).Debug("evicted finished quiz sessions")
	}
	return len(expired)
}

// StartJanitor evicts finished sessions every interval until the returned func is called.
func (s *QuizService) StartJanitor(interval time.Duration) CancelFunc {
	return s.scheduler.Every(interval, func() { s.EvictExpired() })
}

func (s *QuizService) apply(sessionID, userID string, op func(*Session) error) (domain.SessionState, error) {
	session, err := s.session(sessionID, userID)
	if err != nil {
		return domain.SessionState{}, err
	}
	if err := op(session); err != nil {
		return domain.SessionState{}, err
	}
	return session.Snapshot(), nil
}

// complete runs once per terminal transition: it credits the learner and counts the outcome.
func (s *QuizService) complete(ctx context.Context, session *Session, reason string) domain.Result {
	result, err := session.Result()
	if err != nil {
		return domain.Result{}
	}
	s.metrics.SessionCompleted(reason)
	fields := logrus.Fields{
		"session": session.ID(),
		"quiz":    result.QuizID,
		"user":    session.UserID(),
		"score":   result.Score,
		"reason":  reason,
	}
	if s.stats != nil {
		if _, err := s.stats.RecordQuiz(ctx, session.UserID(), result); err != nil {
			s.log.WithFields(fields).WithError(err).Error("record quiz result failed")
		}
	}
	s.log.WithFields(fields).Info("quiz session complete")
	return result
}
