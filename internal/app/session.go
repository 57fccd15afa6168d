package app

import (
	"sync"
	"time"

	"peco-service/internal/domain"
)

// Session is one quiz attempt. All transitions are serialized by mu and leave the session
// untouched when they return an error.
type Session struct {
	id     string
	userID string
	quiz   domain.Quiz
	now    func() time.Time

	mu          sync.RWMutex
	index       int
	answers     map[string]domain.Answer
	credited    map[string]bool
	inStreak    map[string]bool // questions counted by the current streak
	points      int
	streak      int
	bestStreak  int
	remaining   int
	feedback    bool
	terminal    bool
	disposed    bool
	startedAt   time.Time
	finishedAt  time.Time
	attempt     int
	countdown   CancelFunc
	pending     map[int]CancelFunc
	nextTimer   int
	subscribers map[chan domain.SessionState]struct{}
}

// NewSession starts an active session on the first question. A quiz without questions yields a
// session whose every transition fails with ErrEmptyQuiz.
func NewSession(id, userID string, quiz domain.Quiz) *Session {
	return NewSessionWithClock(id, userID, quiz, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id, userID string, quiz domain.Quiz, now func() time.Time) *Session {
	s := &Session{
		id:          id,
		userID:      userID,
		quiz:        quiz,
		now:         now,
		pending:     make(map[int]CancelFunc),
		subscribers: make(map[chan domain.SessionState]struct{}),
	}
	s.resetLocked()
	return s
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }

// Quiz returns the question bank the session runs on.
func (s *Session) Quiz() domain.Quiz { return s.quiz }

func (s *Session) timeLimit() int {
	if s.quiz.TimeLimit > 0 {
		return s.quiz.TimeLimit
	}
	return domain.DefaultTimeLimit
}

func (s *Session) resetLocked() {
	s.index = 0
	s.answers = make(map[string]domain.Answer)
	s.credited = make(map[string]bool)
	s.inStreak = make(map[string]bool)
	s.points = 0
	s.streak = 0
	s.bestStreak = 0
	s.remaining = s.timeLimit()
	s.feedback = false
	s.terminal = false
	s.startedAt = s.now()
	s.finishedAt = time.Time{}
	s.attempt++
}

func (s *Session) checkActiveLocked() error {
	if s.disposed {
		return domain.ErrSessionDisposed
	}
	if s.terminal {
		return domain.ErrSessionComplete
	}
	if len(s.quiz.Questions) == 0 {
		return domain.ErrEmptyQuiz
	}
	return nil
}

func (s *Session) currentLocked() domain.Question {
	return s.quiz.Questions[s.index]
}

func (s *Session) isLastLocked() bool {
	return s.index == len(s.quiz.Questions)-1
}

// Answer records a for the current question and applies the streak bonus.
func (s *Session) Answer(a domain.Answer) (domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActiveLocked(); err != nil {
		return domain.Feedback{}, err
	}
	if a.IsZero() {
		return domain.Feedback{}, domain.ErrInvalidAnswer
	}

	q := s.currentLocked()
	s.answers[q.ID] = a.Clone()

	prior := s.streak
	correct := Evaluate(q, a)
	awarded := 0
	if correct {
		// Answering the same question again never extends the run.
		if !s.inStreak[q.ID] {
			s.inStreak[q.ID] = true
			s.streak++
		}
		if s.streak > s.bestStreak {
			s.bestStreak = s.streak
		}
		// Re-submissions may change the answer but never credit a question twice.
		if !s.credited[q.ID] {
			awarded = questionPoints(q) * (prior/3 + 1)
			s.points += awarded
			s.credited[q.ID] = true
		}
	} else {
		s.breakStreakLocked()
	}
	s.feedback = true
	s.broadcastLocked()

	return domain.Feedback{
		QuestionID:    q.ID,
		QuestionIndex: s.index,
		Correct:       correct,
		Awarded:       awarded,
		Streak:        s.streak,
		TotalPoints:   s.points,
		Explanation:   q.Explanation,
	}, nil
}

// AdvanceFrom moves to the next question only if from is still the current index. Manual Next
// and the delayed auto-advance both go through here, so the second of two races is a no-op.
func (s *Session) AdvanceFrom(from int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActiveLocked(); err != nil {
		return err
	}
	if from != s.index {
		return domain.ErrStaleAdvance
	}
	if _, ok := s.answers[s.currentLocked().ID]; !ok {
		return domain.ErrNotAnswered
	}
	return s.advanceLocked()
}

// Next advances from the current question.
func (s *Session) Next() error {
	s.mu.RLock()
	from := s.index
	s.mu.RUnlock()
	return s.AdvanceFrom(from)
}

func (s *Session) advanceLocked() error {
	if s.isLastLocked() {
		return domain.ErrLastQuestion
	}
	s.index++
	s.feedback = false
	s.broadcastLocked()
	return nil
}

// Skip resets the streak and moves on without recording an answer. On the last question only
// the streak reset applies.
func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActiveLocked(); err != nil {
		return err
	}
	s.breakStreakLocked()
	if s.isLastLocked() {
		s.broadcastLocked()
		return nil
	}
	return s.advanceLocked()
}

// Previous steps back one question. Points, streak and answers are untouched.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActiveLocked(); err != nil {
		return err
	}
	if s.index == 0 {
		return domain.ErrFirstQuestion
	}
	s.index--
	s.feedback = false
	s.broadcastLocked()
	return nil
}

// Submit completes the session from the last question once it has an answer.
func (s *Session) Submit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActiveLocked(); err != nil {
		return err
	}
	if !s.isLastLocked() {
		return domain.ErrNotLastQuestion
	}
	if _, ok := s.answers[s.currentLocked().ID]; !ok {
		return domain.ErrNotAnswered
	}
	s.completeLocked()
	return nil
}

func (s *Session) breakStreakLocked() {
	s.streak = 0
	s.inStreak = make(map[string]bool)
}

// Tick consumes one second of the time budget. It reports true when this tick expired the
// session.
func (s *Session) Tick() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickLocked()
}

// Attempt identifies the current run; Restart starts a new one.
func (s *Session) Attempt() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attempt
}

// TickAttempt is Tick for a countdown armed during attempt. Ticks from an earlier attempt are
// ignored, so a countdown firing across a Restart cannot eat into the new budget.
func (s *Session) TickAttempt(attempt int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt != s.attempt {
		return false, nil
	}
	return s.tickLocked()
}

func (s *Session) tickLocked() (bool, error) {
	if err := s.checkActiveLocked(); err != nil {
		return false, err
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		s.completeLocked()
		return true, nil
	}
	s.broadcastLocked()
	return false, nil
}

func (s *Session) completeLocked() {
	s.terminal = true
	s.finishedAt = s.now()
	s.cancelTimersLocked()
	s.broadcastLocked()
}

// CompletedBefore reports whether the session finished before cutoff.
func (s *Session) CompletedBefore(cutoff time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.terminal && s.finishedAt.Before(cutoff)
}

// Restart discards the attempt and starts over with the full time budget.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return domain.ErrSessionDisposed
	}
	s.cancelTimersLocked()
	s.resetLocked()
	s.broadcastLocked()
	return nil
}

// Hint returns the helper text of the current question.
func (s *Session) Hint() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkActiveLocked(); err != nil {
		return "", err
	}
	return s.currentLocked().Hint, nil
}

// Review lists every question with its recorded answer. Only valid once complete.
func (s *Session) Review() ([]domain.ReviewItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.disposed {
		return nil, domain.ErrSessionDisposed
	}
	if !s.terminal {
		return nil, domain.ErrSessionActive
	}
	items := make([]domain.ReviewItem, 0, len(s.quiz.Questions))
	for _, q := range s.quiz.Questions {
		item := domain.ReviewItem{Question: q.Public(), Explanation: q.Explanation}
		if a, ok := s.answers[q.ID]; ok {
			recorded := a.Clone()
			item.Answer = &recorded
			item.Correct = Evaluate(q, a)
		}
		items = append(items, item)
	}
	return items, nil
}

// Result computes the outcome of a complete session.
func (s *Session) Result() (domain.Result, error) {
	state := s.Snapshot()
	if !state.Terminal {
		return domain.Result{}, domain.ErrSessionActive
	}
	return ComputeResult(state, s.quiz), nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Index returns the current question index.
func (s *Session) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Disposed reports whether the session was torn down.
func (s *Session) Disposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}

// SetCountdown hands the session its countdown timer; a previous one is cancelled. A
// disposed or complete session cancels the new timer right away.
func (s *Session) SetCountdown(cancel CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countdown != nil {
		s.countdown()
	}
	s.countdown = nil
	if s.disposed || s.terminal {
		cancel()
		return
	}
	s.countdown = cancel
}

// After schedules fn once through sched. The timer is forgotten when it fires and cancelled by
// Restart, completion and Dispose.
func (s *Session) After(sched Scheduler, delay time.Duration, fn func()) {
	s.mu.Lock()
	if s.disposed || s.terminal {
		s.mu.Unlock()
		return
	}
	s.nextTimer++
	id := s.nextTimer
	s.pending[id] = nil
	s.mu.Unlock()

	cancel := sched.After(delay, func() {
		s.mu.Lock()
		_, live := s.pending[id]
		delete(s.pending, id)
		s.mu.Unlock()
		if live {
			fn()
		}
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, live := s.pending[id]; !live {
		// Already fired or cancelled while being scheduled.
		cancel()
		return
	}
	s.pending[id] = cancel
}

func (s *Session) cancelTimersLocked() {
	for id, cancel := range s.pending {
		if cancel != nil {
			cancel()
		}
		delete(s.pending, id)
	}
	if s.countdown != nil {
		s.countdown()
		s.countdown = nil
	}
}

// Dispose cancels every timer and closes subscriptions. Later calls are no-ops.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.disposed = true
	s.cancelTimersLocked()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) subscribe() (<-chan domain.SessionState, func()) {
	ch := make(chan domain.SessionState, 8)

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	state := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			// Slow consumer: replace the oldest snapshot with the latest one.
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}

func (s *Session) snapshotLocked() domain.SessionState {
	answers := make(map[string]domain.Answer, len(s.answers))
	for id, a := range s.answers {
		answers[id] = a.Clone()
	}
	state := domain.SessionState{
		SessionID:     s.id,
		QuizID:        s.quiz.ID,
		UserID:        s.userID,
		CurrentIndex:  s.index,
		TotalQuestion: len(s.quiz.Questions),
		Answers:       answers,
		Points:        s.points,
		Streak:        s.streak,
		BestStreak:    s.bestStreak,
		Remaining:     s.remaining,
		FeedbackShown: s.feedback,
		Terminal:      s.terminal,
		StartedAt:     s.startedAt,
		FinishedAt:    s.finishedAt,
	}
	if !s.terminal && len(s.quiz.Questions) > 0 {
		q := s.currentLocked().Public()
		state.Question = &q
	}
	return state
}

// questionPoints defaults unscored questions to 1.
func questionPoints(q domain.Question) int {
	if q.Points == 0 {
		return 1
	}
	return q.Points
}
