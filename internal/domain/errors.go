package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been initialized.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrEmptyQuiz is returned when a quiz without questions is started.
	ErrEmptyQuiz = errors.New("quiz has no questions")

	// Session transition rejections. The session is left unchanged.
	ErrSessionComplete  = errors.New("quiz session already complete")
	ErrSessionActive    = errors.New("quiz session not complete yet")
	ErrSessionDisposed  = errors.New("quiz session disposed")
	ErrInvalidAnswer    = errors.New("answer is empty")
	ErrNotAnswered      = errors.New("current question has no answer")
	ErrStaleAdvance     = errors.New("question already advanced")
	ErrLastQuestion     = errors.New("already at last question")
	ErrFirstQuestion    = errors.New("already at first question")
	ErrNotLastQuestion  = errors.New("submit is only allowed on the last question")
	ErrNotSessionMember = errors.New("session belongs to another user")

	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	// ErrMalformedRecord marks a stored value that could not be decoded.
	ErrMalformedRecord = errors.New("malformed stored record")

	ErrLessonNotFound       = errors.New("lesson not found")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrUnknownAction        = errors.New("unknown bulk action")

	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrChallengeNotStarted = errors.New("challenge not started")
	ErrChallengeCompleted  = errors.New("challenge already completed")
	ErrChallengeIncomplete = errors.New("required steps not completed")
	ErrStepLocked          = errors.New("step not accessible yet")
	ErrPhotoLimit          = errors.New("photo limit reached")

	ErrFlashcardNotFound = errors.New("flashcard not found")
)
