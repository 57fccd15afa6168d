package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"peco-service/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrLessonNotFound),
		errors.Is(err, domain.ErrChallengeNotFound),
		errors.Is(err, domain.ErrFlashcardNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrNotSessionMember):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidAnswer),
		errors.Is(err, domain.ErrUnknownAction),
		errors.Is(err, domain.ErrEmptyQuiz):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConfirmationRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, domain.ErrSessionComplete),
		errors.Is(err, domain.ErrSessionActive),
		errors.Is(err, domain.ErrSessionDisposed),
		errors.Is(err, domain.ErrNotAnswered),
		errors.Is(err, domain.ErrStaleAdvance),
		errors.Is(err, domain.ErrLastQuestion),
		errors.Is(err, domain.ErrFirstQuestion),
		errors.Is(err, domain.ErrNotLastQuestion),
		errors.Is(err, domain.ErrChallengeNotStarted),
		errors.Is(err, domain.ErrChallengeCompleted),
		errors.Is(err, domain.ErrChallengeIncomplete),
		errors.Is(err, domain.ErrStepLocked),
		errors.Is(err, domain.ErrPhotoLimit):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError renders err as {"error": ...}. Internal errors are logged and hidden.
func writeError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: bad json: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found: " + r.URL.Path})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: r.Method + " not allowed on " + r.URL.Path})
}
