package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"peco-service/internal/domain"
)

type nextRequest struct {
	From *int `json:"from"`
}

func (h *handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.svc.Quizzes.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *handler) startSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.Quizzes.Start(r.Context(), chi.URLParam(r, "quizID"), user(r).ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (h *handler) sessionState(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.Quizzes.State(r.Context(), chi.URLParam(r, "sessionID"), user(r).ID)
	h.respond(w, state, err)
}

func (h *handler) disposeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Quizzes.Dispose(r.Context(), chi.URLParam(r, "sessionID"), user(r).ID); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) answer(w http.ResponseWriter, r *http.Request) {
	var answer domain.Answer
	if err := decodeJSON(r, &answer); err != nil {
		writeError(w, h.log, err)
		return
	}
	fb, err := h.svc.Quizzes.Answer(r.Context(), chi.URLParam(r, "sessionID"), user(r).ID, answer)
	h.respond(w, fb, err)
}

// next advances the session. A "from" index guards against double advances; without it the
// current question is used.
func (h *handler) next(w http.ResponseWriter, r *http.Request) {
	var req nextRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	from := -1
	if req.From != nil {
		from = *req.From
	}
	state, err := h.svc.Quizzes.Next(r.Context(), chi.URLParam(r, "sessionID"), user(r).ID, from)
	h.respond(w, state, err)
}

func (h *handler) previous(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.Quizzes.Previous(r.Context(), chi.URLParam(r, "sessionID"), user(r).ID)
	h.respond(w, state, err)
}

func (h *handler) skip(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.Quizzes.Skip(r.Context(), chi.URLParam(r, "sessionID"), user(r).ID)
	h.respond(w, state, err)
}

func (h *handler) submit(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Quizzes.Submit(r.Context(), chi.URLParam(r, "sessionID"), user(r).ID)
	h.respond(w, result, err)
}

func (h *handler) restart(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.Quizzes.Restart(r.Context(), chi.URLParam(r, "sessionID"), user(r).ID)
	h.respond(w, state, err)
}

func (h *handler) hint(w http.ResponseWriter, r *http.Request) {
	hint, err := h.svc.Quizzes.Hint(r.Context(), chi.URLParam(r, "sessionID"), user(r).ID)
	h.respond(w, map[string]string{"hint": hint}, err)
}

func (h *handler) result(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Quizzes.Result(r.Context(), chi.URLParam(r, "sessionID"), user(r).ID)
	h.respond(w, result, err)
}

func (h *handler) review(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Quizzes.Review(r.Context(), chi.URLParam(r, "sessionID"), user(r).ID)
	h.respond(w, items, err)
}

func (h *handler) respond(w http.ResponseWriter, v any, err error) {
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
