package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"peco-service/internal/domain"
)

type ratingRequest struct {
	Difficulty string `json:"difficulty"`
}

type reflectionRequest struct {
	Text string `json:"text"`
}

func (h *handler) listFlashcards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shuffle, _ := strconv.ParseBool(q.Get("shuffle"))
	cards, err := h.svc.Flashcards.List(r.Context(), domain.FlashcardFilter{
		Topic:           q.Get("topic"),
		Difficulty:      q.Get("difficulty"),
		ReviewFrequency: q.Get("reviewFrequency"),
		Shuffle:         shuffle,
	})
	h.respond(w, cards, err)
}

func (h *handler) studiedFlashcards(w http.ResponseWriter, r *http.Request) {
	studied, err := h.svc.Flashcards.Studied(r.Context(), user(r).ID)
	h.respond(w, studied, err)
}

func (h *handler) resetStudied(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Flashcards.ResetStudied(r.Context(), user(r).ID); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) markStudied(w http.ResponseWriter, r *http.Request) {
	studied, err := h.svc.Flashcards.MarkStudied(r.Context(), user(r).ID, chi.URLParam(r, "cardID"))
	h.respond(w, studied, err)
}

func (h *handler) rateFlashcard(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	rating, err := h.svc.Flashcards.Rate(r.Context(), chi.URLParam(r, "cardID"), req.Difficulty)
	h.respond(w, rating, err)
}

func (h *handler) listChallenges(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.Challenges.List(r.Context(), user(r).ID, r.URL.Query().Get("tab"))
	h.respond(w, views, err)
}

func (h *handler) getChallenge(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Challenges.Get(r.Context(), user(r).ID, chi.URLParam(r, "challengeID"))
	h.respond(w, v, err)
}

func (h *handler) startChallenge(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Challenges.Start(r.Context(), user(r).ID, chi.URLParam(r, "challengeID"))
	h.respond(w, p, err)
}

func (h *handler) completeStep(w http.ResponseWriter, r *http.Request) {
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		writeError(w, h.log, fmt.Errorf("%w: step must be a number", domain.ErrInvalidInput))
		return
	}
	p, err := h.svc.Challenges.CompleteStep(r.Context(), user(r).ID, chi.URLParam(r, "challengeID"), step)
	h.respond(w, p, err)
}

func (h *handler) addPhoto(w http.ResponseWriter, r *http.Request) {
	var photo domain.Photo
	if err := decodeJSON(r, &photo); err != nil {
		writeError(w, h.log, err)
		return
	}
	p, err := h.svc.Challenges.AddPhoto(r.Context(), user(r).ID, chi.URLParam(r, "challengeID"), photo)
	h.respond(w, p, err)
}

func (h *handler) removePhoto(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Challenges.RemovePhoto(r.Context(), user(r).ID, chi.URLParam(r, "challengeID"), chi.URLParam(r, "photoID"))
	h.respond(w, p, err)
}

func (h *handler) setReflection(w http.ResponseWriter, r *http.Request) {
	var req reflectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	p, err := h.svc.Challenges.SetReflection(r.Context(), user(r).ID, chi.URLParam(r, "challengeID"), req.Text)
	h.respond(w, p, err)
}

func (h *handler) submitChallenge(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Challenges.Submit(r.Context(), user(r).ID, chi.URLParam(r, "challengeID"))
	h.respond(w, p, err)
}

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard.Summary(r.Context(), user(r))
	h.respond(w, d, err)
}

func (h *handler) leaderboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Dashboard.Leaderboard())
}
