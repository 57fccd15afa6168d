package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"peco-service/internal/app"
	"peco-service/internal/domain"
)

type bulkRequest struct {
	Action  string   `json:"action"`
	IDs     []string `json:"ids"`
	Confirm bool     `json:"confirm"`
}

type bulkResponse struct {
	Action   string `json:"action"`
	Affected int    `json:"affected"`
}

// listLessons accepts search, category, status, difficulty, dateFrom and dateTo filters plus
// sort/direction. toggle=<key> flips the current sort the way clicking a column header does.
func (h *handler) listLessons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.LessonFilter{
		Search:     q.Get("search"),
		Category:   q.Get("category"),
		Status:     q.Get("status"),
		Difficulty: q.Get("difficulty"),
	}
	var err error
	if filter.DateFrom, err = parseDate(q, "dateFrom", false); err != nil {
		writeError(w, h.log, err)
		return
	}
	if filter.DateTo, err = parseDate(q, "dateTo", true); err != nil {
		writeError(w, h.log, err)
		return
	}
	sortCfg := domain.SortConfig{Key: q.Get("sort"), Direction: q.Get("direction")}
	if key := q.Get("toggle"); key != "" {
		sortCfg = app.ToggleSort(sortCfg, key)
	}
	list, err := h.svc.Lessons.List(r.Context(), filter, sortCfg)
	h.respond(w, list, err)
}

func (h *handler) getLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.svc.Lessons.Get(r.Context(), chi.URLParam(r, "lessonID"))
	h.respond(w, lesson, err)
}

func (h *handler) createLesson(w http.ResponseWriter, r *http.Request) {
	var lesson domain.Lesson
	if err := decodeJSON(r, &lesson); err != nil {
		writeError(w, h.log, err)
		return
	}
	created, err := h.svc.Lessons.Create(r.Context(), lesson)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateLesson(w http.ResponseWriter, r *http.Request) {
	var lesson domain.Lesson
	if err := decodeJSON(r, &lesson); err != nil {
		writeError(w, h.log, err)
		return
	}
	updated, err := h.svc.Lessons.Update(r.Context(), chi.URLParam(r, "lessonID"), lesson)
	h.respond(w, updated, err)
}

func (h *handler) deleteLesson(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := h.svc.Lessons.Delete(r.Context(), chi.URLParam(r, "lessonID"), confirmed); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) bulkLessons(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	n, err := h.svc.Lessons.Bulk(r.Context(), req.Action, req.IDs, req.Confirm)
	h.respond(w, bulkResponse{Action: req.Action, Affected: n}, err)
}

func (h *handler) lessonStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Lessons.Stats(r.Context())
	h.respond(w, stats, err)
}

// parseDate reads YYYY-MM-DD or RFC 3339. A plain date used as an upper bound covers the whole day.
func parseDate(q url.Values, name string, endOfDay bool) (time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date", domain.ErrInvalidInput, name)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
