package http

import (
	"net/http"

	"peco-service/internal/app"
)

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req app.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	rec, err := h.svc.Auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Auth.Logout(r.Context(), user(r).ID); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	rec, _ := principal(r.Context())
	writeJSON(w, http.StatusOK, rec)
}
