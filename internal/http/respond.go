package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"budget/internal/core"
	"budget/internal/gateway"
	"budget/internal/remote"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeDomainError maps gateway failures onto wire statuses. Validation
// problems are the caller's fault; a not-found id gets the canonical detail
// string; an upstream status passes through when the remote backend already
// classified the failure.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyName), errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, gateway.ErrNotFound):
		writeError(w, http.StatusNotFound, "Expense not found")
	default:
		var statusErr *remote.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
			writeError(w, statusErr.StatusCode, statusErr.Message)
			return
		}
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
