package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"budget/internal/core"
	"budget/internal/gateway"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	params := gateway.ListParams{
		Category: r.URL.Query().Get("category"),
	}
	// An absent range means the whole ledger. Only the insights views
	// default to the trailing month.
	if raw := r.URL.Query().Get("range"); raw != "" {
		params.Range = core.ParseRange(raw)
	}

	list, err := s.gateway.List(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if list == nil {
		list = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var payload core.NewExpense
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := s.gateway.Create(r.Context(), payload)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.cache.InvalidateAll()
	slog.InfoContext(r.Context(), "Expense created",
		"expense_id", created.ID,
		"category", created.Category)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch core.ExpensePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := s.gateway.Update(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.cache.InvalidateAll()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.gateway.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.cache.InvalidateAll()
	slog.InfoContext(r.Context(), "Expense deleted", "expense_id", id)
	w.WriteHeader(http.StatusNoContent)
}
