package http

import (
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"budget/internal/core"
)

const maxImportBytes = 10 << 20

type importOut struct {
	Inserted int `json:"inserted"`
}

// handleImport ingests a CSV of transactions. Rows that fail validation are
// skipped, not fatal; the response reports how many made it in.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Please upload a .csv file")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "Please upload a .csv file")
		return
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	head, err := reader.Read()
	if err != nil {
		writeError(w, http.StatusBadRequest, "CSV must include columns: name, amount, category")
		return
	}

	cols := make(map[string]int, len(head))
	for i, name := range head {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "amount", "category"} {
		if _, ok := cols[required]; !ok {
			writeError(w, http.StatusBadRequest, "CSV must include columns: name, amount, category")
			return
		}
	}

	inserted := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		payload := core.NewExpense{
			Name:     strings.TrimSpace(field(row, cols["name"])),
			Category: strings.TrimSpace(field(row, cols["category"])),
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(field(row, cols["amount"])), 64)
		if err != nil {
			continue
		}
		payload.Amount = amount

		if payload.Validate() != nil {
			continue
		}

		if _, err := s.gateway.Create(r.Context(), payload); err != nil {
			writeDomainError(w, r, err)
			return
		}
		inserted++
	}

	if inserted > 0 {
		s.cache.InvalidateAll()
	}
	slog.InfoContext(r.Context(), "Transactions imported",
		"inserted", inserted,
		"filename", header.Filename)
	writeJSON(w, http.StatusOK, importOut{Inserted: inserted})
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
