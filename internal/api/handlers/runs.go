package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/eargollo/filelist/internal/inventory"
)

// RunsHandler handles GET /api/runs.
type RunsHandler struct {
	DB *sql.DB
}

// List returns the run log newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	total, err := inventory.CountRuns(r.Context(), h.DB)
	if err != nil {
		slog.Error("runs: count", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to count runs")
		return
	}
	runs, err := inventory.ListRuns(r.Context(), h.DB, limit, offset)
	if err != nil {
		slog.Error("runs: list", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list runs")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse[inventory.RunStats]{
		Items:  nonNil(runs),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}
