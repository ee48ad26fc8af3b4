package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/eargollo/filelist/internal/inventory"
)

// StatusHandler handles GET /api/status.
type StatusHandler struct {
	DB *sql.DB
}

type statusResponse struct {
	LastRun *inventory.RunStats `json:"last_run"`
	Files   fileCounts          `json:"files"`
}

type fileCounts struct {
	New      int64 `json:"new"`
	Existing int64 `json:"existing"`
	Missing  int64 `json:"missing"`
	Total    int64 `json:"total"`
}

// ServeHTTP returns the latest run and the inventory counts by status.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := inventory.CountByStatus(ctx, h.DB)
	if err != nil {
		slog.Error("status: count files", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to count files")
		return
	}
	runs, err := inventory.ListRuns(ctx, h.DB, 1, 0)
	if err != nil {
		slog.Error("status: last run", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to read runs")
		return
	}

	resp := statusResponse{
		Files: fileCounts{
			New:      counts[inventory.StatusNew],
			Existing: counts[inventory.StatusExisting],
			Missing:  counts[inventory.StatusMissing],
		},
	}
	resp.Files.Total = resp.Files.New + resp.Files.Existing + resp.Files.Missing
	if len(runs) > 0 {
		resp.LastRun = &runs[0]
	}
	writeJSON(w, http.StatusOK, resp)
}
