package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/eargollo/filelist/internal/inventory"
)

// FilesHandler handles GET /api/files.
type FilesHandler struct {
	DB *sql.DB
}

type fileItem struct {
	inventory.FileRow
	StatusName string `json:"status_name"`
}

// List returns inventory rows, optionally filtered by ?status=new|existing|missing
// and ?dir=<absolute directory>.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	filter := inventory.FileFilter{
		Dir:    r.URL.Query().Get("dir"),
		Limit:  limit,
		Offset: offset,
	}
	if v := r.URL.Query().Get("status"); v != "" {
		st, err := inventory.ParseStatus(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
			return
		}
		filter.Status = &st
	}

	rows, total, err := inventory.ListFiles(r.Context(), h.DB, filter)
	if err != nil {
		slog.Error("files: list", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list files")
		return
	}

	items := make([]fileItem, len(rows))
	for i, row := range rows {
		items[i] = fileItem{FileRow: row, StatusName: row.Status.String()}
	}
	writeJSON(w, http.StatusOK, ListResponse[fileItem]{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}
