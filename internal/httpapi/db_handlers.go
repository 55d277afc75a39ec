package httpapi

import (
	"net"
	"net/http"
	"strconv"

	"jobalert/internal/store"
)

type HistoryHandler struct {
	DB *store.DB
}

// Runs lists recent runs, newest first. ?limit= caps the count.
func (h HistoryHandler) Runs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.DB.ListRuns(r.Context(), limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, CodeHistory, err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, runs)
}

// RunPostings lists what one run notified: /runs/{id}/postings.
func (h HistoryHandler) RunPostings(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidID, "invalid run id")
		return
	}
	ps, err := h.DB.Notified(r.Context(), id)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, CodeHistory, err.Error())
		return
	}
	if ps == nil {
		ps = []store.NotifiedPosting{}
	}
	writeJSON(w, ps)
}

func (h HistoryHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host != "127.0.0.1" && host != "::1" && host != "localhost" {
		WriteError(w, r, http.StatusForbidden, CodeForbidden, "checkpoint is local only")
		return
	}

	if _, err := h.DB.Pool.ExecContext(r.Context(), `PRAGMA wal_checkpoint(FULL);`); err != nil {
		WriteError(w, r, http.StatusInternalServerError, CodeCheckpointFailed, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
