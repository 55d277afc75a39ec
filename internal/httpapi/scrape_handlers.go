package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"

	"jobalert/internal/logger"
	"jobalert/internal/scrape/types"
)

type ScrapeHandler struct {
	ScrapeStatus *atomic.Value // types.ScrapeStatus
	RunNow       func(ctx context.Context) error
	Log          logger.Logger
}

func (h ScrapeHandler) status() types.ScrapeStatus {
	st, _ := h.ScrapeStatus.Load().(types.ScrapeStatus)
	return st
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.status())
}

// Run starts a pass in the background and answers 202, or 409 while one
// is already running.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.RunNow == nil {
		WriteError(w, r, http.StatusNotImplemented, CodeNoRunner, "manual runs are not enabled")
		return
	}
	if h.status().Running {
		WriteError(w, r, http.StatusConflict, CodeAlreadyRunning, "a run is already in progress")
		return
	}

	reqID := RequestIDFrom(r.Context())
	go func() {
		if err := h.RunNow(context.Background()); err != nil && h.Log != nil {
			h.Log.Warn("manual run failed", logger.String("request_id", reqID), logger.Error(err))
		}
	}()

	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true, "request_id": reqID})
}
