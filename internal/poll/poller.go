package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"jobalert/internal/domain"
	"jobalert/internal/logger"
	"jobalert/internal/notify"
	"jobalert/internal/scheduler"
	"jobalert/internal/scrape/types"
)

// Watcher runs the orchestrator on an interval and keeps the last-run
// status for the HTTP API.
type Watcher struct {
	Orch    *Orchestrator
	Sources []domain.Source
	Status  *atomic.Value // types.ScrapeStatus
	Log     logger.Logger

	mu sync.Mutex
}

// ErrRunInProgress is returned by Tick when another pass holds the cache.
var ErrRunInProgress = errors.New("run already in progress")

// Start blocks, running one pass now and one per interval until ctx ends.
func (w *Watcher) Start(ctx context.Context, interval time.Duration) {
	scheduler.Every(ctx, interval, "poll", w.Tick, w.Log)
}

// Tick is one scheduled pass. Notification failures are reported in the
// status and returned; source failures are not errors.
func (w *Watcher) Tick(ctx context.Context) error {
	if !w.mu.TryLock() {
		return ErrRunInProgress
	}
	defer w.mu.Unlock()

	st := w.load()
	st.Running = true
	st.LastRunAt = time.Now().Format(time.RFC3339)
	w.Status.Store(st)

	sum, err := w.Orch.Run(ctx, w.Sources)

	st = w.load()
	st.Running = false
	st.LastFresh = sum.FreshCount
	st.PerSource = sum.PerSource
	if err != nil {
		st.LastError = err.Error()
		st.FailedRuns++
		var nf *notify.NotificationFailureError
		if errors.As(err, &nf) {
			w.Log.Warn("poll notify failed", logger.Error(err))
		}
	} else {
		st.LastError = ""
		st.LastOkAt = time.Now().Format(time.RFC3339)
	}
	w.Status.Store(st)
	return err
}

func (w *Watcher) load() types.ScrapeStatus {
	if v, ok := w.Status.Load().(types.ScrapeStatus); ok {
		return v
	}
	return types.ScrapeStatus{}
}
