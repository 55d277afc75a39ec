package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"

	"jobalert/internal/events"
	"jobalert/internal/logger"
	"jobalert/internal/store"
)

type Deps struct {
	// History is nil when the run store is disabled.
	History *store.DB

	Hub *events.Hub

	// Atomic stores
	CfgVal       *atomic.Value // stores config.Config
	ScrapeStatus *atomic.Value // stores types.ScrapeStatus

	// Metrics serves /metrics; nil leaves the route out.
	Metrics http.Handler

	// RunNow triggers one pass outside the schedule (inject for testability).
	RunNow func(ctx context.Context) error

	Logger logger.Logger
}
