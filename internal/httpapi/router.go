package httpapi

import (
	"net/http"
	"time"

	"jobalert/internal/logger"
)

// NewMux returns the raw mux; NewHandler wraps it in the middleware chain.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{Started: time.Now()}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Runs
	sch := ScrapeHandler{ScrapeStatus: d.ScrapeStatus, RunNow: d.RunNow, Log: d.Logger}
	mux.HandleFunc("/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Status,
	}))
	mux.HandleFunc("/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Run,
	}))

	// History
	if d.History != nil {
		hist := HistoryHandler{DB: d.History}
		mux.HandleFunc("/runs", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: hist.Runs,
		}))
		mux.HandleFunc("GET /runs/{id}/postings", hist.RunPostings)
		mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: hist.Checkpoint,
		}))
	}

	// Config
	ch := ConfigHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// SSE events
	if d.Hub != nil {
		eh := EventsHandler{Hub: d.Hub}
		mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: eh.ServeSSE,
		}))
	}

	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics)
	}

	return mux
}

// NewHandler is NewMux behind request-id, recover and access-log middleware.
func NewHandler(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = logger.NewNop()
		d.Logger = log
	}
	return Chain(NewMux(d), RequestID, Recover(log), AccessLog(log))
}
