package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"jobalert/internal/config"
	"jobalert/internal/events"
	"jobalert/internal/logger"
	"jobalert/internal/metrics"
	"jobalert/internal/notify"
	"jobalert/internal/poll"
	"jobalert/internal/scrape"
	"jobalert/internal/seen"
	"jobalert/internal/store"
)

// loadConfig resolves and loads the config file. Invalid config is an
// ExitConfigInvalid error; a missing file falls back to defaults.
func loadConfig(opts *RootOptions) (*config.Loaded, logger.Logger, error) {
	path := config.Path(opts.ConfigPath, opts.DataDir)
	loaded, err := config.Load(path)
	if err != nil {
		return nil, nil, WrapExitError(ExitConfigInvalid, "invalid configuration", err)
	}
	if opts.DataDir != "" && loaded.Defaulted {
		loaded.Config.App.DataDir = opts.DataDir
		loaded.Config.Cache.Path = ""
		loaded.Config.Store.Path = ""
		config.SetDefaults(&loaded.Config)
	}

	lc := loaded.Config.Log
	if opts.LogLevel != "" {
		lc.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		lc.Format = opts.LogFormat
	}
	log, err := logger.New(lc)
	if err != nil {
		return nil, nil, WrapExitError(ExitConfigInvalid, "invalid log config", err)
	}

	if loaded.Defaulted {
		log.Warn("config file not found, using built-in defaults",
			logger.String("path", loaded.Path),
			logger.Int("sources", len(loaded.Config.Sources)),
		)
	}
	for _, w := range loaded.Validation.Warnings {
		log.Warn("config warning", logger.String("warning", w))
	}
	return loaded, log, nil
}

// app is everything a run needs, built from one loaded config.
type app struct {
	cfg      config.Config
	log      logger.Logger
	registry *scrape.Registry
	cache    seen.Store
	notifier *notify.Multi
	history  *store.DB
	metrics  *metrics.Metrics
	hub      *events.Hub
}

func openApp(ctx context.Context, opts *RootOptions) (*app, error) {
	loaded, log, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config

	a := &app{cfg: cfg, log: log, hub: events.NewHub()}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(reg)

	client := scrape.NewClient(cfg.HTTP, log)
	a.registry = scrape.Build(cfg, client, scrape.NewClassifier(cfg.Filters), log)

	a.notifier, err = notify.FromConfig(cfg.Notify, log)
	if err != nil {
		return nil, WrapExitError(ExitConfigInvalid, "notifier setup", err)
	}

	a.cache, err = seen.Open(ctx, cfg.Cache, log)
	if err != nil {
		if errors.Is(err, seen.ErrCacheLocked) {
			return nil, WrapExitError(ExitFailure, "another jobalert run holds the cache", err)
		}
		return nil, WrapExitError(ExitFailure, "open seen cache", err)
	}

	if cfg.Store.Enabled {
		a.history, err = store.Open(cfg.Store.Path)
		if err != nil {
			_ = a.cache.Close()
			return nil, WrapExitError(ExitFailure, "open run history", err)
		}
	}
	return a, nil
}

func (a *app) orchestrator() *poll.Orchestrator {
	deps := poll.Deps{
		Fetcher: a.registry,
		Cache:   a.cache,
		Metrics: a.metrics,
		Events:  a.hub,
		Logger:  a.log,
	}
	// A nil *Multi would still be a non-nil Notifier.
	if a.notifier != nil {
		deps.Notifier = a.notifier
	}
	if a.history != nil {
		deps.History = a.history
	}
	return poll.New(deps, poll.OptionsFromConfig(a.cfg))
}

func (a *app) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.history != nil {
		errs = append(errs, a.history.Close())
	}
	_ = a.log.Sync()
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
