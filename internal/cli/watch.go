package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"jobalert/internal/httpapi"
	"jobalert/internal/logger"
	"jobalert/internal/poll"
	"jobalert/internal/scheduler"
	"jobalert/internal/scrape/types"
)

const historyRetention = 90 * 24 * time.Hour

type watchOptions struct {
	Interval time.Duration
	Addr     string
	NoServer bool
}

func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run on an interval and serve status over HTTP",
		Long: `Run a pass immediately and then every --interval until interrupted.

The status server exposes /health, /status, /run, /runs, /events (SSE),
/config and /metrics on --addr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), rootOpts, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "time between runs (default server.interval)")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "status server address (default server.addr)")
	cmd.Flags().BoolVar(&opts.NoServer, "no-server", false, "do not start the status server")

	return cmd
}

func runWatch(ctx context.Context, rootOpts *RootOptions, opts *watchOptions) error {
	a, err := openApp(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer a.Close()

	interval := a.cfg.Server.Interval
	if opts.Interval > 0 {
		interval = opts.Interval
	}
	addr := a.cfg.Server.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	var cfgVal, status atomic.Value
	cfgVal.Store(a.cfg)
	status.Store(types.ScrapeStatus{})

	w := &poll.Watcher{
		Orch:    a.orchestrator(),
		Sources: a.cfg.Sources,
		Status:  &status,
		Log:     a.log,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !opts.NoServer {
		deps := httpapi.Deps{
			Hub:          a.hub,
			CfgVal:       &cfgVal,
			ScrapeStatus: &status,
			Metrics:      a.metrics.Handler(),
			RunNow:       func(context.Context) error { return w.Tick(ctx) },
			Logger:       a.log,
		}
		if a.history != nil {
			deps.History = a.history
		}
		srv := &http.Server{
			Addr:              addr,
			Handler:           httpapi.NewHandler(deps),
			ReadHeaderTimeout: 5 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}
		go func() {
			a.log.Info("status server listening", logger.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("status server failed", logger.Error(err))
				cancel()
			}
		}()
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer scancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	if a.history != nil {
		go scheduler.Every(ctx, 24*time.Hour, "history-cleanup", func(ctx context.Context) error {
			n, err := a.history.CleanupOld(ctx, time.Now(), historyRetention)
			if err == nil && n > 0 {
				a.log.Info("history cleaned", logger.Int64("runs", n))
			}
			return err
		}, a.log)
	}

	a.log.Info("watching", logger.Duration("interval", interval), logger.Int("sources", len(a.cfg.Sources)))
	w.Start(ctx, interval)
	return nil
}
