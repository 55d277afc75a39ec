// Package scheduler runs a task on a fixed interval.
package scheduler

import (
	"context"
	"time"

	"jobalert/internal/logger"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then once per interval until ctx is
// done. Runs never overlap: a slow task delays the next tick.
func Every(ctx context.Context, interval time.Duration, name string, task Task, log logger.Logger) {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With(logger.String("task", name))

	run := func() {
		t0 := time.Now()
		if err := task(ctx); err != nil {
			log.Error("scheduled task failed", logger.Error(err), logger.Duration("elapsed", time.Since(t0)))
			return
		}
		log.Debug("scheduled task done", logger.Duration("elapsed", time.Since(t0)))
	}

	run()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
