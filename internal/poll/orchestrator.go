// Package poll runs the alert pipeline: fetch every source concurrently,
// dedup against the seen cache, notify once, persist.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"jobalert/internal/config"
	"jobalert/internal/digest"
	"jobalert/internal/domain"
	"jobalert/internal/events"
	"jobalert/internal/logger"
	"jobalert/internal/metrics"
	"jobalert/internal/notify"
	"jobalert/internal/scrape/types"
	"jobalert/internal/seen"
	"jobalert/internal/store"
)

const (
	DefaultWorkers       = 4
	DefaultSourceTimeout = 2 * time.Minute
	DefaultRetention     = 30 * 24 * time.Hour

	// persistTimeout bounds notify and save once the run deadline may have
	// passed.
	persistTimeout = time.Minute
)

// Fetcher resolves a source to its classified postings. *scrape.Registry
// implements it.
type Fetcher interface {
	Fetch(ctx context.Context, src domain.Source) ([]domain.Posting, error)
}

// History records finished runs. *store.DB implements it.
type History interface {
	RecordRun(ctx context.Context, r store.Run, postings []domain.Posting) (int64, error)
}

// Publisher receives run events. *events.Hub implements it.
type Publisher interface {
	Publish(evt string) int
}

type Options struct {
	Workers       int
	RunTimeout    time.Duration
	SourceTimeout time.Duration
	Retention     time.Duration
	SkipEmpty     bool
}

// OptionsFromConfig reads the run knobs out of cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Workers:       cfg.App.Workers,
		RunTimeout:    cfg.App.RunTimeout,
		SourceTimeout: cfg.App.SourceTimeout,
		Retention:     cfg.Cache.Retention,
		SkipEmpty:     cfg.Notify.SkipEmpty,
	}
}

// Deps are the orchestrator's collaborators. Fetcher and Cache are
// required; the rest may be nil.
type Deps struct {
	Fetcher  Fetcher
	Cache    seen.Store
	Notifier notify.Notifier
	History  History
	Metrics  *metrics.Metrics
	Events   Publisher
	Logger   logger.Logger
	Now      func() time.Time
}

type Orchestrator struct {
	deps Deps
	opts Options
	log  logger.Logger
}

func New(deps Deps, opts Options) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = DefaultSourceTimeout
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Orchestrator{deps: deps, opts: opts, log: log}
}

// RunSummary is what one run produced. PerSource has an entry for every
// enabled source, zero for failed ones.
type RunSummary struct {
	FreshCount int            `json:"fresh_count"`
	PerSource  map[string]int `json:"per_source"`
	Failed     []string       `json:"failed,omitempty"`
	Fetched    int            `json:"fetched"`
	Pruned     int            `json:"pruned"`
	Notified   bool           `json:"notified"`
	Subject    string         `json:"subject"`
	RunID      int64          `json:"run_id,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Run performs one pass over sources. A source failure never fails the
// run. The cache is saved whether or not notification succeeds; a notify
// failure comes back afterwards as *notify.NotificationFailureError.
func (o *Orchestrator) Run(ctx context.Context, sources []domain.Source) (RunSummary, error) {
	started := o.deps.Now()
	sum := RunSummary{PerSource: map[string]int{}, StartedAt: started}

	runCtx := ctx
	if o.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.opts.RunTimeout)
		defer cancel()
	}

	cache, err := o.deps.Cache.Load(runCtx)
	switch {
	case errors.Is(err, seen.ErrCacheCorrupt):
		o.log.Warn("seen cache corrupt, starting empty", logger.Error(err))
	case err != nil:
		o.deps.Metrics.ObserveRun(metrics.OutcomeError, 0, time.Since(started), o.deps.Now())
		return sum, fmt.Errorf("load seen cache: %w", err)
	}
	if cache == nil {
		cache = seen.New()
	}

	active := make([]domain.Source, 0, len(sources))
	for _, s := range sources {
		if s.Disabled {
			o.log.Debug("source disabled", logger.String("source", s.Name))
			continue
		}
		active = append(active, s)
	}

	o.publish(events.TypeRunStarted, map[string]any{"sources": len(active)})
	o.log.Info("run started",
		logger.Int("sources", len(active)),
		logger.Int("workers", o.opts.Workers),
		logger.Int("cache_entries", cache.Len()),
	)

	fresh := make([][]domain.Posting, len(active))
	index := make(map[string]int, len(active))
	for i, s := range active {
		index[s.Name] = i
		sum.PerSource[s.Name] = 0
	}

	// Only this goroutine touches cache.
	now := o.deps.Now()
	for res := range o.fetchAll(runCtx, active) {
		src := res.Source
		o.deps.Metrics.ObserveSource(src.Name, string(src.Kind), len(res.Postings), res.Err, res.Elapsed)
		if res.Err != nil {
			sum.Failed = append(sum.Failed, src.Name)
			o.log.Warn("source unavailable",
				logger.String("source", src.Name),
				logger.String("kind", string(src.Kind)),
				logger.Duration("elapsed", res.Elapsed),
				logger.Error(res.Err),
			)
			continue
		}

		i := index[src.Name]
		for _, p := range res.Postings {
			key := p.Key()
			if !cache.Contains(key) {
				fresh[i] = append(fresh[i], p)
			}
			cache.Record(key, now)
		}
		sum.Fetched += len(res.Postings)
		sum.PerSource[src.Name] = len(fresh[i])
		sum.FreshCount += len(fresh[i])
		o.log.Info("source done",
			logger.String("source", src.Name),
			logger.String("kind", string(src.Kind)),
			logger.Int("postings", len(res.Postings)),
			logger.Int("fresh", len(fresh[i])),
			logger.Duration("elapsed", res.Elapsed),
		)
	}

	groups := make([]digest.Group, 0, len(active))
	for i, s := range active {
		groups = append(groups, digest.Group{Source: s.Name, Postings: fresh[i]})
	}
	d := digest.Build(groups, now)
	sum.Subject = d.Subject

	// Notify and persist even when the run deadline has expired.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	notifyErr := o.notify(pctx, d)
	sum.Notified = notifyErr == nil && o.deps.Notifier != nil && !(d.Empty() && o.opts.SkipEmpty)

	sum.Pruned = cache.Prune(now, o.opts.Retention)
	saveErr := o.deps.Cache.Save(pctx, cache)
	if saveErr != nil {
		saveErr = fmt.Errorf("save seen cache: %w", saveErr)
	}
	o.deps.Metrics.ObserveCache(cache.Len(), sum.Pruned)

	sum.FinishedAt = o.deps.Now()
	o.record(pctx, &sum, d, notifyErr)

	outcome := metrics.OutcomeOK
	switch {
	case saveErr != nil:
		outcome = metrics.OutcomeError
	case notifyErr != nil:
		outcome = metrics.OutcomeNotifyFailed
	}
	o.deps.Metrics.ObserveRun(outcome, sum.FreshCount, sum.FinishedAt.Sub(started), sum.FinishedAt)
	o.publish(events.TypeRunFinished, sum)

	o.log.Info("run finished",
		logger.Int("fresh", sum.FreshCount),
		logger.Int("fetched", sum.Fetched),
		logger.Strings("failed", sum.Failed),
		logger.Int("pruned", sum.Pruned),
		logger.Int("cache_entries", cache.Len()),
		logger.String("outcome", outcome),
		logger.Duration("elapsed", sum.FinishedAt.Sub(started)),
	)

	return sum, errors.Join(saveErr, notifyErr)
}

// fetchAll runs one task per source on a bounded pool and streams the
// results. The channel closes once every task is done.
func (o *Orchestrator) fetchAll(ctx context.Context, sources []domain.Source) <-chan types.ScrapeResult {
	results := make(chan types.ScrapeResult, len(sources))

	var g errgroup.Group
	g.SetLimit(o.opts.Workers)

	go func() {
		for _, src := range sources {
			g.Go(func() error {
				fctx, cancel := context.WithTimeout(ctx, o.opts.SourceTimeout)
				defer cancel()

				t0 := time.Now()
				o.log.Debug("fetching", logger.String("source", src.Name), logger.String("kind", string(src.Kind)))
				ps, err := o.deps.Fetcher.Fetch(fctx, src)
				if err != nil {
					ps = nil
					err = types.Unavailable(src, err)
				}
				results <- types.ScrapeResult{Source: src, Postings: ps, Err: err, Elapsed: time.Since(t0)}
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	return results
}

func (o *Orchestrator) notify(ctx context.Context, d digest.Digest) error {
	n := o.deps.Notifier
	if n == nil {
		o.log.Warn("no notifier configured, digest not sent", logger.Int("fresh", d.Count))
		return nil
	}
	if d.Empty() && o.opts.SkipEmpty {
		o.log.Info("no new postings, skipping notification")
		return nil
	}

	err := n.Notify(ctx, d)
	if err == nil {
		o.log.Info("digest sent", logger.String("notifier", n.Name()), logger.String("subject", d.Subject))
		return nil
	}
	var nf *notify.NotificationFailureError
	if !errors.As(err, &nf) {
		err = &notify.NotificationFailureError{Notifier: n.Name(), Err: err}
	}
	o.log.Error("notification failed", logger.String("notifier", n.Name()), logger.Error(err))
	return err
}

func (o *Orchestrator) record(ctx context.Context, sum *RunSummary, d digest.Digest, notifyErr error) {
	if o.deps.History == nil {
		return
	}
	r := store.Run{
		StartedAt:     sum.StartedAt,
		FinishedAt:    sum.FinishedAt,
		Fresh:         sum.FreshCount,
		Sources:       len(sum.PerSource),
		FailedSources: sum.Failed,
		PerSource:     d.PerSource(),
	}
	if notifyErr != nil {
		r.NotifyError = notifyErr.Error()
	}
	var notified []domain.Posting
	for _, g := range d.Groups {
		notified = append(notified, g.Postings...)
	}
	id, err := o.deps.History.RecordRun(ctx, r, notified)
	if err != nil {
		o.log.Warn("record run history", logger.Error(err))
		return
	}
	sum.RunID = id
}

func (o *Orchestrator) publish(typ string, data any) {
	if o.deps.Events == nil {
		return
	}
	o.deps.Events.Publish(events.MakeEvent("", typ, 1, data))
}
