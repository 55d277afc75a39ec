// Package scrape wires the provider adapters behind one lookup by kind.
package scrape

import (
	"context"
	"fmt"
	"sort"

	"jobalert/internal/classify"
	"jobalert/internal/config"
	"jobalert/internal/domain"
	"jobalert/internal/logger"
	"jobalert/internal/scrape/amazon"
	"jobalert/internal/scrape/board"
	"jobalert/internal/scrape/google"
	"jobalert/internal/scrape/greenhouse"
	"jobalert/internal/scrape/htmlpage"
	"jobalert/internal/scrape/lever"
	"jobalert/internal/scrape/smartrecruiters"
	"jobalert/internal/scrape/types"
	"jobalert/internal/scrape/util"
	"jobalert/internal/scrape/workday"
)

// Registry resolves a source's kind to the adapter serving it.
type Registry struct {
	fetchers map[domain.ProviderKind]types.Fetcher
}

func NewRegistry(fetchers ...types.Fetcher) *Registry {
	r := &Registry{fetchers: make(map[domain.ProviderKind]types.Fetcher, len(fetchers))}
	for _, f := range fetchers {
		r.Register(f)
	}
	return r
}

// Register adds f, replacing any adapter already serving its kind.
func (r *Registry) Register(f types.Fetcher) {
	r.fetchers[f.Kind()] = f
}

func (r *Registry) Lookup(kind domain.ProviderKind) (types.Fetcher, bool) {
	f, ok := r.fetchers[kind]
	return f, ok
}

func (r *Registry) Kinds() []domain.ProviderKind {
	out := make([]domain.ProviderKind, 0, len(r.fetchers))
	for k := range r.fetchers {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Fetch runs the adapter for src. Every failure, including a missing
// adapter, comes back as *types.SourceUnavailableError.
func (r *Registry) Fetch(ctx context.Context, src domain.Source) ([]domain.Posting, error) {
	f, ok := r.fetchers[src.Kind]
	if !ok {
		return nil, types.Unavailable(src, fmt.Errorf("%w: %q", types.ErrNoAdapter, src.Kind))
	}
	ps, err := f.Fetch(ctx, src)
	if err != nil {
		return nil, types.Unavailable(src, err)
	}
	return ps, nil
}

// NewClient builds the HTTP client all adapters share.
func NewClient(h config.HTTP, log logger.Logger) *util.Client {
	return util.NewClient(util.ClientOptions{
		Timeout:     h.Timeout,
		MaxAttempts: h.MaxAttempts,
		Backoff:     h.Backoff,
		UserAgent:   h.UserAgent,
		Limiter:     util.NewHostLimiter(h.RatePerSec, h.Burst),
		Logger:      log,
	})
}

// Build registers every adapter kind over one shared client and classifier.
func Build(cfg config.Config, client *util.Client, cls *classify.Classifier, log logger.Logger) *Registry {
	deps := util.Deps{
		Client:     client,
		Classifier: cls,
		MaxPages:   cfg.HTTP.MaxPages,
		Logger:     log,
	}
	return NewRegistry(
		htmlpage.New(deps, htmlpage.Options{
			SkipDetailFetch: cfg.HTTP.SkipDetailFetch,
			DetailWorkers:   cfg.HTTP.DetailWorkers,
		}),
		board.New(deps),
		greenhouse.New(deps),
		lever.New(deps),
		smartrecruiters.New(deps),
		amazon.New(deps),
		google.New(deps),
		workday.New(deps),
	)
}

// NewClassifier builds the classifier from the filter config.
func NewClassifier(f config.Filters) *classify.Classifier {
	return classify.New(classify.Rules{
		Negative:        f.Negative,
		Positive:        f.Positive,
		Skills:          f.Skills,
		MinSkillMatches: f.MinSkillMatches,
	})
}
