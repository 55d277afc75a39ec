// Package htmlpage is the generic adapter for careers pages with no known
// structure. Every link on the page is a candidate posting; candidates that
// survive a title check get their detail page fetched for description and
// location.
package htmlpage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"jobalert/internal/domain"
	"jobalert/internal/logger"
	"jobalert/internal/normalize"
	"jobalert/internal/scrape/types"
	"jobalert/internal/scrape/util"
)

const (
	DefaultDetailWorkers = 4
	DefaultMaxLinks      = 200
)

type Options struct {
	SkipDetailFetch bool
	DetailWorkers   int
	MaxLinks        int
}

type Scraper struct {
	deps util.Deps
	opts Options
}

func New(deps util.Deps, opts Options) *Scraper {
	if opts.DetailWorkers <= 0 {
		opts.DetailWorkers = DefaultDetailWorkers
	}
	if opts.MaxLinks <= 0 {
		opts.MaxLinks = DefaultMaxLinks
	}
	return &Scraper{deps: deps, opts: opts}
}

func (s *Scraper) Kind() domain.ProviderKind { return domain.KindHTML }

func (s *Scraper) Fetch(ctx context.Context, src domain.Source) ([]domain.Posting, error) {
	body, err := s.deps.Client.Get(ctx, src.Param, "text/html")
	if err != nil {
		return nil, types.Unavailable(src, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, types.Unavailable(src, fmt.Errorf("%w: %v", types.ErrMalformed, err))
	}
	log := s.deps.Log().With(logger.String("source", src.Name))

	candidates := Links(doc, src)
	kept := candidates[:0]
	for _, p := range candidates {
		if s.deps.Classifier.TitleRejected(p.Title) {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) > s.opts.MaxLinks {
		log.Warn("too many links, truncating", logger.Int("links", len(kept)), logger.Int("max", s.opts.MaxLinks))
		kept = kept[:s.opts.MaxLinks]
	}

	if !s.opts.SkipDetailFetch {
		s.hydrateAll(ctx, kept, log)
	}
	return util.KeepRelevant(s.deps.Classifier, src, kept, log), nil
}

// Links returns one candidate per distinct absolute link on the page,
// skipping navigation junk. Off-site links, such as ATS boards, are kept.
func Links(doc *goquery.Document, src domain.Source) []domain.Posting {
	self := util.Canonicalize(src.Param)
	seen := map[string]bool{self: true}
	var out []domain.Posting

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		title := normalize.CleanText(a.Text())
		if util.LooksLikeJunkTitle(title) {
			return
		}
		href, _ := a.Attr("href")
		link := util.Resolve(src.Param, href)
		if link == "" || util.IsObviousJunkURL(link) || seen[link] {
			return
		}
		seen[link] = true
		out = append(out, domain.Posting{
			Title:    title,
			Link:     link,
			Source:   src.Name,
			WorkMode: util.InferWorkModeFromText("", title, ""),
		})
	})
	return out
}

// hydrateAll fetches detail pages with bounded concurrency. A failed
// detail page leaves its posting with no description.
func (s *Scraper) hydrateAll(ctx context.Context, ps []domain.Posting, log logger.Logger) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.DetailWorkers)
	for i := range ps {
		p := &ps[i]
		g.Go(func() error {
			if err := s.hydrate(gctx, p); err != nil {
				log.Debug("detail fetch failed", logger.String("url", p.Link), logger.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scraper) hydrate(ctx context.Context, p *domain.Posting) error {
	body, err := s.deps.Client.Get(ctx, p.Link, "text/html")
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return err
	}
	p.Location = util.FindLocation(doc)
	p.Description = util.DocumentText(doc)
	p.WorkMode = util.InferWorkModeFromText(p.Location, p.Title, "")
	return nil
}
