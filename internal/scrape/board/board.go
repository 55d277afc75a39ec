// Package board scrapes HTML job boards whose markup is described by CSS
// selectors in the source config.
package board

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobalert/internal/domain"
	"jobalert/internal/logger"
	"jobalert/internal/normalize"
	"jobalert/internal/scrape/types"
	"jobalert/internal/scrape/util"
)

var ErrNoSelectors = errors.New("board source has no item selector")

type Scraper struct {
	deps util.Deps
}

func New(deps util.Deps) *Scraper { return &Scraper{deps: deps} }

func (s *Scraper) Kind() domain.ProviderKind { return domain.KindBoard }

func (s *Scraper) Fetch(ctx context.Context, src domain.Source) ([]domain.Posting, error) {
	sel := src.Selectors
	if sel == nil || strings.TrimSpace(sel.Item) == "" {
		return nil, types.Unavailable(src, ErrNoSelectors)
	}
	body, err := s.deps.Client.Get(ctx, src.Param, "text/html")
	if err != nil {
		return nil, types.Unavailable(src, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, types.Unavailable(src, fmt.Errorf("%w: %v", types.ErrMalformed, err))
	}

	out := Extract(doc, src)
	log := s.deps.Log().With(logger.String("source", src.Name))
	if len(out) == 0 {
		log.Warn("board selectors matched nothing", logger.String("item", sel.Item))
	}
	return util.KeepRelevant(s.deps.Classifier, src, out, log), nil
}

// Extract applies the source's selectors to doc. Title defaults to the
// item text, link to the first anchor inside the item (or the item itself
// when it is an anchor), location to empty.
func Extract(doc *goquery.Document, src domain.Source) []domain.Posting {
	sel := src.Selectors
	seen := map[string]bool{}
	var out []domain.Posting

	doc.Find(sel.Item).Each(func(_ int, item *goquery.Selection) {
		title := normalize.CleanText(pick(item, sel.Title).Text())
		if title == "" || util.LooksLikeJunkTitle(title) {
			return
		}

		var href string
		if sel.Link != "" {
			href, _ = item.Find(sel.Link).First().Attr("href")
		} else if goquery.NodeName(item) == "a" {
			href, _ = item.Attr("href")
		} else {
			href, _ = item.Find("a[href]").First().Attr("href")
		}
		link := util.Resolve(src.Param, href)
		if link == "" || seen[link] {
			return
		}
		seen[link] = true

		loc := ""
		if sel.Location != "" {
			loc = util.NormalizeLocation(item.Find(sel.Location).First().Text())
		}

		out = append(out, domain.Posting{
			Title:    title,
			Location: loc,
			Link:     link,
			Source:   src.Name,
			WorkMode: util.InferWorkModeFromText(loc, title, ""),
		})
	})
	return out
}

func pick(item *goquery.Selection, selector string) *goquery.Selection {
	if selector == "" {
		return item
	}
	if s := item.Find(selector).First(); s.Length() > 0 {
		return s
	}
	return item
}
