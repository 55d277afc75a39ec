// Package greenhouse reads public Greenhouse job boards through the boards
// API. The API returns every open job in one response.
package greenhouse

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobalert/internal/domain"
	"jobalert/internal/scrape/types"
	"jobalert/internal/scrape/util"
)

const DefaultBaseURL = "https://boards-api.greenhouse.io"

type Scraper struct {
	deps util.Deps

	// BaseURL is overridable for tests.
	BaseURL string
}

func New(deps util.Deps) *Scraper {
	return &Scraper{deps: deps, BaseURL: DefaultBaseURL}
}

func (s *Scraper) Kind() domain.ProviderKind { return domain.KindGreenhouse }

type jobsResponse struct {
	Jobs []job `json:"jobs"`
	Meta struct {
		Total int `json:"total"`
	} `json:"meta"`
}

type job struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
	Content     string `json:"content"` // HTML, entity-escaped
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
}

func (s *Scraper) Fetch(ctx context.Context, src domain.Source) ([]domain.Posting, error) {
	slug := strings.TrimSpace(src.Param)
	if slug == "" {
		return nil, types.Unavailable(src, fmt.Errorf("empty board slug"))
	}
	api := fmt.Sprintf("%s/v1/boards/%s/jobs?content=true", strings.TrimRight(s.BaseURL, "/"), url.PathEscape(slug))

	var jr jobsResponse
	if err := s.deps.Client.GetJSON(ctx, api, &jr); err != nil {
		return nil, types.Unavailable(src, fmt.Errorf("greenhouse board %q: %w", slug, err))
	}

	out := make([]domain.Posting, 0, len(jr.Jobs))
	for _, j := range jr.Jobs {
		title := strings.TrimSpace(j.Title)
		if title == "" || j.AbsoluteURL == "" {
			continue
		}
		desc := util.HTMLToText(html.UnescapeString(j.Content))
		loc := util.NormalizeLocation(j.Location.Name)

		p := domain.Posting{
			Title:       title,
			Location:    loc,
			Link:        util.Canonicalize(j.AbsoluteURL),
			Source:      src.Name,
			Description: desc,
			WorkMode:    util.InferWorkModeFromText(loc, title, desc),
			PostedAt:    parseTime(j.UpdatedAt),
		}
		if j.ID > 0 {
			p.NativeID = "greenhouse:" + slug + ":" + strconv.FormatInt(j.ID, 10)
		}
		out = append(out, p)
	}
	return util.KeepRelevant(s.deps.Classifier, src, out, s.deps.Log()), nil
}

func parseTime(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}
