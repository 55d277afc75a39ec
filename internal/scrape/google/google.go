// Package google queries the Google careers search API. Param is the
// search text; the source location, when set, narrows the search.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobalert/internal/domain"
	"jobalert/internal/logger"
	"jobalert/internal/scrape/types"
	"jobalert/internal/scrape/util"
)

const DefaultBaseURL = "https://careers.google.com"

type Scraper struct {
	deps    util.Deps
	BaseURL string
}

func New(deps util.Deps) *Scraper {
	return &Scraper{deps: deps, BaseURL: DefaultBaseURL}
}

func (s *Scraper) Kind() domain.ProviderKind { return domain.KindGoogle }

type searchResponse struct {
	Jobs     json.RawMessage `json:"jobs"`
	Count    int             `json:"count"`
	NextPage *int            `json:"next_page"`
	PageSize int             `json:"page_size"`
}

type job struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ApplyURL  string `json:"apply_url"`
	Summary   string `json:"summary"`
	Desc      string `json:"description"`
	Quals     string `json:"qualifications"`
	Published string `json:"publish_date"`
	Locations []struct {
		Display string `json:"display"`
	} `json:"locations"`
}

func (s *Scraper) Fetch(ctx context.Context, src domain.Source) ([]domain.Posting, error) {
	query := strings.TrimSpace(src.Param)
	if query == "" {
		return nil, types.Unavailable(src, fmt.Errorf("empty google query"))
	}
	base := strings.TrimRight(s.BaseURL, "/")
	log := s.deps.Log().With(logger.String("source", src.Name))

	var out []domain.Posting
	page := 1
	for i := 0; i < s.deps.Pages(); i++ {
		q := url.Values{}
		q.Set("q", query)
		if src.Location != "" {
			q.Set("location", src.Location)
		}
		q.Set("page", strconv.Itoa(page))
		u := base + "/api/v3/search/?" + q.Encode()

		var sr searchResponse
		if err := s.deps.Client.GetJSON(ctx, u, &sr); err != nil {
			if i == 0 {
				return nil, types.Unavailable(src, fmt.Errorf("google search: %w", err))
			}
			log.Warn("google page failed", logger.Int("page", page), logger.Error(err))
			break
		}

		jobs, skipped, ok := util.DecodeEach[job](sr.Jobs)
		if !ok {
			log.Warn("google response has no jobs array")
			break
		}
		if skipped > 0 {
			log.Debug("google records skipped", logger.Int("skipped", skipped))
		}

		for _, j := range jobs {
			title := strings.TrimSpace(j.Title)
			if title == "" {
				continue
			}
			link := s.jobURL(j)
			if link == "" {
				continue
			}
			locs := make([]string, 0, len(j.Locations))
			for _, l := range j.Locations {
				locs = append(locs, l.Display)
			}
			loc := util.JoinNonEmpty("; ", locs...)
			desc := util.HTMLToText(util.JoinNonEmpty(" ", j.Summary, j.Desc, j.Quals))

			p := domain.Posting{
				Title:       title,
				Location:    loc,
				Link:        link,
				Source:      src.Name,
				Description: desc,
				WorkMode:    util.InferWorkModeFromText(loc, title, ""),
				PostedAt:    parseTime(j.Published),
			}
			if id := jobID(j.ID); id != "" {
				p.NativeID = "google:" + id
			}
			out = append(out, p)
		}

		if sr.NextPage == nil || *sr.NextPage <= page || len(jobs) == 0 {
			break
		}
		page = *sr.NextPage
	}

	return util.KeepRelevant(s.deps.Classifier, src, out, log), nil
}

func (s *Scraper) jobURL(j job) string {
	if j.ApplyURL != "" {
		return util.Canonicalize(j.ApplyURL)
	}
	if id := jobID(j.ID); id != "" {
		return strings.TrimRight(s.BaseURL, "/") + "/jobs/results/" + id
	}
	return ""
}

// jobID strips the "jobs/" resource prefix.
func jobID(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	return id
}

func parseTime(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}
