// Package amazon queries the amazon.jobs search endpoint. Param is the
// search text; the source location, when set, narrows the search.
package amazon

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

const (
	DefaultBaseURL = "https://www.amazon.jobs"
	pageSize       = 100
)

type Scraper struct {
	deps    util.Deps
	BaseURL string
}

func New(deps util.Deps) *Scraper {
	return &Scraper{deps: deps, BaseURL: DefaultBaseURL}
}

func (s *Scraper) Kind() domain.ProviderKind { return domain.KindAmazon }

type searchResponse struct {
	Hits int             `json:"hits"`
	Jobs json.RawMessage `json:"jobs"`
}

type job struct {
	IDIcims            string `json:"id_icims"`
	Title              string `json:"title"`
	NormalizedLocation string `json:"normalized_location"`
	Location           string `json:"location"`
	JobPath            string `json:"job_path"`
	Description        string `json:"description"`
	BasicQuals         string `json:"basic_qualifications"`
	PostedDate         string `json:"posted_date"`
}

func (s *Scraper) Fetch(ctx context.Context, src domain.Source) ([]domain.Posting, error) {
	query := strings.TrimSpace(src.Param)
	if query == "" {
		return nil, types.Unavailable(src, fmt.Errorf("empty amazon query"))
	}
	base := strings.TrimRight(s.BaseURL, "/")
	log := s.deps.Log().With(logger.String("source", src.Name))

	var out []domain.Posting
	for page := 0; page < s.deps.Pages(); page++ {
		q := url.Values{}
		q.Set("base_query", query)
		if src.Location != "" {
			q.Set("loc_query", src.Location)
		}
		q.Set("offset", strconv.Itoa(page*pageSize))
		q.Set("result_limit", strconv.Itoa(pageSize))
		q.Set("sort", "recent")
		u := base + "/en/search.json?" + q.Encode()

		var sr searchResponse
		if err := s.deps.Client.GetJSON(ctx, u, &sr); err != nil {
			if page == 0 {
				return nil, types.Unavailable(src, fmt.Errorf("amazon search: %w", err))
			}
			log.Warn("amazon page failed", logger.Int("page", page), logger.Error(err))
			break
		}

		jobs, skipped, ok := util.DecodeEach[job](sr.Jobs)
		if !ok {
			log.Warn("amazon response has no jobs array")
			break
		}
		if skipped > 0 {
			log.Debug("amazon records skipped", logger.Int("skipped", skipped))
		}

		for _, j := range jobs {
			title := strings.TrimSpace(j.Title)
			if title == "" || j.JobPath == "" {
				continue
			}
			link := util.Resolve(base+"/", j.JobPath)
			if link == "" {
				continue
			}
			loc := util.NormalizeLocation(util.FirstNonEmpty(j.NormalizedLocation, j.Location))
			desc := util.HTMLToText(j.Description + " " + j.BasicQuals)

			p := domain.Posting{
				Title:       title,
				Location:    loc,
				Link:        link,
				Source:      src.Name,
				Description: desc,
				WorkMode:    util.InferWorkModeFromText(loc, title, ""),
				PostedAt:    parseDate(j.PostedDate),
			}
			if id := strings.TrimSpace(j.IDIcims); id != "" {
				p.NativeID = "amazon:" + id
			}
			out = append(out, p)
		}

		if len(jobs) < pageSize || (sr.Hits > 0 && (page+1)*pageSize >= sr.Hits) {
			break
		}
	}

	return util.KeepRelevant(s.deps.Classifier, src, out, log), nil
}

// parseDate reads "January 2, 2006".
func parseDate(s string) *time.Time {
	t, err := time.Parse("January 2, 2006", strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}
