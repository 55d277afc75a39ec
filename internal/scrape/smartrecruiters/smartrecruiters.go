package smartrecruiters

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"jobalert/internal/domain"
	"jobalert/internal/logger"
	"jobalert/internal/scrape/types"
	"jobalert/internal/scrape/util"
)

const (
	DefaultBaseURL = "https://api.smartrecruiters.com"
	pageSize       = 100
)

type Scraper struct {
	deps    util.Deps
	BaseURL string
}

func New(deps util.Deps) *Scraper {
	return &Scraper{deps: deps, BaseURL: DefaultBaseURL}
}

func (s *Scraper) Kind() domain.ProviderKind { return domain.KindSmartRecruiters }

// Response schema (public API) is typically:
// { "content": [...], "totalFound": N, "offset": O, "limit": L }
// but we defensively parse only what we need.
type postingsResponse struct {
	Content    []posting `json:"content"`
	TotalFound int       `json:"totalFound"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
}

type posting struct {
	ID           string    `json:"id"`
	UUID         string    `json:"uuid"`
	Name         string    `json:"name"`
	ReleasedDate time.Time `json:"releasedDate"`
	Ref          string    `json:"ref"`
	Location     struct {
		City         string `json:"city"`
		Region       string `json:"region"`
		Country      string `json:"country"`
		FullLocation string `json:"fullLocation"`
		Remote       bool   `json:"remote"`
	} `json:"location"`
	Department struct {
		Label string `json:"label"`
	} `json:"department"`
}

func (s *Scraper) Fetch(ctx context.Context, src domain.Source) ([]domain.Posting, error) {
	slug := strings.TrimSpace(src.Param)
	if slug == "" {
		return nil, types.Unavailable(src, fmt.Errorf("empty smartrecruiters slug"))
	}
	// Example: https://api.smartrecruiters.com/v1/companies/<slug>/postings?limit=100&offset=0
	base := fmt.Sprintf("%s/v1/companies/%s/postings", strings.TrimRight(s.BaseURL, "/"), url.PathEscape(slug))
	log := s.deps.Log().With(logger.String("source", src.Name))

	var out []domain.Posting
	offset := 0
	for page := 0; page < s.deps.Pages(); page++ {
		u := fmt.Sprintf("%s?limit=%d&offset=%d", base, pageSize, offset)

		var pr postingsResponse
		if err := s.deps.Client.GetJSON(ctx, u, &pr); err != nil {
			if page == 0 {
				return nil, types.Unavailable(src, fmt.Errorf("smartrecruiters %q: %w", slug, err))
			}
			log.Warn("smartrecruiters page failed", logger.Int("page", page), logger.Error(err))
			break
		}
		if len(pr.Content) == 0 {
			break
		}

		for _, p := range pr.Content {
			title := strings.TrimSpace(p.Name)
			id := util.FirstNonEmpty(p.ID, p.UUID)
			if title == "" || id == "" {
				continue
			}
			loc := p.Location.FullLocation
			if loc == "" {
				loc = util.JoinNonEmpty(", ", p.Location.City, p.Location.Region, strings.ToUpper(p.Location.Country))
			}
			loc = util.NormalizeLocation(loc)
			if p.Location.Remote && !strings.Contains(strings.ToLower(loc), "remote") {
				loc = util.JoinNonEmpty(", ", loc, "Remote")
			}

			var postedAt *time.Time
			if !p.ReleasedDate.IsZero() {
				t := p.ReleasedDate
				postedAt = &t
			}

			out = append(out, domain.Posting{
				Title:    title,
				Location: loc,
				Link:     fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", slug, id),
				Source:   src.Name,
				NativeID: "smartrecruiters:" + slug + ":" + id,
				// The list endpoint carries no body; the department is the
				// closest thing to one.
				Description: p.Department.Label,
				WorkMode:    util.InferWorkModeFromText(loc, title, ""),
				PostedAt:    postedAt,
			})
		}

		offset += pageSize
		if pr.TotalFound > 0 && offset >= pr.TotalFound {
			break
		}
	}

	return util.KeepRelevant(s.deps.Classifier, src, out, log), nil
}
