package lever

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobalert/internal/domain"
	"jobalert/internal/logger"
	"jobalert/internal/normalize"
	"jobalert/internal/scrape/types"
	"jobalert/internal/scrape/util"
)

const (
	DefaultBaseURL = "https://api.lever.co"
	pageSize       = 100
)

type Scraper struct {
	deps    util.Deps
	BaseURL string
}

func New(deps util.Deps) *Scraper {
	return &Scraper{deps: deps, BaseURL: DefaultBaseURL}
}

func (s *Scraper) Kind() domain.ProviderKind { return domain.KindLever }

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"` // ms epoch
	Categories struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	WorkplaceType    string `json:"workplaceType"`
	Description      string `json:"description"` // html
	DescriptionPlain string `json:"descriptionPlain"`
}

func (s *Scraper) Fetch(ctx context.Context, src domain.Source) ([]domain.Posting, error) {
	slug := strings.TrimSpace(src.Param)
	if slug == "" {
		return nil, types.Unavailable(src, fmt.Errorf("empty lever slug"))
	}
	base := fmt.Sprintf("%s/v0/postings/%s", strings.TrimRight(s.BaseURL, "/"), url.PathEscape(slug))
	log := s.deps.Log().With(logger.String("source", src.Name))

	var out []domain.Posting
	for page := 0; page < s.deps.Pages(); page++ {
		u := fmt.Sprintf("%s?mode=json&skip=%d&limit=%d", base, page*pageSize, pageSize)

		var postings []leverPosting
		if err := s.deps.Client.GetJSON(ctx, u, &postings); err != nil {
			if page == 0 {
				return nil, types.Unavailable(src, fmt.Errorf("lever %q: %w", slug, err))
			}
			// Later pages failing keep what we have.
			log.Warn("lever page failed", logger.Int("page", page), logger.Error(err))
			break
		}

		for _, p := range postings {
			title := strings.TrimSpace(p.Text)
			if p.ID == "" || p.HostedURL == "" || title == "" {
				continue
			}
			desc := normalize.CleanText(p.DescriptionPlain)
			if desc == "" {
				desc = util.HTMLToText(p.Description)
			}
			loc := util.NormalizeLocation(p.Categories.Location)

			var postedAt *time.Time
			if p.CreatedAt > 0 {
				t := time.UnixMilli(p.CreatedAt).UTC()
				postedAt = &t
			}

			out = append(out, domain.Posting{
				Title:       title,
				Location:    loc,
				Link:        util.Canonicalize(p.HostedURL),
				Source:      src.Name,
				NativeID:    "lever:" + slug + ":" + p.ID,
				Description: desc,
				WorkMode:    util.InferWorkModeFromText(util.JoinNonEmpty(" ", loc, p.WorkplaceType), title, ""),
				PostedAt:    postedAt,
			})
		}
		if len(postings) < pageSize {
			break
		}
	}

	for i := range out {
		if out[i].Location != "" || s.deps.Classifier.TitleRejected(out[i].Title) {
			continue
		}
		if err := s.hydrate(ctx, &out[i]); err != nil {
			log.Debug("lever hydrate failed", logger.String("url", out[i].Link), logger.Error(err))
		}
	}

	return util.KeepRelevant(s.deps.Classifier, src, out, log), nil
}

// hydrate fills the location from the hosted posting page.
func (s *Scraper) hydrate(ctx context.Context, p *domain.Posting) error {
	body, err := s.deps.Client.Get(ctx, p.Link, "text/html")
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return err
	}

	candidates := []string{
		".posting-categories .location",
		"[itemprop='jobLocation']",
		"[data-qa='location']",
		".location",
	}
	for _, sel := range candidates {
		if t := normalize.CleanText(doc.Find(sel).First().Text()); t != "" {
			p.Location = util.NormalizeLocation(t)
			break
		}
	}
	if p.WorkMode == "Unknown" {
		p.WorkMode = util.InferWorkModeFromText(p.Location, p.Title, "")
	}
	return nil
}
