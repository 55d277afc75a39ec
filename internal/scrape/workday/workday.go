// Package workday reads Workday candidate-experience boards. Param is the
// full public board URL, e.g. https://acme.wd5.myworkdayjobs.com/en-US/External.
package workday

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"jobalert/internal/domain"
	"jobalert/internal/logger"
	"jobalert/internal/scrape/types"
	"jobalert/internal/scrape/util"
)

const pageSize = 20

var ErrWorkdayBlocked = errors.New("workday blocked by cloudflare")

type Scraper struct {
	deps util.Deps

	mu          sync.Mutex
	blockedHost map[string]bool
}

func New(deps util.Deps) *Scraper {
	return &Scraper{deps: deps, blockedHost: map[string]bool{}}
}

func (s *Scraper) Kind() domain.ProviderKind { return domain.KindWorkday }

type board struct {
	Scheme string
	Host   string
	Tenant string
	Site   string
	Locale string
}

type wdRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type wdResponse struct {
	Total       int         `json:"total"`
	JobPostings []wdPosting `json:"jobPostings"`
}

type wdPosting struct {
	Title         string   `json:"title"`
	ExternalPath  string   `json:"externalPath"`
	LocationsText string   `json:"locationsText"`
	PostedOn      string   `json:"postedOn"`
	BulletFields  []string `json:"bulletFields"`
}

func (s *Scraper) Fetch(ctx context.Context, src domain.Source) ([]domain.Posting, error) {
	b, err := parseBoardURL(src.Param)
	if err != nil {
		return nil, types.Unavailable(src, err)
	}
	if s.isBlocked(b.Host) {
		return nil, types.Unavailable(src, ErrWorkdayBlocked)
	}
	log := s.deps.Log().With(logger.String("source", src.Name))

	// Per-board cookie jar so the session and CSRF token persist.
	jar, _ := cookiejar.New(nil)
	hc := s.deps.Client.WithJar(jar)

	csrf, err := bootstrapSession(ctx, hc, jar, src.Param)
	if errors.Is(err, ErrWorkdayBlocked) {
		s.markBlocked(b.Host)
		return nil, types.Unavailable(src, err)
	}
	if err != nil {
		// Many tenants answer without a token.
		log.Debug("workday bootstrap", logger.Error(err))
	}

	headers := map[string]string{
		"Origin":          b.origin(),
		"Referer":         strings.TrimRight(src.Param, "/"),
		"Accept-Language": util.FirstNonEmpty(b.Locale, "en-US"),
	}
	if csrf != "" {
		headers["x-calypso-csrf-token"] = csrf
	}

	var out []domain.Posting
	for page := 0; page < s.deps.Pages(); page++ {
		req := wdRequest{AppliedFacets: map[string]any{}, Limit: pageSize, Offset: page * pageSize}
		var jr wdResponse
		if err := hc.PostJSON(ctx, b.jobsEndpoint(), req, headers, &jr); err != nil {
			if page == 0 {
				return nil, types.Unavailable(src, fmt.Errorf("workday %s/%s: %w", b.Tenant, b.Site, err))
			}
			log.Warn("workday page failed", logger.Int("page", page), logger.Error(err))
			break
		}
		if len(jr.JobPostings) == 0 {
			break
		}

		for _, p := range jr.JobPostings {
			title := strings.TrimSpace(p.Title)
			jobURL := b.absoluteJobURL(p.ExternalPath)
			if title == "" || jobURL == "" {
				continue
			}
			loc := util.NormalizeLocation(p.LocationsText)

			jobID := ""
			if len(p.BulletFields) > 0 {
				jobID = strings.TrimSpace(p.BulletFields[0])
			}
			if jobID == "" {
				jobID = util.HashString("url:" + jobURL)
			}

			out = append(out, domain.Posting{
				Title:    title,
				Location: loc,
				Link:     jobURL,
				Source:   src.Name,
				NativeID: fmt.Sprintf("workday:%s:%s:%s", b.Tenant, b.Site, jobID),
				WorkMode: util.InferWorkModeFromText(loc, title, ""),
				PostedAt: parsePostedOn(p.PostedOn, time.Now()),
			})
		}

		if jr.Total > 0 && (page+1)*pageSize >= jr.Total {
			break
		}
	}

	return util.KeepRelevant(s.deps.Classifier, src, out, log), nil
}

func (s *Scraper) isBlocked(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blockedHost[host]
}

func (s *Scraper) markBlocked(host string) {
	s.mu.Lock()
	s.blockedHost[host] = true
	s.mu.Unlock()
}

func parseBoardURL(raw string) (board, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return board{}, errors.New("empty board url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return board{}, err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Host == "" {
		return board{}, fmt.Errorf("missing host in %q", raw)
	}

	parts := strings.Split(u.Host, ".")
	if len(parts) < 3 {
		return board{}, fmt.Errorf("unexpected host %q", u.Host)
	}
	tenant := parts[0]

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return board{}, fmt.Errorf("unexpected path %q", u.Path)
	}

	// Detect locale like "en-US" (case-insensitive)
	locale := ""
	if len(segs) >= 2 && looksLikeLocale(segs[0]) {
		locale = normalizeLocale(segs[0])
		segs = segs[1:]
	}

	return board{
		Scheme: u.Scheme,
		Host:   u.Host,
		Tenant: tenant,
		Site:   segs[len(segs)-1],
		Locale: locale,
	}, nil
}

func looksLikeLocale(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != '-' {
		return false
	}
	return isAlpha(s[0:2]) && isAlpha(s[3:5])
}

func normalizeLocale(s string) string {
	return strings.ToLower(s[0:2]) + "-" + strings.ToUpper(s[3:5])
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return true
}

func (b board) origin() string { return b.Scheme + "://" + b.Host }

func (b board) jobsEndpoint() string {
	base := fmt.Sprintf("%s/wday/cxs/%s/%s/jobs", b.origin(), b.Tenant, b.Site)
	if b.Locale == "" {
		return base
	}
	return base + "?locale=" + url.QueryEscape(b.Locale)
}

func (b board) absoluteJobURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	site := "/" + b.Site
	if b.Locale != "" {
		site = "/" + b.Locale + site
	}
	return b.origin() + site + path
}

// bootstrapSession loads the public board so the jar picks up the session
// cookies, and returns the CSRF token if the tenant issued one.
func bootstrapSession(ctx context.Context, hc *util.Client, jar http.CookieJar, boardURL string) (string, error) {
	body, err := hc.Get(ctx, boardURL, "text/html,application/xhtml+xml")
	if err != nil {
		var se *util.StatusError
		if errors.As(err, &se) && (se.Code == http.StatusForbidden || se.Code == http.StatusTooManyRequests) {
			return "", ErrWorkdayBlocked
		}
		return "", err
	}
	if looksLikeCloudflareBlock(body) {
		return "", ErrWorkdayBlocked
	}

	u, err := url.Parse(boardURL)
	if err != nil {
		return "", err
	}
	for _, c := range jar.Cookies(u) {
		if c.Name == "CALYPSO_CSRF_TOKEN" && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", errors.New("no CALYPSO_CSRF_TOKEN cookie")
}

func looksLikeCloudflareBlock(body []byte) bool {
	n := len(body)
	if n > 4096 {
		n = 4096
	}
	low := strings.ToLower(string(body[:n]))
	return strings.Contains(low, "/cdn-cgi/challenge") ||
		(strings.Contains(low, "cloudflare") && strings.Contains(low, "checking your browser")) ||
		(strings.Contains(low, "attention required") && strings.Contains(low, "cloudflare"))
}

// parsePostedOn reads Workday's relative labels ("Posted Today",
// "Posted 3 Days Ago", "Posted 30+ Days Ago").
func parsePostedOn(s string, now time.Time) *time.Time {
	l := strings.ToLower(strings.TrimSpace(s))
	if l == "" {
		return nil
	}
	var days int
	switch {
	case strings.Contains(l, "today"):
		days = 0
	case strings.Contains(l, "yesterday"):
		days = 1
	default:
		f := strings.Fields(strings.TrimPrefix(l, "posted "))
		if len(f) == 0 {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSuffix(f[0], "+"))
		if err != nil {
			return nil
		}
		days = n
	}
	t := now.UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour)
	return &t
}
