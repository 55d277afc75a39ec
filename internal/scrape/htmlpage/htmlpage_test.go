package htmlpage_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobalert/internal/domain"
	"jobalert/internal/scrape/htmlpage"
	"jobalert/internal/scrape/scrapetest"
)

// careersPage links to its own postings and to one posting hosted on an ATS
// board at atsURL.
func careersPage(atsURL string) string {
	return fmt.Sprintf(`<html><body>
<nav><a href="/">Home</a><a href="/privacy">Privacy policy</a><a href="https://twitter.com/acme">Follow us</a></nav>
<a href="/jobs/1">Senior Data Analyst</a>
<a href="/jobs/2">Data Analyst I</a>
<a href="/jobs/3">Operations Coordinator</a>
<a href="/jobs/4">Office Manager</a>
<a href="%s/acme/jobs/123">Business Analyst</a>
</body></html>`, atsURL)
}

func TestFetch_GenericCareersPage(t *testing.T) {
	var senior atomic.Int32
	ats := scrapetest.Server(t, map[string]http.HandlerFunc{
		"/acme/jobs/123": scrapetest.Body("text/html", `<html><body><h1>Business Analyst</h1><div class="location">Chicago, IL</div></body></html>`),
	})
	srv := scrapetest.Server(t, map[string]http.HandlerFunc{
		"/careers": scrapetest.Body("text/html", careersPage(ats.URL)),
		"/jobs/1": func(w http.ResponseWriter, r *http.Request) {
			senior.Add(1)
			scrapetest.Body("text/html", "<p>never fetched</p>")(w, r)
		},
		"/jobs/2": scrapetest.Body("text/html", `<html><body><h1>Data Analyst I</h1><div class="location">Austin, TX</div><p>Use SQL</p></body></html>`),
		"/jobs/3": scrapetest.Body("text/html", `<html><body><h1>Operations Coordinator</h1><p>Moving boxes</p></body></html>`),
	})
	src := domain.Source{Name: "Acme", Kind: domain.KindHTML, Param: srv.URL + "/careers"}

	got, err := htmlpage.New(scrapetest.Deps(), htmlpage.Options{}).Fetch(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Data Analyst I", got[0].Title)
	assert.Equal(t, srv.URL+"/jobs/2", got[0].Link)
	assert.Equal(t, "Austin, TX", got[0].Location)
	assert.Contains(t, got[0].Description, "Use SQL")
	assert.Zero(t, senior.Load(), "negative titles skip the detail fetch")

	assert.Equal(t, "Business Analyst", got[1].Title)
	assert.Equal(t, ats.URL+"/acme/jobs/123", got[1].Link)
	assert.Equal(t, "Chicago, IL", got[1].Location)
}

func TestFetch_SkipDetailUsesSourceLocation(t *testing.T) {
	srv := scrapetest.Server(t, map[string]http.HandlerFunc{
		"/careers": scrapetest.Body("text/html", careersPage("https://boards.greenhouse.io")),
	})
	src := domain.Source{Name: "Acme", Kind: domain.KindHTML, Param: srv.URL + "/careers", Location: "Boston, MA"}

	got, err := htmlpage.New(scrapetest.Deps(), htmlpage.Options{SkipDetailFetch: true}).Fetch(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Data Analyst I", got[0].Title)
	assert.Equal(t, "Boston, MA", got[0].Location)
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/123", got[1].Link)
}

func TestLinks_KeepsOffSiteBoards(t *testing.T) {
	page := `<html><body>
<a href="https://boards.greenhouse.io/acme/jobs/123">Data Analyst I</a>
<a href="https://jobs.lever.co/acme/abc">Business Analyst</a>
<a href="/careers/data-analyst-2">Data Analyst II</a>
<a href="https://www.linkedin.com/company/acme">LinkedIn</a>
<a href="/careers">Careers</a>
</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	got := htmlpage.Links(doc, domain.Source{Name: "Acme", Kind: domain.KindHTML, Param: "https://www.acme.com/careers"})
	links := make([]string, 0, len(got))
	for _, p := range got {
		links = append(links, p.Link)
	}
	assert.Equal(t, []string{
		"https://boards.greenhouse.io/acme/jobs/123",
		"https://jobs.lever.co/acme/abc",
		"https://www.acme.com/careers/data-analyst-2",
	}, links)
}

func TestFetch_PageDownIsUnavailable(t *testing.T) {
	srv := scrapetest.Server(t, map[string]http.HandlerFunc{
		"/careers": scrapetest.Status(http.StatusInternalServerError),
	})
	src := domain.Source{Name: "Acme", Kind: domain.KindHTML, Param: srv.URL + "/careers"}

	_, err := htmlpage.New(scrapetest.Deps(), htmlpage.Options{}).Fetch(context.Background(), src)
	require.Error(t, err)
}
