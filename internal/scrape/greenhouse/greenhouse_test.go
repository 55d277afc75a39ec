package greenhouse_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobalert/internal/domain"
	"jobalert/internal/scrape/greenhouse"
	"jobalert/internal/scrape/scrapetest"
	"jobalert/internal/scrape/types"
)

const boardJSON = `{
  "jobs": [
    {"id": 101, "title": "Data Analyst", "absolute_url": "https://boards.greenhouse.io/acme/jobs/101?gh_src=abc",
     "updated_at": "2024-03-01T10:00:00-05:00", "location": {"name": "New York, NY"},
     "content": "&lt;p&gt;SQL and Python&lt;/p&gt;"},
    {"id": 102, "title": "Senior Data Analyst", "absolute_url": "https://boards.greenhouse.io/acme/jobs/102",
     "location": {"name": "New York, NY"}, "content": ""},
    {"id": 103, "title": "Operations Associate", "absolute_url": "https://boards.greenhouse.io/acme/jobs/103",
     "location": {"name": "Austin, TX"}, "content": "&lt;p&gt;SQL, Tableau and Excel daily&lt;/p&gt;"},
    {"id": 104, "title": "Data Analyst", "absolute_url": "https://boards.greenhouse.io/acme/jobs/104",
     "location": {"name": "London, UK"}, "content": ""}
  ],
  "meta": {"total": 4}
}`

func TestFetch_ClassifiesBoard(t *testing.T) {
	srv := scrapetest.Server(t, map[string]http.HandlerFunc{
		"/v1/boards/acme/jobs": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "true", r.URL.Query().Get("content"))
			scrapetest.Body("application/json", boardJSON)(w, r)
		},
	})
	s := greenhouse.New(scrapetest.Deps())
	s.BaseURL = srv.URL

	src := domain.Source{Name: "Acme", Kind: domain.KindGreenhouse, Param: "acme"}
	got, err := s.Fetch(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Data Analyst", got[0].Title)
	assert.Equal(t, "New York, NY", got[0].Location)
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/101", got[0].Link)
	assert.Equal(t, "greenhouse:acme:101", got[0].NativeID)
	assert.Equal(t, "Acme", got[0].Source)
	assert.Equal(t, "SQL and Python", got[0].Description)
	require.NotNil(t, got[0].PostedAt)

	// Kept on skills alone.
	assert.Equal(t, "Operations Associate", got[1].Title)
}

func TestFetch_UnknownBoardIsUnavailable(t *testing.T) {
	srv := scrapetest.Server(t, nil)
	s := greenhouse.New(scrapetest.Deps())
	s.BaseURL = srv.URL

	_, err := s.Fetch(context.Background(), domain.Source{Name: "Nope", Kind: domain.KindGreenhouse, Param: "nope"})
	var sue *types.SourceUnavailableError
	require.True(t, errors.As(err, &sue))
	assert.Equal(t, "Nope", sue.Source)
}
