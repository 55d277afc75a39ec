package board_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobalert/internal/domain"
	"jobalert/internal/scrape/board"
	"jobalert/internal/scrape/scrapetest"
)

const boardHTML = `<html><body>
<ul class="openings">
  <li class="opening"><a class="title" href="/jobs/1">Data Analyst</a><span class="loc">Denver, CO</span></li>
  <li class="opening"><a class="title" href="/jobs/2">Senior Data Analyst</a><span class="loc">Denver, CO</span></li>
  <li class="opening"><a class="title" href="/jobs/3">BI Analyst</a><span class="loc">Toronto, Canada</span></li>
  <li class="opening"><a class="title" href="/jobs/1#apply">Data Analyst</a><span class="loc">Denver, CO</span></li>
  <li class="opening"><span class="title">Research Analyst</span></li>
</ul>
</body></html>`

func TestFetch_AppliesSelectors(t *testing.T) {
	srv := scrapetest.Server(t, map[string]http.HandlerFunc{
		"/careers": scrapetest.Body("text/html", boardHTML),
	})
	src := domain.Source{
		Name:  "Initech",
		Kind:  domain.KindBoard,
		Param: srv.URL + "/careers",
		Selectors: &domain.Selectors{
			Item:     "li.opening",
			Title:    ".title",
			Link:     "a.title",
			Location: ".loc",
		},
	}

	got, err := board.New(scrapetest.Deps()).Fetch(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Data Analyst", got[0].Title)
	assert.Equal(t, srv.URL+"/jobs/1", got[0].Link)
	assert.Equal(t, "Denver, CO", got[0].Location)
	assert.Equal(t, "Initech", got[0].Source)
}

func TestExtract_DefaultsToItemAnchor(t *testing.T) {
	srv := scrapetest.Server(t, map[string]http.HandlerFunc{
		"/": scrapetest.Body("text/html", `<div><a class="job" href="/a">Product Analyst</a><a class="job" href="/b">Marketing Analyst</a></div>`),
	})
	src := domain.Source{Name: "X", Kind: domain.KindBoard, Param: srv.URL + "/", Selectors: &domain.Selectors{Item: "a.job"}}

	got, err := board.New(scrapetest.Deps()).Fetch(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, srv.URL+"/a", got[0].Link)
	assert.Equal(t, "Marketing Analyst", got[1].Title)
}

func TestFetch_MissingSelectors(t *testing.T) {
	_, err := board.New(scrapetest.Deps()).Fetch(context.Background(), domain.Source{Name: "X", Kind: domain.KindBoard, Param: "http://example.invalid"})
	assert.True(t, errors.Is(err, board.ErrNoSelectors))
}
