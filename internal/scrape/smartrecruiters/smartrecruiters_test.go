package smartrecruiters_test

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobalert/internal/domain"
	"jobalert/internal/scrape/scrapetest"
	"jobalert/internal/scrape/smartrecruiters"
)

func TestFetch_StopsAtTotalFound(t *testing.T) {
	var calls atomic.Int32
	srv := scrapetest.Server(t, map[string]http.HandlerFunc{
		"/v1/companies/Visa/postings": func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			scrapetest.Body("application/json", `{"totalFound": 3, "offset": 0, "limit": 100, "content": [
				{"id": "1", "name": "Data Analyst", "releasedDate": "2024-05-01T12:00:00.000Z",
				 "location": {"city": "Austin", "region": "TX", "country": "us"}},
				{"id": "2", "name": "Staff Data Analyst", "location": {"city": "Austin", "region": "TX", "country": "us"}},
				{"id": "3", "name": "Product Analyst", "location": {"city": "Warsaw", "country": "pl", "remote": true}}
			]}`)(w, r)
		},
	})
	s := smartrecruiters.New(scrapetest.Deps())
	s.BaseURL = srv.URL

	got, err := s.Fetch(context.Background(), domain.Source{Name: "Visa", Kind: domain.KindSmartRecruiters, Param: "Visa"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())
	require.Len(t, got, 1)

	assert.Equal(t, "Data Analyst", got[0].Title)
	assert.Equal(t, "Austin, TX, US", got[0].Location)
	assert.Equal(t, "https://jobs.smartrecruiters.com/Visa/1", got[0].Link)
	assert.Equal(t, "smartrecruiters:Visa:1", got[0].NativeID)
}

func TestFetch_PageCap(t *testing.T) {
	var calls atomic.Int32
	srv := scrapetest.Server(t, map[string]http.HandlerFunc{
		"/v1/companies/big/postings": func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
			items := make([]string, 0, 100)
			for i := 0; i < 100; i++ {
				items = append(items, fmt.Sprintf(`{"id":"%d","name":"Data Analyst","location":{"city":"Boston","region":"MA"}}`, offset+i))
			}
			scrapetest.Body("application/json", `{"totalFound": 10000, "content": [`+strings.Join(items, ",")+`]}`)(w, r)
		},
	})
	s := smartrecruiters.New(scrapetest.Deps())
	s.BaseURL = srv.URL

	got, err := s.Fetch(context.Background(), domain.Source{Name: "Big", Kind: domain.KindSmartRecruiters, Param: "big"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
	assert.Len(t, got, 300)
}
