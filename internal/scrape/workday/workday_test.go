package workday

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobalert/internal/domain"
	"jobalert/internal/scrape/scrapetest"
	"jobalert/internal/scrape/types"
)

func TestParseBoardURL(t *testing.T) {
	b, err := parseBoardURL("https://acme.wd5.myworkdayjobs.com/en-us/External/")
	require.NoError(t, err)
	assert.Equal(t, "acme", b.Tenant)
	assert.Equal(t, "External", b.Site)
	assert.Equal(t, "en-US", b.Locale)
	assert.Equal(t, "https://acme.wd5.myworkdayjobs.com/wday/cxs/acme/External/jobs?locale=en-US", b.jobsEndpoint())
	assert.Equal(t, "https://acme.wd5.myworkdayjobs.com/en-US/External/job/Austin/Data-Analyst_R1", b.absoluteJobURL("/job/Austin/Data-Analyst_R1"))

	_, err = parseBoardURL("https://localhost/External")
	assert.Error(t, err)
}

func TestParsePostedOn(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-10", parsePostedOn("Posted Today", now).Format("2006-01-02"))
	assert.Equal(t, "2024-06-09", parsePostedOn("Posted Yesterday", now).Format("2006-01-02"))
	assert.Equal(t, "2024-05-11", parsePostedOn("Posted 30+ Days Ago", now).Format("2006-01-02"))
	assert.Nil(t, parsePostedOn("", now))
	assert.Nil(t, parsePostedOn("whenever", now))
}

func TestFetch_BootstrapsCSRFAndPaginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en-US/External", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "CALYPSO_CSRF_TOKEN", Value: "tok", Path: "/"})
		_, _ = w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/wday/cxs/127/External/jobs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "tok", r.Header.Get("x-calypso-csrf-token"))

		var req wdRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := wdResponse{Total: 21}
		if req.Offset == 0 {
			resp.JobPostings = []wdPosting{
				{Title: "Data Analyst", ExternalPath: "/job/Austin-TX/Data-Analyst_R1", LocationsText: "Austin, TX", BulletFields: []string{"R1"}, PostedOn: "Posted Today"},
				{Title: "Lead Data Analyst", ExternalPath: "/job/Austin-TX/Lead_R2", LocationsText: "Austin, TX", BulletFields: []string{"R2"}},
			}
		} else {
			resp.JobPostings = []wdPosting{
				{Title: "Reporting Analyst", ExternalPath: "/job/Remote/Reporting_R3", LocationsText: "Remote - USA"},
			}
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := New(scrapetest.Deps())
	src := domain.Source{Name: "Acme", Kind: domain.KindWorkday, Param: srv.URL + "/en-US/External"}
	got, err := s.Fetch(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "workday:127:External:R1", got[0].NativeID)
	assert.Equal(t, srv.URL+"/en-US/External/job/Austin-TX/Data-Analyst_R1", got[0].Link)
	assert.Equal(t, "Reporting Analyst", got[1].Title)
	assert.Contains(t, got[1].NativeID, "workday:127:External:")
}

func TestFetch_ForbiddenMarksHostBlocked(t *testing.T) {
	srv := scrapetest.Server(t, map[string]http.HandlerFunc{
		"/en-US/External": scrapetest.Status(http.StatusForbidden),
	})
	s := New(scrapetest.Deps())
	src := domain.Source{Name: "Acme", Kind: domain.KindWorkday, Param: srv.URL + "/en-US/External"}

	_, err := s.Fetch(context.Background(), src)
	require.ErrorIs(t, err, ErrWorkdayBlocked)
	var sue *types.SourceUnavailableError
	assert.True(t, errors.As(err, &sue))

	// Second source on the same host short-circuits.
	_, err = s.Fetch(context.Background(), src)
	require.ErrorIs(t, err, ErrWorkdayBlocked)
}
