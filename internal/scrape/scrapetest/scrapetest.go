// Package scrapetest has helpers for adapter tests.
package scrapetest

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobalert/internal/classify"
	"jobalert/internal/config"
	"jobalert/internal/scrape/util"
)

// Classifier uses the default keyword lists.
func Classifier() *classify.Classifier {
	return classify.New(classify.Rules{
		Negative:        config.DefaultNegative,
		Positive:        config.DefaultPositive,
		Skills:          config.DefaultSkills,
		MinSkillMatches: 2,
	})
}

// Deps returns adapter deps with a fast-retrying client and no rate limit.
func Deps() util.Deps {
	return util.Deps{
		Client: util.NewClient(util.ClientOptions{
			Timeout:     2 * time.Second,
			MaxAttempts: 2,
			Backoff:     time.Millisecond,
			UserAgent:   "jobalert-test",
		}),
		Classifier: Classifier(),
		MaxPages:   3,
	}
}

// Server serves routes by exact path and 404s anything else. It is closed
// when the test ends.
func Server(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range routes {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// Body writes s with the given content type.
func Body(contentType, s string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(s))
	}
}

func Status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(code) }
}
