package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobalert/internal/config"
	"jobalert/internal/domain"
	"jobalert/internal/events"
	"jobalert/internal/httpapi"
	"jobalert/internal/logger"
	"jobalert/internal/metrics"
	"jobalert/internal/scrape/types"
	"jobalert/internal/store"
)

func newServer(t *testing.T, mutate func(*httpapi.Deps)) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Notify.SendGrid.APIKey = "SG.secret"

	cfgVal := &atomic.Value{}
	cfgVal.Store(cfg)
	status := &atomic.Value{}
	status.Store(types.ScrapeStatus{LastFresh: 4, PerSource: map[string]int{"Acme": 4}})

	d := httpapi.Deps{
		Hub:          events.NewHub(),
		CfgVal:       cfgVal,
		ScrapeStatus: status,
		Logger:       logger.NewNop(),
	}
	if mutate != nil {
		mutate(&d)
	}
	srv := httptest.NewServer(httpapi.NewHandler(d))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestHealth_SetsRequestID(t *testing.T) {
	srv := newServer(t, nil)

	var body map[string]any
	resp := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestStatus(t *testing.T) {
	srv := newServer(t, nil)

	var st types.ScrapeStatus
	getJSON(t, srv.URL+"/status", &st)
	assert.Equal(t, 4, st.LastFresh)
	assert.Equal(t, map[string]int{"Acme": 4}, st.PerSource)
}

func TestConfig_RedactsSecrets(t *testing.T) {
	srv := newServer(t, nil)

	var cfg config.Config
	getJSON(t, srv.URL+"/config", &cfg)
	assert.Equal(t, "********", cfg.Notify.SendGrid.APIKey)
	assert.NotEmpty(t, cfg.Sources)
}

func TestRun_TriggersAndRejectsWhileRunning(t *testing.T) {
	called := make(chan struct{}, 1)
	var status *atomic.Value
	srv := newServer(t, func(d *httpapi.Deps) {
		status = d.ScrapeStatus
		d.RunNow = func(context.Context) error {
			called <- struct{}{}
			return nil
		}
	})

	resp, err := http.Post(srv.URL+"/run", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("RunNow not called")
	}

	status.Store(types.ScrapeStatus{Running: true})
	resp, err = http.Post(srv.URL+"/run", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRun_MethodNotAllowed(t *testing.T) {
	srv := newServer(t, nil)

	var apiErr httpapi.APIError
	resp := getJSON(t, srv.URL+"/run", &apiErr)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, httpapi.CodeMethodNotAllowed, apiErr.Error.Code)
	assert.Equal(t, resp.Header.Get("X-Request-ID"), apiErr.Error.RequestID)
}

func TestWriteJSON_UnencodableIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	httpapi.WriteJSON(rec, http.StatusOK, map[string]any{"ch": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEqual(t, "application/json", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	httpapi.WriteJSON(rec, http.StatusCreated, map[string]int{"n": 1})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}

func TestRuns(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "jobalert.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	id, err := db.RecordRun(context.Background(), store.Run{StartedAt: now, FinishedAt: now, Fresh: 1},
		[]domain.Posting{{Source: "Acme", NativeID: "7", Title: "Data Analyst"}})
	require.NoError(t, err)

	srv := newServer(t, func(d *httpapi.Deps) { d.History = db })

	var runs []store.Run
	getJSON(t, srv.URL+"/runs?limit=5", &runs)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)

	var ps []store.NotifiedPosting
	getJSON(t, srv.URL+"/runs/"+strconv.FormatInt(id, 10)+"/postings", &ps)
	require.Len(t, ps, 1)
	assert.Equal(t, "Acme:7", ps[0].Key)

	resp := getJSON(t, srv.URL+"/runs/abc/postings", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRuns_AbsentWithoutHistory(t *testing.T) {
	srv := newServer(t, nil)
	resp := getJSON(t, srv.URL+"/runs", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	m.ObserveRun(metrics.OutcomeOK, 3, time.Second, time.Now())
	srv := newServer(t, func(d *httpapi.Deps) { d.Metrics = m.Handler() })

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEvents_StreamsPing(t *testing.T) {
	srv := newServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), `"type":"ping"`)
}
