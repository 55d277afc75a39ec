package seen_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobalert/internal/domain"
	"jobalert/internal/seen"
)

const retention = 30 * 24 * time.Hour

func TestPrune_DropsOnlyExpired(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := seen.FromMap(map[string]int64{
		"Acme:old":    now.Add(-31 * 24 * time.Hour).Unix(),
		"Acme:recent": now.Add(-29 * 24 * time.Hour).Unix(),
	})

	removed := c.Prune(now, retention)
	assert.Equal(t, 1, removed)
	assert.False(t, c.Contains("Acme:old"))
	assert.True(t, c.Contains("Acme:recent"))
}

func TestPrune_KeepsKeysRecordedThisRun(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := seen.New()

	// A stale clock must not let a key surfaced in this run expire.
	c.Record("Acme:1", now.Add(-90*24*time.Hour))
	c.Record("Acme:2", now)

	assert.Zero(t, c.Prune(now, retention))
	assert.Equal(t, 2, c.Len())
	assert.Zero(t, c.Prune(now, 0))
	assert.Equal(t, 2, c.RecordedThisRun())
}

func TestRecord_RefreshesTimestamp(t *testing.T) {
	old := time.Unix(1000, 0)
	now := time.Unix(5000, 0)
	c := seen.FromMap(map[string]int64{"Acme:1": old.Unix()})
	require.True(t, c.Contains("Acme:1"))

	c.Record(domain.PostingKey("Acme:1"), now)
	assert.Equal(t, int64(5000), c.Snapshot()["Acme:1"])
}

func TestStats(t *testing.T) {
	c := seen.FromMap(map[string]int64{
		"Acme:1":   100,
		"Acme:2":   300,
		"Globex:9": 200,
	})
	st := c.Stats()
	assert.Equal(t, 3, st.Entries)
	assert.Equal(t, int64(100), st.Oldest.Unix())
	assert.Equal(t, int64(300), st.Newest.Unix())
	assert.Equal(t, []string{"Acme", "Globex"}, st.Sources())

	assert.Zero(t, seen.New().Stats().Entries)
}
