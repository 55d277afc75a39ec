package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobalert/internal/domain"
)

// Run is one orchestrator pass as recorded in history.
type Run struct {
	ID            int64          `json:"id"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	Fresh         int            `json:"fresh"`
	Sources       int            `json:"sources"`
	FailedSources []string       `json:"failed_sources"`
	PerSource     map[string]int `json:"per_source"`
	NotifyError   string         `json:"notify_error,omitempty"`
}

// NotifiedPosting is a posting some run put in its digest.
type NotifiedPosting struct {
	RunID    int64  `json:"run_id"`
	Key      string `json:"key"`
	Source   string `json:"source"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Link     string `json:"link"`
	WorkMode string `json:"work_mode"`
}

// RecordRun stores r and its notified postings in one transaction and
// returns the run id.
func (d *DB) RecordRun(ctx context.Context, r Run, postings []domain.Posting) (int64, error) {
	failed, _ := json.Marshal(nonNil(r.FailedSources))
	per, _ := json.Marshal(r.PerSource)

	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
INSERT INTO runs(started_at, finished_at, fresh, sources, failed_sources, per_source, notify_error)
VALUES(?,?,?,?,?,?,?);`,
		r.StartedAt.UTC().Format(time.RFC3339),
		r.FinishedAt.UTC().Format(time.RFC3339),
		r.Fresh, r.Sources, string(failed), string(per), r.NotifyError,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO notified(run_id, posting_key, source, title, location, link, work_mode)
VALUES(?,?,?,?,?,?,?);`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, p := range postings {
		if _, err := stmt.ExecContext(ctx, id, string(p.Key()), p.Source, p.Title, p.Location, p.Link, p.WorkMode); err != nil {
			return 0, fmt.Errorf("insert notified: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, started_at, finished_at, fresh, sources, failed_sources, per_source, notify_error
FROM runs
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished, failed, per string
		if err := rows.Scan(&r.ID, &started, &finished, &r.Fresh, &r.Sources, &failed, &per, &r.NotifyError); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		_ = json.Unmarshal([]byte(failed), &r.FailedSources)
		_ = json.Unmarshal([]byte(per), &r.PerSource)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Notified lists the postings a run notified, in insertion order.
func (d *DB) Notified(ctx context.Context, runID int64) ([]NotifiedPosting, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT run_id, posting_key, source, title, location, link, work_mode
FROM notified
WHERE run_id = ?
ORDER BY id;`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NotifiedPosting
	for rows.Next() {
		var p NotifiedPosting
		if err := rows.Scan(&p.RunID, &p.Key, &p.Source, &p.Title, &p.Location, &p.Link, &p.WorkMode); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CleanupOld deletes runs (and their postings) that started before
// now-olderThan.
func (d *DB) CleanupOld(ctx context.Context, now time.Time, olderThan time.Duration) (deleted int64, err error) {
	cutoff := now.Add(-olderThan).UTC().Format(time.RFC3339)

	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
DELETE FROM notified WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?);`, cutoff); err != nil {
		return 0, fmt.Errorf("cleanup notified: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
