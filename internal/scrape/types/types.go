package types

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobalert/internal/domain"
)

// Fetcher is one provider adapter. Fetch returns postings that already
// passed classification; any failure comes back as *SourceUnavailableError.
type Fetcher interface {
	Kind() domain.ProviderKind
	Fetch(ctx context.Context, src domain.Source) ([]domain.Posting, error)
}

// ScrapeResult is what one source produced in a run.
type ScrapeResult struct {
	Source   domain.Source
	Postings []domain.Posting
	Err      error
	Elapsed  time.Duration
}

// ScrapeStatus is the last-run snapshot served in watch mode.
type ScrapeStatus struct {
	LastRunAt  string         `json:"last_run_at"`
	LastOkAt   string         `json:"last_ok_at"`
	LastError  string         `json:"last_error"`
	LastFresh  int            `json:"last_fresh"`
	PerSource  map[string]int `json:"per_source"`
	FailedRuns int            `json:"failed_runs"`
	Running    bool           `json:"running"`
}

var (
	ErrMalformed = errors.New("malformed response")
	ErrNoAdapter = errors.New("no adapter registered")
)

// SourceUnavailableError means a source produced nothing usable this run.
// It is never fatal to the run.
type SourceUnavailableError struct {
	Source string
	Kind   domain.ProviderKind
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s (%s) unavailable: %v", e.Source, e.Kind, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// Unavailable wraps err for src, leaving an existing SourceUnavailableError
// untouched.
func Unavailable(src domain.Source, err error) error {
	if err == nil {
		return nil
	}
	var sue *SourceUnavailableError
	if errors.As(err, &sue) {
		return err
	}
	return &SourceUnavailableError{Source: src.Name, Kind: src.Kind, Err: err}
}
