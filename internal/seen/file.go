package seen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"jobalert/internal/logger"
)

// ErrCacheLocked means another process holds the cache file.
var ErrCacheLocked = errors.New("seen cache locked by another run")

const lockRetry = 200 * time.Millisecond

// FileStore keeps the cache as a JSON object {key: unix_ts}. An exclusive
// lock on <path>.lock is held from OpenFile to Close so overlapping runs
// cannot interleave load and save.
type FileStore struct {
	path string
	lock *flock.Flock
	log  logger.Logger
}

// OpenFile locks path, waiting until ctx is done.
func OpenFile(ctx context.Context, path string, log logger.Logger) (*FileStore, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("seen: mkdir: %w", err)
	}
	lk := flock.New(path + ".lock")
	ok, err := lk.TryLockContext(ctx, lockRetry)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", ErrCacheLocked, path)
		}
		return nil, fmt.Errorf("seen: lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheLocked, path)
	}
	return &FileStore{path: path, lock: lk, log: log}, nil
}

func (s *FileStore) Path() string { return s.path }

// Load reads the cache. A missing file is an empty cache. An unreadable
// one is an empty cache plus an error wrapping ErrCacheCorrupt.
func (s *FileStore) Load(_ context.Context) (*Cache, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return New(), fmt.Errorf("%w: read %s: %v", ErrCacheCorrupt, s.path, err)
	}
	if len(b) == 0 {
		return New(), nil
	}
	var m map[string]int64
	if err := json.Unmarshal(b, &m); err != nil {
		return New(), fmt.Errorf("%w: %s: %v", ErrCacheCorrupt, s.path, err)
	}
	return FromMap(m), nil
}

// Save writes the cache atomically: temp file in the same directory, then
// rename over the old one.
func (s *FileStore) Save(_ context.Context, c *Cache) error {
	b, err := json.MarshalIndent(c.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("seen: encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("seen: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("seen: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("seen: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("seen: close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("seen: rename: %w", err)
	}
	s.log.Debug("seen cache saved", logger.String("path", s.path), logger.Int("entries", c.Len()))
	return nil
}

func (s *FileStore) Close() error {
	return s.lock.Unlock()
}
