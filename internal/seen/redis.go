package seen

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"jobalert/internal/logger"
)

var ErrEmptyRedisURL = errors.New("redis url is required")

// ErrLockLost means the lock expired or was taken over while the store was
// open. Saving is refused from then on.
var ErrLockLost = errors.New("seen cache lock lost")

const (
	connectionTimeout = 5 * time.Second
	DefaultLockTTL    = 30 * time.Minute
)

var (
	refreshScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)
	unlockScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)
)

// RedisStore keeps the cache as one hash of key -> unix ts. A SETNX lock on
// <key>:lock stands in for the file lock; it is extended every ttl/3 for as
// long as the store is open.
type RedisStore struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
	log    logger.Logger

	lost      atomic.Bool
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func OpenRedis(ctx context.Context, rawURL, key string, log logger.Logger) (*RedisStore, error) {
	return OpenRedisTTL(ctx, rawURL, key, DefaultLockTTL, log)
}

// OpenRedisTTL is OpenRedis with a custom lock TTL.
func OpenRedisTTL(ctx context.Context, rawURL, key string, ttl time.Duration, log logger.Logger) (*RedisStore, error) {
	if rawURL == "" {
		return nil, ErrEmptyRedisURL
	}
	if log == nil {
		log = logger.NewNop()
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("seen: redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pctx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	s := &RedisStore{
		client: client,
		key:    key,
		token:  uuid.New().String(),
		ttl:    ttl,
		log:    log,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	ok, err := client.SetNX(ctx, s.lockKey(), s.token, ttl).Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("seen: redis lock: %w", err)
	}
	if !ok {
		client.Close()
		return nil, fmt.Errorf("%w: %s", ErrCacheLocked, s.lockKey())
	}
	go s.keepLock()
	return s, nil
}

func (s *RedisStore) lockKey() string { return s.key + ":lock" }

func (s *RedisStore) keepLock() {
	defer close(s.done)
	t := time.NewTicker(s.ttl / 3)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			held, err := s.refreshLock()
			if err != nil {
				// Retried on the next tick.
				s.log.Warn("seen cache lock refresh failed", logger.String("key", s.lockKey()), logger.Error(err))
				continue
			}
			if !held {
				s.lost.Store(true)
				s.log.Error("seen cache lock lost", logger.String("key", s.lockKey()))
				return
			}
		}
	}
}

func (s *RedisStore) refreshLock() (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	n, err := refreshScript.Run(ctx, s.client, []string{s.lockKey()}, s.token, s.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Load reads the hash. Values that are not integers make the whole cache
// corrupt, matching the file backend.
func (s *RedisStore) Load(ctx context.Context) (*Cache, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("seen: redis load: %w", err)
	}
	m := make(map[string]int64, len(raw))
	for k, v := range raw {
		ts, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return New(), fmt.Errorf("%w: redis %s field %q: %v", ErrCacheCorrupt, s.key, k, err)
		}
		m[k] = ts
	}
	return FromMap(m), nil
}

// Save replaces the hash in one transaction.
func (s *RedisStore) Save(ctx context.Context, c *Cache) error {
	if s.lost.Load() {
		return fmt.Errorf("seen: redis save: %w: %s", ErrLockLost, s.lockKey())
	}
	snap := c.Snapshot()
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.key)
		if len(snap) == 0 {
			return nil
		}
		vals := make(map[string]any, len(snap))
		for k, ts := range snap {
			vals[k] = ts
		}
		p.HSet(ctx, s.key, vals)
		return nil
	})
	if err != nil {
		return fmt.Errorf("seen: redis save: %w", err)
	}
	s.log.Debug("seen cache saved", logger.String("key", s.key), logger.Int("entries", len(snap)))
	return nil
}

// Close stops the refresher and releases the lock if this store still
// holds it. Calling it again returns the first result.
func (s *RedisStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done

		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		defer cancel()
		_, err := unlockScript.Run(ctx, s.client, []string{s.lockKey()}, s.token).Result()
		cerr := s.client.Close()
		if err != nil {
			s.closeErr = fmt.Errorf("seen: redis unlock: %w", err)
			return
		}
		s.closeErr = cerr
	})
	return s.closeErr
}
