// Package config loads the jobalert configuration: a YAML file, optional
// .env files, and env-var overrides declared with `env` struct tags.
package config

import (
	"time"

	"jobalert/internal/domain"
	"jobalert/internal/logger"
)

type Config struct {
	App struct {
		DataDir       string        `yaml:"data_dir" env:"JOBALERT_DATA_DIR"`
		Workers       int           `yaml:"workers" env:"JOBALERT_WORKERS"`
		RunTimeout    time.Duration `yaml:"run_timeout" env:"JOBALERT_RUN_TIMEOUT"`
		SourceTimeout time.Duration `yaml:"source_timeout" env:"JOBALERT_SOURCE_TIMEOUT"`
		// SourcesFile is an optional companies list merged over Sources.
		SourcesFile string `yaml:"sources_file" env:"JOBALERT_SOURCES_FILE"`
	} `yaml:"app"`

	HTTP HTTP `yaml:"http"`

	Filters Filters `yaml:"filters"`

	Cache Cache `yaml:"cache"`

	Notify Notify `yaml:"notify"`

	Store struct {
		Enabled bool   `yaml:"enabled" env:"JOBALERT_STORE_ENABLED"`
		Path    string `yaml:"path" env:"JOBALERT_STORE_PATH"`
	} `yaml:"store"`

	Server struct {
		Addr     string        `yaml:"addr" env:"JOBALERT_SERVER_ADDR"`
		Interval time.Duration `yaml:"interval" env:"JOBALERT_INTERVAL"`
	} `yaml:"server"`

	Log logger.Config `yaml:"log"`

	Sources []domain.Source `yaml:"sources"`
}

type HTTP struct {
	Timeout     time.Duration `yaml:"timeout" env:"JOBALERT_HTTP_TIMEOUT"`
	MaxAttempts int           `yaml:"max_attempts" env:"JOBALERT_HTTP_MAX_ATTEMPTS"`
	Backoff     time.Duration `yaml:"backoff" env:"JOBALERT_HTTP_BACKOFF"`
	RatePerSec  float64       `yaml:"rate_per_sec" env:"JOBALERT_HTTP_RATE"`
	Burst       int           `yaml:"burst"`
	UserAgent   string        `yaml:"user_agent" env:"JOBALERT_USER_AGENT"`
	MaxPages    int           `yaml:"max_pages" env:"JOBALERT_MAX_PAGES"`
	// SkipDetailFetch stops the generic HTML adapter from reading each
	// linked page as the posting description.
	SkipDetailFetch bool `yaml:"skip_detail_fetch"`
	DetailWorkers   int  `yaml:"detail_workers"`
}

type Filters struct {
	Negative        []string `yaml:"negative"`
	Positive        []string `yaml:"positive"`
	Skills          []string `yaml:"skills"`
	MinSkillMatches int      `yaml:"min_skill_matches" env:"JOBALERT_MIN_SKILLS"`
}

type Cache struct {
	Backend   string        `yaml:"backend" env:"JOBALERT_CACHE_BACKEND"` // file | redis
	Path      string        `yaml:"path" env:"JOBALERT_CACHE_PATH"`
	Retention time.Duration `yaml:"retention" env:"JOBALERT_CACHE_RETENTION"`
	RedisURL  string        `yaml:"redis_url" env:"REDIS_URL"`
	RedisKey  string        `yaml:"redis_key"`
}

type Notify struct {
	SkipEmpty bool `yaml:"skip_empty" env:"JOBALERT_SKIP_EMPTY"`

	SendGrid struct {
		Enabled   bool     `yaml:"enabled" env:"SENDGRID_ENABLED"`
		APIKey    string   `yaml:"api_key" env:"SENDGRID_API_KEY"`
		Endpoint  string   `yaml:"endpoint"`
		From      string   `yaml:"from" env:"SENDER_EMAIL"`
		To        []string `yaml:"to" env:"RECIPIENT_EMAIL"`
		KeyringID string   `yaml:"keyring_account"`
	} `yaml:"sendgrid"`

	Telegram struct {
		Enabled   bool   `yaml:"enabled" env:"TELEGRAM_ENABLED"`
		Token     string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
		ChatID    int64  `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
		KeyringID string `yaml:"keyring_account"`
	} `yaml:"telegram"`

	Console struct {
		Enabled bool `yaml:"enabled" env:"JOBALERT_CONSOLE"`
	} `yaml:"console"`
}
