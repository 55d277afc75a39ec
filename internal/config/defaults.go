package config

import (
	"path/filepath"
	"time"

	"jobalert/internal/domain"
)

// Role keywords a title must carry (one is enough).
var DefaultPositive = []string{
	"data analyst", "business analyst", "analytics", "bi analyst", "product analyst",
	"reporting analyst", "research analyst", "marketing analyst",
}

// Seniority and role-exclusion terms. A title containing any of them is
// rejected before anything else is looked at.
var DefaultNegative = []string{
	"senior", "sr", "lead", "manager", "director", "principal", "staff",
	"architect", "engineer", "head of", "vp", "intern", "internship",
}

var DefaultSkills = []string{
	"sql", "python", "r", "excel", "tableau", "power bi", "looker", "dashboard",
	"data visualization", "etl", "bigquery", "snowflake", "data wrangling",
	"pandas", "numpy", "statistics", "predictive modeling", "regression", "ab testing",
}

// DefaultSources is used when no config file exists: one board per adapter
// family that needs no credentials.
func DefaultSources() []domain.Source {
	return []domain.Source{
		{Name: "Airbnb", Kind: domain.KindGreenhouse, Param: "airbnb"},
		{Name: "Robinhood", Kind: domain.KindGreenhouse, Param: "robinhood"},
		{Name: "Palantir", Kind: domain.KindLever, Param: "palantir"},
		{Name: "Visa", Kind: domain.KindSmartRecruiters, Param: "Visa"},
		{Name: "Amazon", Kind: domain.KindAmazon, Param: "data analyst", Location: "United States"},
		{Name: "Google", Kind: domain.KindGoogle, Param: "data analyst", Location: "United States"},
	}
}

const (
	DefaultWorkers       = 4
	DefaultRunTimeout    = 10 * time.Minute
	DefaultSourceTimeout = 2 * time.Minute
	DefaultHTTPTimeout   = 15 * time.Second
	DefaultMaxAttempts   = 3
	DefaultBackoff       = 2 * time.Second
	DefaultMaxPages      = 3
	DefaultRetention     = 30 * 24 * time.Hour
	DefaultUserAgent     = "jobalert/1.0 (+https://github.com/jobalert)"
	DefaultServerAddr    = "127.0.0.1:38471"
	DefaultInterval      = 6 * time.Hour
	DefaultSendGridURL   = "https://api.sendgrid.com/v3/mail/send"
)

// Default returns a complete config with the built-in source list.
func Default() Config {
	var cfg Config
	cfg.Sources = DefaultSources()
	cfg.Notify.Console.Enabled = true
	SetDefaults(&cfg)
	return cfg
}

// SetDefaults fills every zero value that has a sensible default.
func SetDefaults(cfg *Config) {
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = "."
	}
	if cfg.App.Workers <= 0 {
		cfg.App.Workers = DefaultWorkers
	}
	if cfg.App.RunTimeout <= 0 {
		cfg.App.RunTimeout = DefaultRunTimeout
	}
	if cfg.App.SourceTimeout <= 0 {
		cfg.App.SourceTimeout = DefaultSourceTimeout
	}

	if cfg.HTTP.Timeout <= 0 {
		cfg.HTTP.Timeout = DefaultHTTPTimeout
	}
	if cfg.HTTP.MaxAttempts <= 0 {
		cfg.HTTP.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.HTTP.Backoff <= 0 {
		cfg.HTTP.Backoff = DefaultBackoff
	}
	if cfg.HTTP.RatePerSec <= 0 {
		cfg.HTTP.RatePerSec = 1.0
	}
	if cfg.HTTP.Burst <= 0 {
		cfg.HTTP.Burst = 2
	}
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = DefaultUserAgent
	}
	if cfg.HTTP.MaxPages <= 0 {
		cfg.HTTP.MaxPages = DefaultMaxPages
	}
	if cfg.HTTP.DetailWorkers <= 0 {
		cfg.HTTP.DetailWorkers = 4
	}

	if len(cfg.Filters.Negative) == 0 {
		cfg.Filters.Negative = append([]string(nil), DefaultNegative...)
	}
	if len(cfg.Filters.Positive) == 0 {
		cfg.Filters.Positive = append([]string(nil), DefaultPositive...)
	}
	if len(cfg.Filters.Skills) == 0 {
		cfg.Filters.Skills = append([]string(nil), DefaultSkills...)
	}
	if cfg.Filters.MinSkillMatches <= 0 {
		cfg.Filters.MinSkillMatches = 2
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "file"
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = filepath.Join(cfg.App.DataDir, "seen_jobs.json")
	}
	if cfg.Cache.Retention <= 0 {
		cfg.Cache.Retention = DefaultRetention
	}
	if cfg.Cache.RedisKey == "" {
		cfg.Cache.RedisKey = "jobalert:seen"
	}

	if cfg.Notify.SendGrid.Endpoint == "" {
		cfg.Notify.SendGrid.Endpoint = DefaultSendGridURL
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(cfg.App.DataDir, "jobalert.db")
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Server.Interval <= 0 {
		cfg.Server.Interval = DefaultInterval
	}

	cfg.Log.SetDefaults()
}
