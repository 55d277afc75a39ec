package config

import (
	"fmt"
	"net/url"
	"strings"

	"jobalert/internal/domain"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg (trimmed, deduplicated
// keyword lists, lower-case kinds) together with everything wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Filters.Negative = trimList(out.Filters.Negative)
	out.Filters.Positive = trimList(out.Filters.Positive)
	out.Filters.Skills = trimList(out.Filters.Skills)
	out.Notify.SendGrid.To = trimList(out.Notify.SendGrid.To)

	// ---- filters ----

	if len(out.Filters.Positive) == 0 && len(out.Filters.Skills) == 0 {
		res.addErr("filters: positive and skills are both empty; nothing can match")
	}
	if out.Filters.MinSkillMatches > len(out.Filters.Skills) && len(out.Filters.Skills) > 0 {
		res.addWarn("filters.min_skill_matches (%d) exceeds the number of skills (%d); description matching is disabled",
			out.Filters.MinSkillMatches, len(out.Filters.Skills))
	}
	neg := map[string]bool{}
	for _, n := range out.Filters.Negative {
		neg[strings.ToLower(n)] = true
	}
	for _, p := range out.Filters.Positive {
		if neg[strings.ToLower(p)] {
			res.addWarn("keyword appears in both positive and negative: %q", p)
		}
	}

	// ---- runtime ----

	if out.App.Workers > 64 {
		res.addWarn("app.workers is very high (%d)", out.App.Workers)
	}
	if out.App.SourceTimeout > out.App.RunTimeout {
		res.addWarn("app.source_timeout (%s) exceeds app.run_timeout (%s)", out.App.SourceTimeout, out.App.RunTimeout)
	}
	if out.HTTP.MaxPages > 10 {
		res.addWarn("http.max_pages is %d; large values make slow boards dominate the run", out.HTTP.MaxPages)
	}

	switch out.Cache.Backend {
	case "file":
	case "redis":
		if strings.TrimSpace(out.Cache.RedisURL) == "" {
			res.addErr("cache.redis_url is required when cache.backend=redis")
		}
	default:
		res.addErr("cache.backend must be file or redis, got %q", out.Cache.Backend)
	}

	// ---- notify ----

	sg := out.Notify.SendGrid
	if sg.Enabled {
		if strings.TrimSpace(sg.From) == "" {
			res.addErr("notify.sendgrid.from (SENDER_EMAIL) is required when sendgrid is enabled")
		}
		if len(sg.To) == 0 {
			res.addErr("notify.sendgrid.to (RECIPIENT_EMAIL) is required when sendgrid is enabled")
		}
		if strings.TrimSpace(sg.APIKey) == "" && strings.TrimSpace(sg.KeyringID) == "" {
			res.addWarn("notify.sendgrid has no api_key; SENDGRID_API_KEY or the keychain must provide it")
		}
	}
	tg := out.Notify.Telegram
	if tg.Enabled && tg.ChatID == 0 {
		res.addErr("notify.telegram.chat_id is required when telegram is enabled")
	}
	if !sg.Enabled && !tg.Enabled && !out.Notify.Console.Enabled {
		res.addWarn("no notifier enabled; digests will only be logged")
	}

	// ---- sources ----

	names := map[string]bool{}
	for i := range out.Sources {
		s := &out.Sources[i]
		s.Name = strings.TrimSpace(s.Name)
		s.Param = strings.TrimSpace(s.Param)
		s.Kind = domain.ProviderKind(strings.ToLower(strings.TrimSpace(string(s.Kind))))

		where := fmt.Sprintf("sources[%d]", i)
		if s.Name == "" {
			res.addErr("%s.name is required", where)
		} else {
			where = fmt.Sprintf("sources[%s]", s.Name)
			key := strings.ToLower(s.Name)
			if names[key] {
				res.addErr("%s: duplicate source name", where)
			}
			names[key] = true
		}

		if _, err := domain.ParseKind(string(s.Kind)); err != nil {
			res.addErr("%s.kind: %v", where, err)
			continue
		}
		if s.Param == "" {
			res.addErr("%s.param is required", where)
			continue
		}

		switch s.Kind {
		case domain.KindHTML, domain.KindBoard, domain.KindWorkday:
			u, err := url.Parse(s.Param)
			if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
				res.addErr("%s.param must be an absolute http(s) URL for kind %s", where, s.Kind)
			}
		case domain.KindGreenhouse, domain.KindLever, domain.KindSmartRecruiters:
			if strings.Contains(s.Param, "/") {
				res.addErr("%s.param must be a board slug, not a URL, for kind %s", where, s.Kind)
			}
		}

		if s.Kind == domain.KindBoard {
			if s.Selectors == nil || strings.TrimSpace(s.Selectors.Item) == "" {
				res.addErr("%s.selectors.item is required for kind board", where)
			}
		} else if s.Selectors != nil {
			res.addWarn("%s.selectors is ignored for kind %s", where, s.Kind)
		}
	}

	enabled := 0
	for _, s := range out.Sources {
		if !s.Disabled {
			enabled++
		}
	}
	if enabled == 0 {
		res.addWarn("all sources are disabled; runs will produce empty digests")
	}

	return out, res
}
