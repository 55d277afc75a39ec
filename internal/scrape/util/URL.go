package util

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Canonicalize drops fragments and tracking parameters and sorts the query
// so the same posting linked twice produces the same key.
func Canonicalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" || lk == "gh_src" || lk == "lever-source" {
			q.Del(k)
		}
	}

	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Resolve turns href into an absolute URL relative to base. Non-web schemes
// (mailto:, javascript:, tel:) and empty or fragment-only hrefs give "".
func Resolve(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	h, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := b.ResolveReference(h)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return Canonicalize(abs.String())
}

// IsObviousJunkURL filters navigation and legal links that are never postings.
func IsObviousJunkURL(u string) bool {
	lu := strings.ToLower(u)

	junks := []string{
		"unsubscribe",
		"preferences",
		"privacy",
		"terms",
		"cookie",
		"/login",
		"/signin",
		"/sign-in",
		"/help",
		"/legal",
		"linkedin.com/company",
		"twitter.com",
		"facebook.com",
		"instagram.com",
		"youtube.com",
	}
	for _, j := range junks {
		if strings.Contains(lu, j) {
			return true
		}
	}
	return false
}

func HashString(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:8])
}
