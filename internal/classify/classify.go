// Package classify decides which postings are worth an alert.
//
// Two independent gates apply. The role gate looks at title and description:
// a negative keyword in the title rejects outright, otherwise a positive
// keyword in the title or enough skill keywords in the description accepts.
// The location gate accepts US locations, remote postings that mention the
// US, and postings with no location at all.
package classify

import (
	"regexp"
	"strings"

	"jobalert/internal/domain"
	"jobalert/internal/normalize"
)

// Reason explains a rejection. Empty means kept.
type Reason string

const (
	ReasonKept       Reason = ""
	ReasonNegative   Reason = "negative_keyword"
	ReasonNoMatch    Reason = "no_keyword_match"
	ReasonNoData     Reason = "no_description"
	ReasonLocation   Reason = "location"
	ReasonEmptyTitle Reason = "empty_title"
)

type Rules struct {
	Negative        []string
	Positive        []string
	Skills          []string
	MinSkillMatches int
}

type Classifier struct {
	negative  []*regexp.Regexp
	positive  []*regexp.Regexp
	skills    []*regexp.Regexp
	minSkills int
}

func New(r Rules) *Classifier {
	min := r.MinSkillMatches
	if min <= 0 {
		min = 1
	}
	return &Classifier{
		negative:  compileAll(r.Negative),
		positive:  compileAll(r.Positive),
		skills:    compileAll(r.Skills),
		minSkills: min,
	}
}

// Verdict is the outcome of both gates for one posting.
type Verdict struct {
	Relevant bool
	Eligible bool
	Reason   Reason
	Skills   int // distinct skill keywords found in the description
}

func (v Verdict) Keep() bool { return v.Relevant && v.Eligible }

// Evaluate runs both gates over (title, description, location).
func (c *Classifier) Evaluate(title, description, location string) Verdict {
	t := normalize.Fold(title)
	d := normalize.Fold(description)

	v := Verdict{}
	v.Relevant, v.Reason, v.Skills = c.role(t, d)
	if !v.Relevant {
		return v
	}
	v.Eligible = c.Eligible(location, description)
	if !v.Eligible {
		v.Reason = ReasonLocation
	}
	return v
}

// IsRelevant is the role gate: true when the title carries no negative
// keyword and either the title carries a positive keyword or the
// description carries enough skill keywords.
func (c *Classifier) IsRelevant(title, description string) bool {
	ok, _, _ := c.role(normalize.Fold(title), normalize.Fold(description))
	return ok
}

// Keep applies both gates to p, falling back to fallbackLocation when the
// posting has none of its own.
func (c *Classifier) Keep(p domain.Posting, fallbackLocation string) (bool, Reason) {
	loc := p.Location
	if strings.TrimSpace(loc) == "" {
		loc = fallbackLocation
	}
	v := c.Evaluate(p.Title, p.Description, loc)
	return v.Keep(), v.Reason
}

// TitleRejected reports whether title fails on a negative keyword alone.
// Adapters use it to avoid fetching detail pages for postings that can
// never pass.
func (c *Classifier) TitleRejected(title string) bool {
	if c == nil {
		return false
	}
	t := normalize.Fold(title)
	return t == "" || anyMatch(c.negative, t)
}

func (c *Classifier) role(title, desc string) (bool, Reason, int) {
	if title == "" {
		return false, ReasonEmptyTitle, 0
	}
	if anyMatch(c.negative, title) {
		return false, ReasonNegative, 0
	}
	if anyMatch(c.positive, title) {
		return true, ReasonKept, countMatches(c.skills, desc)
	}
	if desc == "" {
		return false, ReasonNoData, 0
	}
	n := countMatches(c.skills, desc)
	if n >= c.minSkills {
		return true, ReasonKept, n
	}
	return false, ReasonNoMatch, n
}

// compileAll builds one matcher per keyword. Keywords match on word
// boundaries so "r" does not hit every word containing the letter.
func compileAll(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		w = normalize.Fold(w)
		if w == "" {
			continue
		}
		out = append(out, regexp.MustCompile(`(?:^|[^\pL\pN])`+regexp.QuoteMeta(w)+`(?:$|[^\pL\pN])`))
	}
	return out
}

func anyMatch(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func countMatches(res []*regexp.Regexp, s string) int {
	n := 0
	for _, re := range res {
		if re.MatchString(s) {
			n++
		}
	}
	return n
}
