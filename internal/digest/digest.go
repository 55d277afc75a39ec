// Package digest renders one run's fresh postings as an email-ready
// message: a subject, an HTML body and a plain-text body.
package digest

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"jobalert/internal/domain"
)

const subjectTimeLayout = "2006-01-02 15:04 MST"

// Group is one source's fresh postings, in fetch order.
type Group struct {
	Source   string
	Postings []domain.Posting
}

type Digest struct {
	Subject string
	HTML    string
	Text    string
	Count   int
	// Groups is the rendered order: non-empty groups only.
	Groups []Group
}

func (d Digest) Empty() bool { return d.Count == 0 }

// PerSource maps each rendered source to its posting count.
func (d Digest) PerSource() map[string]int {
	out := make(map[string]int, len(d.Groups))
	for _, g := range d.Groups {
		out[g.Source] = len(g.Postings)
	}
	return out
}

// Order drops empty groups and sorts the rest by descending count, ties by
// source name. Postings inside a group keep their order.
func Order(groups []Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if len(g.Postings) > 0 {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Postings) != len(out[j].Postings) {
			return len(out[i].Postings) > len(out[j].Postings)
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// Build renders groups as of now.
func Build(groups []Group, now time.Time) Digest {
	ordered := Order(groups)
	n := 0
	for _, g := range ordered {
		n += len(g.Postings)
	}

	d := Digest{Count: n, Groups: ordered}
	stamp := now.Format(subjectTimeLayout)
	if n == 0 {
		d.Subject = fmt.Sprintf("Job alerts: no new postings (%s)", stamp)
	} else {
		d.Subject = fmt.Sprintf("Job alerts: %s (%s)", newPostings(n), stamp)
	}
	d.Text = renderText(ordered, n)
	d.HTML = renderHTML(ordered, n)
	return d
}

const emptyLine = "No new postings this run."

func newPostings(n int) string {
	if n == 1 {
		return "1 new posting"
	}
	return fmt.Sprintf("%d new postings", n)
}

func renderText(groups []Group, n int) string {
	var b strings.Builder
	if n == 0 {
		b.WriteString(emptyLine + "\n")
		return b.String()
	}
	b.WriteString(newPostings(n) + "\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "\n%s (%d)\n", g.Source, len(g.Postings))
		for _, p := range g.Postings {
			b.WriteString("- " + headline(p) + "\n")
			b.WriteString("  " + p.Link + "\n")
		}
	}
	return b.String()
}

func renderHTML(groups []Group, n int) string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	if n == 0 {
		b.WriteString("<p>" + emptyLine + "</p>\n")
		b.WriteString("</body></html>\n")
		return b.String()
	}
	b.WriteString("<h2>" + newPostings(n) + "</h2>\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "<h3>%s (%d)</h3>\n", html.EscapeString(g.Source), len(g.Postings))
		b.WriteString("<ul>\n")
		for _, p := range g.Postings {
			fmt.Fprintf(&b, "<li>%s: <a href=\"%s\">%s</a>",
				html.EscapeString(g.Source), html.EscapeString(p.Link), html.EscapeString(p.Title))
			if loc := strings.TrimSpace(p.Location); loc != "" {
				b.WriteString(" - " + html.EscapeString(loc))
			}
			b.WriteString("</li>\n")
		}
		b.WriteString("</ul>\n")
	}
	b.WriteString("</body></html>\n")
	return b.String()
}

func headline(p domain.Posting) string {
	if loc := strings.TrimSpace(p.Location); loc != "" {
		return p.Title + " - " + loc
	}
	return p.Title
}
