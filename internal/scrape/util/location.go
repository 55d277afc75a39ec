package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobalert/internal/normalize"
)

func LooksLikeJunkTitle(t string) bool {
	l := strings.ToLower(strings.TrimSpace(t))
	switch l {
	case "", "apply", "apply now", "view", "view all", "view job", "learn more", "read more", "see all jobs", "careers", "jobs",
		"home", "about", "about us", "contact", "contact us", "blog", "news", "search":
		return true
	}
	return len(l) < 3 || len(l) > 140
}

func FindLocation(doc *goquery.Document) string {
	candidates := []string{
		".location",
		".job__location",
		".posting-categories .location",
		"[itemprop='jobLocation']",
		"[data-qa='location']",
		"[data-testid='job-location']",
		"[data-testid='location']",
	}

	for _, sel := range candidates {
		if t := normalize.CleanText(doc.Find(sel).First().Text()); t != "" {
			return NormalizeLocation(t)
		}
	}

	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if loc := ExtractLocationFromLabeledText(v); loc != "" {
			return NormalizeLocation(loc)
		}
	}

	body := normalize.CleanText(doc.Find("body").Text())
	if loc := ExtractLocationFromLabeledText(body); loc != "" {
		return NormalizeLocation(loc)
	}

	return ""
}

// ExtractLocationFromLabeledText returns what follows a "Location:" label.
func ExtractLocationFromLabeledText(s string) string {
	low := strings.ToLower(s)

	labels := []string{
		"job location:",
		"locations:",
		"location:",
	}

	for _, lab := range labels {
		if i := strings.Index(low, lab); i >= 0 {
			rest := strings.TrimSpace(s[i+len(lab):])

			for _, cut := range []string{"\n", "\r", " | ", " · "} {
				if j := strings.Index(rest, cut); j >= 0 {
					rest = rest[:j]
				}
			}

			rest = normalize.CleanText(rest)
			if rest != "" && len(rest) <= 80 {
				return rest
			}
		}
	}
	return ""
}

// DocumentText is the visible text of doc with scripts and styles removed.
func DocumentText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, template").Remove()
	// Text() concatenates nodes; pad block elements so words stay apart.
	doc.Find("p, div, li, br, tr, td, th, h1, h2, h3, h4, h5, h6, section, article").AppendHtml(" ")
	return normalize.CleanText(doc.Find("body").Text())
}

// HTMLToText renders an HTML fragment (ATS description fields) as plain text.
func HTMLToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return normalize.CleanText(fragment)
	}
	return DocumentText(doc)
}
