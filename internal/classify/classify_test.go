package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobalert/internal/classify"
	"jobalert/internal/config"
	"jobalert/internal/domain"
)

func defaultClassifier() *classify.Classifier {
	return classify.New(classify.Rules{
		Negative:        config.DefaultNegative,
		Positive:        config.DefaultPositive,
		Skills:          config.DefaultSkills,
		MinSkillMatches: 2,
	})
}

const richDescription = "You will build dashboards in Tableau, write SQL and Python, and run regression analysis."

func TestIsRelevant_NegativeKeywordAlwaysRejects(t *testing.T) {
	c := defaultClassifier()
	titles := []string{
		"Senior Data Analyst",
		"Sr. Data Analyst",
		"Lead Business Analyst",
		"Analytics Engineer",
		"Data Analytics Manager",
		"Principal Product Analyst",
		"Staff BI Analyst",
		"Director, Analytics",
		"Head of Analytics",
		"Data Analyst Intern",
		"Business Analyst Internship (Summer 2025)",
	}
	for _, title := range titles {
		for _, desc := range []string{"", richDescription} {
			assert.False(t, c.IsRelevant(title, desc), "title %q desc %q", title, desc)
		}
	}
}

func TestIsRelevant_PositiveTitleAccepts(t *testing.T) {
	c := defaultClassifier()
	titles := []string{
		"Data Analyst I",
		"Business Analyst",
		"BI Analyst - Remote",
		"Marketing Analyst (Contract)",
		"  product   ANALYST ",
	}
	for _, title := range titles {
		assert.True(t, c.IsRelevant(title, ""), title)

		// the role gate never looks at location
		for _, loc := range []string{"", "Austin, TX", "London, United Kingdom"} {
			v := c.Evaluate(title, "", loc)
			assert.True(t, v.Relevant, "title %q loc %q", title, loc)
		}
	}
}

func TestIsRelevant_DescriptionSkillThreshold(t *testing.T) {
	c := defaultClassifier()

	tests := []struct {
		name  string
		title string
		desc  string
		want  bool
	}{
		{"enough skills", "Insights Associate", richDescription, true},
		{"single skill", "Insights Associate", "Advanced Excel required.", false},
		{"r is a word, not a letter", "Coordinator", "Strong R and SQL skills", true},
		{"r inside words does not count", "Coordinator", "our partner ranks reports", false},
		{"empty description and no title keyword", "Operations Associate", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsRelevant(tt.title, tt.desc))
		})
	}
}

func TestEvaluate_Reasons(t *testing.T) {
	c := defaultClassifier()

	assert.Equal(t, classify.ReasonNegative, c.Evaluate("Senior Data Analyst", richDescription, "").Reason)
	assert.Equal(t, classify.ReasonNoData, c.Evaluate("Operations Associate", "", "").Reason)
	assert.Equal(t, classify.ReasonNoMatch, c.Evaluate("Operations Associate", "Excel", "").Reason)
	assert.Equal(t, classify.ReasonEmptyTitle, c.Evaluate("   ", richDescription, "").Reason)
	assert.Equal(t, classify.ReasonLocation, c.Evaluate("Data Analyst", "", "Berlin, Germany").Reason)

	v := c.Evaluate("Data Analyst", richDescription, "Denver, CO")
	assert.True(t, v.Keep())
	assert.Equal(t, classify.ReasonKept, v.Reason)
	assert.Equal(t, 4, v.Skills)
}

func TestEligible(t *testing.T) {
	c := defaultClassifier()

	tests := []struct {
		loc  string
		desc string
		want bool
	}{
		{"", "", true},
		{"   ", "", true},
		{"Austin, TX", "", true},
		{"New York, New York", "", true},
		{"San Francisco, California, United States", "", true},
		{"United States", "", true},
		{"Remote - US", "", true},
		{"Remote, USA", "", true},
		{"Remote (NY)", "", true},
		{"Remote", "This role is open to candidates in the United States.", true},
		{"Remote", "", true},
		{"Remote", "Tell us about yourself", true},
		{"Hybrid", "", true},
		{"Multiple Locations", "", true},
		{"Headquarters", "", true},
		{"Manchester, NH", "", true},
		{"San Jose, CA", "", true},
		{"Remote (Canada)", "", false},
		{"Remote - Canada", "Open to candidates in the United States.", true},
		{"Remote - EMEA", "", false},
		{"London, United Kingdom", "", false},
		{"London, UK", "", false},
		{"Toronto, Ontario, Canada", "", false},
		{"Toronto, CA", "", false},
		{"Bangalore, India", "", false},
		{"Bangalore, IN", "", false},
		{"Amsterdam, NL", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Eligible(tt.loc, tt.desc), "loc %q desc %q", tt.loc, tt.desc)
	}
}

func TestKeep_UsesFallbackLocation(t *testing.T) {
	c := defaultClassifier()
	p := domain.Posting{Title: "Data Analyst", Source: "Acme"}

	ok, _ := c.Keep(p, "")
	assert.True(t, ok)

	ok, reason := c.Keep(p, "London, United Kingdom")
	assert.False(t, ok)
	assert.Equal(t, classify.ReasonLocation, reason)

	p.Location = "Chicago, IL"
	ok, _ = c.Keep(p, "London, United Kingdom")
	assert.True(t, ok)
}

func TestKeep_GenericHTMLScenario(t *testing.T) {
	c := defaultClassifier()

	senior := domain.Posting{Title: "Senior Data Analyst", Source: "Acme"}
	junior := domain.Posting{Title: "Data Analyst I", Source: "Acme"}

	ok, _ := c.Keep(senior, "")
	assert.False(t, ok)
	ok, _ = c.Keep(junior, "")
	assert.True(t, ok)
}

func TestTitleRejected(t *testing.T) {
	c := defaultClassifier()

	assert.True(t, c.TitleRejected("Staff Analyst"))
	assert.True(t, c.TitleRejected(""))
	assert.False(t, c.TitleRejected("Careers"))
	assert.False(t, c.TitleRejected("Data Analyst"))
}

func TestNew_CustomRules(t *testing.T) {
	c := classify.New(classify.Rules{
		Negative: []string{"lead"},
		Positive: []string{"análisis de datos"},
		Skills:   []string{"sql"},
	})

	assert.True(t, c.IsRelevant("Analista - Analisis de Datos", ""))
	assert.True(t, c.IsRelevant("Associate", "sql"))
	assert.False(t, c.IsRelevant("Team Lead", "sql"))
}
