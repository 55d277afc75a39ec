package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobalert/internal/scrape/util"
)

func TestResolve(t *testing.T) {
	base := "https://acme.test/careers/"

	tests := []struct {
		href, want string
	}{
		{"/jobs/42", "https://acme.test/jobs/42"},
		{"jobs/42", "https://acme.test/careers/jobs/42"},
		{"https://boards.greenhouse.io/acme/jobs/1?gh_src=x&utm_source=y", "https://boards.greenhouse.io/acme/jobs/1"},
		{"#top", ""},
		{"mailto:jobs@acme.test", ""},
		{"javascript:void(0)", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, util.Resolve(base, tt.href), tt.href)
	}
}

func TestCanonicalize_SortsQueryAndDropsFragment(t *testing.T) {
	assert.Equal(t,
		"https://acme.test/jobs?a=1&b=2",
		util.Canonicalize("HTTPS://ACME.test/jobs?b=2&a=1&utm_campaign=z#apply"))
}

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "Austin, TX", util.NormalizeLocation("Location: Austin ,  TX, austin"))
	assert.Equal(t, "", util.NormalizeLocation("   "))
}

func TestLooksLikeJunkTitle(t *testing.T) {
	assert.True(t, util.LooksLikeJunkTitle("Apply Now"))
	assert.True(t, util.LooksLikeJunkTitle("  "))
	assert.False(t, util.LooksLikeJunkTitle("Data Analyst"))
}

func TestHTMLToText(t *testing.T) {
	got := util.HTMLToText(`<div><p>We use <b>SQL</b></p><script>var x=1</script><ul><li>Python</li></ul></div>`)
	assert.Equal(t, "We use SQL Python", got)
}
