package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogOrder(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{"AXE", "Pa11y", "WAVE", "Lighthouse", "Asqatasun", "HTML_CodeSniffer"}, c.Names())
}

func TestNewResultIsAllFalse(t *testing.T) {
	c := Default()
	r := c.NewResult()
	assert.Len(t, r, 6)
	for name, v := range r {
		assert.False(t, v, name)
	}
}

func TestCanonical(t *testing.T) {
	c := Default()
	cases := map[string]string{
		"AXE":                         "AXE",
		"lighthouse":                  "Lighthouse",
		"pa11y-ci":                    "Pa11y",
		"@axe-core/react":             "AXE",
		"treosh/lighthouse-ci-action": "Lighthouse",
		"HTMLCS":                      "HTML_CodeSniffer",
	}
	for in, want := range cases {
		got, ok := c.Canonical(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := c.Canonical("eslint")
	assert.False(t, ok)
}

func TestMarkDiscardsUnknown(t *testing.T) {
	c := Default()
	r := c.NewResult()
	assert.False(t, c.Mark(r, "prettier"))
	assert.True(t, c.Mark(r, "lhci"))
	assert.Equal(t, []string{"Lighthouse"}, c.Detected(r))
}

func TestMatchContent(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{"Lighthouse"}, c.MatchContent("- run: npx LIGHTHOUSE https://example.com"))
	assert.Equal(t, []string{"AXE", "Pa11y", "HTML_CodeSniffer"}, c.MatchContent(`{"runners": ["axe-core", "htmlcs"]} pa11y`))
	assert.Empty(t, c.MatchContent("npm test && npm run build"))
}

func TestMatchDependency(t *testing.T) {
	c := Default()
	cases := []struct {
		dep  string
		want []string
	}{
		// dependency contains an alias
		{"pa11y-ci", []string{"Pa11y"}},
		{"@axe-core/playwright", []string{"AXE"}},
		{"gatsby-plugin-lighthouse", []string{"Lighthouse"}},
		// dependency inside an alias
		{"axe", []string{"AXE"}},
		{"codesniffer", []string{"HTML_CodeSniffer"}},
		{"CodeSniffer", []string{"HTML_CodeSniffer"}},
		{"deque", []string{"AXE"}},
		{"asqatasun", []string{"Asqatasun"}},
		// generic, short or mid-token names
		{"core", nil},
		{"react", nil},
		{"jest", nil},
		{"a11y", nil},
		{"cli", nil},
		{"sniffer", nil},
		{"ghthouse", nil},
		{"", nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.MatchDependency(tc.dep), tc.dep)
	}
}

func TestContainsToken(t *testing.T) {
	assert.True(t, containsToken("html_codesniffer", "codesniffer"))
	assert.True(t, containsToken("com.deque.html.axe-core", "deque"))
	assert.True(t, containsToken("axe", "axe"))
	assert.False(t, containsToken("htmlcodesniffer", "codesniffer"))
	assert.False(t, containsToken("lighthouse", "light"))
	assert.False(t, containsToken("ab", "abc"))
}

func TestParseRejectsUnknownMapping(t *testing.T) {
	_, err := Parse([]byte("tools:\n  - name: A\n    aliases: [a]\nmappings:\n  b: B\n"))
	assert.Error(t, err)
}
