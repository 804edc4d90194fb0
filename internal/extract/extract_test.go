package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const pageURL = "https://news.example.com/tech/2025-06-25"

func testExtractor(t *testing.T) *Extractor {
	t.Helper()
	return NewExtractor(20, zap.NewNop())
}

func TestExtract_StructuredScan(t *testing.T) {
	html := `<html><body>
	<article>
		<h2>OpenAI Ships Faster Reasoning Models Today</h2>
		<a href="https://openai.example.org/post/1">link</a>
		<p>The new release cuts latency in half for long prompts. Benchmarks show consistent gains across suites. (4 minute read)</p>
	</article>
	<article>
		<h2>Rust Toolchain Gets Incremental Linker Support</h2>
		<a href="/foo">link</a>
		<p>Link times drop dramatically for large workspaces according to maintainers.</p>
	</article>
	<article>
		<h2>Postgres 18 Adds Native Columnar Storage Layout</h2>
		<a href="https://db.example.io/pg18">link</a>
		<p>The storage engine rework targets analytical workloads without extensions.</p>
	</article>
	</body></html>`

	candidates, err := testExtractor(t).Extract(html, pageURL)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	assert.Equal(t, "OpenAI Ships Faster Reasoning Models Today", candidates[0].Title)
	assert.Equal(t, "https://openai.example.org/post/1", candidates[0].URL)
	assert.Equal(t, "4 minute read", candidates[0].ReadingTime)
	assert.NotEmpty(t, candidates[0].Summary)

	// Root-relative href resolves against the site root, not the page path.
	assert.Equal(t, "https://news.example.com/foo", candidates[1].URL)
	assert.Equal(t, "https://db.example.io/pg18", candidates[2].URL)
}

func TestExtract_StructuredScan_RejectsBareSections(t *testing.T) {
	// A section with a title but neither URL nor usable summary is dropped.
	html := `<html><body>
	<article><h2>A Headline Long Enough To Qualify Here</h2></article>
	</body></html>`

	candidates, err := testExtractor(t).Extract(html, pageURL)
	require.NoError(t, err)

	for _, c := range candidates {
		assert.NotEqual(t, "A Headline Long Enough To Qualify Here", c.Title)
	}
}

func TestExtract_ExternalLinkScan(t *testing.T) {
	// No structural markers at all, so the structured scan yields nothing
	// and the link scan takes over.
	html := `<html><body>
	<div>
		<a href="https://vector.example.dev/internals">A Deep Dive Into Vector Database Internals</a>
		This walkthrough covers index layouts and recall tradeoffs in production systems.
	</div>
	<div>
		<a href="https://news.example.com/internal">An internal link that must not appear at all</a>
	</div>
	<div>
		<a href="https://somewhere.example.net/x">short text</a>
	</div>
	</body></html>`

	candidates, err := testExtractor(t).Extract(html, pageURL)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, "A Deep Dive Into Vector Database Internals", candidates[0].Title)
	assert.Equal(t, "https://vector.example.dev/internals", candidates[0].URL)
	assert.Contains(t, candidates[0].Summary, "index layouts")
}

func TestExtract_ExternalLinkScan_QualityDomainRelaxed(t *testing.T) {
	// Link text below the default 25-char bar, accepted because the
	// target is a known code host.
	html := `<html><body>
	<div><a href="https://github.com/acme/tool">acme/tool release</a>
	The release adds sandboxed plugin execution with a capability model.</div>
	</body></html>`

	candidates, err := testExtractor(t).Extract(html, pageURL)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://github.com/acme/tool", candidates[0].URL)
}

func TestExtract_ExternalLinkScan_Exclusions(t *testing.T) {
	html := `<html><body>
	<div><a href="https://example.org/unsubscribe">Click to stop receiving these emails now</a></div>
	<div><a href="https://twitter.com/someone">Follow the team on our social media feed</a></div>
	</body></html>`

	candidates, err := testExtractor(t).Extract(html, pageURL)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestExtract_TextPatternFallback(t *testing.T) {
	html := `<html><body><p>Big Launch Announced (5 minute read)</p></body></html>`

	candidates, err := testExtractor(t).Extract(html, pageURL)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	assert.Equal(t, "Big Launch Announced", candidates[0].Title)
	assert.Equal(t, "5 minute read", candidates[0].ReadingTime)
	assert.Empty(t, candidates[0].URL)
}

func TestExtract_NothingMatches(t *testing.T) {
	candidates, err := testExtractor(t).Extract("<html><body><p>hello</p></body></html>", pageURL)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestCleanTitle(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Big   Launch\tAnnounced", "Big Launch Announced"},
		{"Launch (5 minute read)", "Launch"},
		{"Emoji 🚀 Launch", "Emoji Launch"},
		{"Économie numérique à Montréal", "Économie numérique à Montréal"},
		{"Quarterly Results: Up, Up, Up!", "Quarterly Results: Up, Up, Up!"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, cleanTitle(tc.in))
	}
}

func TestReadingTime(t *testing.T) {
	assert.Equal(t, "4 minute read", readingTime("something something (4 minute read)"))
	assert.Equal(t, "12 minute read", readingTime("12 min read"))
	assert.Equal(t, "3 minute read", readingTime("read in 3 minutes"))
	assert.Equal(t, "", readingTime("no estimate here"))
}

func TestSummaryFromSection_SkipsBoilerplate(t *testing.T) {
	text := "Headline Goes Here. Click here to subscribe. The actual story sentence carries real information. Short."
	got := summaryFromSection(text, "Headline Goes Here")
	assert.Contains(t, got, "actual story sentence")
	assert.NotContains(t, got, "Click here")
	assert.NotContains(t, got, "Short")
}
