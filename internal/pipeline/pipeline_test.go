package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"briefcast/internal/extract"
	"briefcast/internal/locate"
	"briefcast/internal/model"
	"briefcast/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const editionHTML = `<html><body>
<article>
	<h2>OpenAI Ships Faster Reasoning Models Today</h2>
	<a href="https://openai.example.org/post/1">link</a>
	<p>The new release cuts latency in half for long prompts according to early benchmarks.</p>
</article>
<article>
	<h2>Postgres 18 Adds Native Columnar Storage Layout</h2>
	<a href="https://db.example.io/pg18">link</a>
	<p>The storage engine rework targets analytical workloads without extensions.</p>
</article>
</body></html>`

type stubLocator struct {
	url string
	err error
}

func (s *stubLocator) Locate(feed string) (string, error) { return s.url, s.err }

type stubFetcher struct {
	html string
	err  error
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return s.html, s.err
}

type stubSummarizer struct {
	digest     string
	synthErr   error
	categorize int
}

func (s *stubSummarizer) Categorize(ctx context.Context, items []model.Item) ([]model.Item, error) {
	s.categorize++
	for i := range items {
		items[i].Categories = []string{"Tech"}
	}
	return items, nil
}

func (s *stubSummarizer) Synthesize(ctx context.Context, items []model.Item) (string, error) {
	return s.digest, s.synthErr
}

type stubArchiver struct {
	content string
	err     error
	calls   int
}

func (s *stubArchiver) Archive(url string, timeout time.Duration) (string, error) {
	s.calls++
	return s.content, s.err
}

type stubSpeaker struct {
	path string
	err  error
}

func (s *stubSpeaker) Speak(ctx context.Context, text, feed string) (string, error) {
	return s.path, s.err
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	st, err := store.NewHybridStore(mr.Addr(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

func newRunner(t *testing.T, st store.Store) (*Runner, *stubSummarizer, *stubArchiver) {
	t.Helper()
	summarizer := &stubSummarizer{digest: "TRENDS: a quiet but productive day in infrastructure."}
	archiver := &stubArchiver{content: "<p>readable body</p>"}

	return &Runner{
		Locator:    &stubLocator{url: "https://news.example.com/tech/2025-06-25"},
		Fetcher:    &stubFetcher{html: editionHTML},
		Extractor:  extract.NewExtractor(20, zap.NewNop()),
		Normalizer: extract.NewNormalizer(20, "tldr"),
		Summarizer: summarizer,
		Store:      st,
		Archiver:   archiver,
		Speaker:    &stubSpeaker{path: "/audio/brief_tech_20250625.wav"},
		Logger:     zap.NewNop(),
	}, summarizer, archiver
}

func TestRunFeed_EndToEnd(t *testing.T) {
	st := newTestStore(t)
	runner, summarizer, archiver := newRunner(t, st)
	ctx := context.Background()

	report, err := runner.RunFeed(ctx, "tech")
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 2, report.Extracted)
	assert.Equal(t, 2, report.Stored)
	assert.Equal(t, "2025-06-25", report.Date)
	assert.Equal(t, "/audio/brief_tech_20250625.wav", report.AudioFile)
	assert.Equal(t, 1, summarizer.categorize)
	assert.Equal(t, 2, archiver.calls)

	items, err := st.ListItems(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, model.StatusArchived, item.Status)
		assert.Equal(t, []string{"Tech"}, item.Categories)
	}

	// Archived content is retrievable for the dashboard view.
	got, err := st.GetItem(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "<p>readable body</p>", got.Content)

	digest, err := st.GetDigest(ctx, "tech", "2025-06-25")
	require.NoError(t, err)
	assert.Contains(t, digest.Text, "TRENDS")
	assert.Equal(t, 2, digest.ItemCount)
}

func TestRunFeed_LocatorNotFound(t *testing.T) {
	st := newTestStore(t)
	runner, _, _ := newRunner(t, st)
	runner.Locator = &stubLocator{err: locate.ErrNotFound}

	report, err := runner.RunFeed(context.Background(), "tech")
	assert.ErrorIs(t, err, locate.ErrNotFound)
	assert.False(t, report.Success)
	assert.NotEmpty(t, report.Errors)
}

func TestRunFeed_FetchFailure(t *testing.T) {
	st := newTestStore(t)
	runner, _, _ := newRunner(t, st)
	runner.Fetcher = &stubFetcher{err: fmt.Errorf("dns exploded")}

	report, err := runner.RunFeed(context.Background(), "tech")
	assert.Error(t, err)
	assert.False(t, report.Success)
}

func TestRunFeed_EmptyExtraction(t *testing.T) {
	st := newTestStore(t)
	runner, _, _ := newRunner(t, st)
	runner.Fetcher = &stubFetcher{html: "<html><body><p>nothing here</p></body></html>"}

	report, err := runner.RunFeed(context.Background(), "tech")
	require.NoError(t, err, "zero items is a degraded outcome, not an error")
	assert.Equal(t, 0, report.Extracted)
	assert.False(t, report.Success)
}

func TestRunFeed_ArchiveFailureIsNotFatal(t *testing.T) {
	st := newTestStore(t)
	runner, _, archiver := newRunner(t, st)
	archiver.err = fmt.Errorf("simulated 404 error")
	archiver.content = ""

	report, err := runner.RunFeed(context.Background(), "tech")
	require.NoError(t, err)
	assert.True(t, report.Success)

	items, err := st.ListItems(context.Background(), 10)
	require.NoError(t, err)
	for _, item := range items {
		assert.Equal(t, model.StatusFailed, item.Status)
		assert.Equal(t, "simulated 404 error", item.ErrorMessage)
	}
}

func TestRunFeed_NoSummarizerOrExtras(t *testing.T) {
	st := newTestStore(t)
	runner, _, _ := newRunner(t, st)
	runner.Summarizer = nil
	runner.Archiver = nil
	runner.Speaker = nil

	report, err := runner.RunFeed(context.Background(), "tech")
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Empty(t, report.AudioFile)

	items, err := st.ListItems(context.Background(), 10)
	require.NoError(t, err)
	for _, item := range items {
		assert.Equal(t, model.StatusNew, item.Status)
	}
}
