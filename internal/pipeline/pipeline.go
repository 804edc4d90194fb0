package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"briefcast/internal/extract"
	"briefcast/internal/model"
	"briefcast/internal/speech"
	"briefcast/internal/store"
	"briefcast/internal/summarize"

	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
)

// Locator picks the edition URL to harvest. Satisfied by *locate.Locator.
type Locator interface {
	Locate(feed string) (string, error)
}

// Fetcher downloads the newsletter page itself.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Archiver pulls readable full-article content for a retained item.
// This allows us to mock the download step in tests.
type Archiver interface {
	Archive(url string, timeout time.Duration) (string, error)
}

// HTTPFetcher is the real page fetcher.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return string(body), nil
}

// ReadabilityArchiver is the real implementation that uses the internet.
type ReadabilityArchiver struct{}

func (a *ReadabilityArchiver) Archive(url string, timeout time.Duration) (string, error) {
	art, err := readability.FromURL(url, timeout)
	if err != nil {
		return "", err
	}
	return art.Content, nil
}

// Runner executes the day-processing workflow for one feed: locate the
// edition, extract and normalize its items, tag and synthesize them, store
// everything, then optionally archive full articles and voice the digest.
type Runner struct {
	Locator    Locator
	Fetcher    Fetcher
	Extractor  *extract.Extractor
	Normalizer *extract.Normalizer
	Summarizer summarize.Summarizer
	Store      store.Store
	Archiver   Archiver
	Speaker    speech.Synthesizer
	Logger     *zap.Logger
}

// RunFeed processes one feed end to end and returns the run report. The
// report is returned even when err is non-nil so callers can record the
// partial outcome.
func (r *Runner) RunFeed(ctx context.Context, feed string) (*model.Report, error) {
	started := time.Now()
	logger := r.Logger.With(zap.String("feed", feed))
	report := &model.Report{Feed: feed}

	defer func() {
		report.Elapsed = time.Since(started).Seconds()
		report.FinishedAt = time.Now()
	}()

	url, err := r.Locator.Locate(feed)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report, fmt.Errorf("locating edition: %w", err)
	}
	report.SourceURL = url
	report.Date = dateFromURL(url)

	logger.Info("Harvesting edition", zap.String("url", url))

	html, err := r.Fetcher.Fetch(ctx, url)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report, fmt.Errorf("fetching edition: %w", err)
	}

	candidates, err := r.Extractor.Extract(html, url)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report, fmt.Errorf("parsing edition: %w", err)
	}

	items := r.Normalizer.Normalize(candidates, feed)
	report.Extracted = len(items)
	if len(items) == 0 {
		logger.Warn("Extraction produced no items", zap.String("url", url))
		return report, nil
	}

	if r.Summarizer != nil {
		if items, err = r.Summarizer.Categorize(ctx, items); err != nil {
			report.Errors = append(report.Errors, err.Error())
		}
		for i := range items {
			items[i].Status = model.StatusSummarized
		}
	}

	for i := range items {
		if err := r.Store.SaveItem(ctx, &items[i]); err != nil {
			logger.Error("Failed to store item",
				zap.String("title", items[i].Title),
				zap.Error(err))
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		report.Stored++
	}
	report.Success = report.Stored > 0

	digestText := ""
	if r.Summarizer != nil {
		if digestText, err = r.Summarizer.Synthesize(ctx, items); err != nil {
			report.Errors = append(report.Errors, err.Error())
		}
	}
	if digestText != "" {
		digest := &model.Digest{
			Date:      report.Date,
			Feed:      feed,
			Text:      digestText,
			ItemCount: len(items),
			Elapsed:   time.Since(started).Seconds(),
			CreatedAt: time.Now(),
		}
		if err := r.Store.SaveDigest(ctx, digest); err != nil {
			logger.Error("Failed to store digest", zap.Error(err))
			report.Errors = append(report.Errors, err.Error())
		}
	}

	if r.Archiver != nil {
		r.archiveItems(ctx, logger, items)
	}

	if r.Speaker != nil && digestText != "" {
		path, err := r.Speaker.Speak(ctx, digestText, feed)
		if err != nil {
			logger.Warn("Audio generation failed", zap.Error(err))
		} else {
			report.AudioFile = path
		}
	}

	logger.Info("Run complete",
		zap.Int("extracted", report.Extracted),
		zap.Int("stored", report.Stored),
		zap.Float64("elapsed_s", time.Since(started).Seconds()))
	return report, nil
}

// archiveItems fetches readable full-article content for items that carry a
// source URL. Failures are recorded per item, never fatal.
func (r *Runner) archiveItems(ctx context.Context, logger *zap.Logger, items []model.Item) {
	for i := range items {
		if items[i].URL == "" {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		content, err := r.Archiver.Archive(items[i].URL, 30*time.Second)
		if err != nil {
			logger.Warn("Archiving failed",
				zap.String("url", items[i].URL),
				zap.Error(err))
			items[i].Status = model.StatusFailed
			items[i].ErrorMessage = err.Error()
			if err := r.Store.SaveItem(ctx, &items[i]); err != nil {
				logger.Error("Failed to save failed item", zap.Error(err))
			}
			continue
		}

		now := time.Now()
		items[i].Content = content
		items[i].Status = model.StatusArchived
		items[i].ArchivedAt = &now
		if err := r.Store.SaveItem(ctx, &items[i]); err != nil {
			logger.Error("Failed to save archived content", zap.Error(err))
		}
	}
}

// dateFromURL recovers the ISO date segment from an edition URL.
func dateFromURL(url string) string {
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
