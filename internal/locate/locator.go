package locate

import (
	"errors"
	"fmt"
	"time"

	"briefcast/internal/calendar"

	"go.uber.org/zap"
)

// ErrNotFound means no edition responded within the attempt budget and the
// configured fallback dates, so there is nothing to fetch.
var ErrNotFound = errors.New("no available newsletter edition found")

const isoDate = "2006-01-02"

// Locator picks a concrete edition URL for a feed by probing successive
// earlier business days, then a configured list of last-resort dates.
//
// The static list is a time-boxed escape hatch for irregular publishing
// cadence and flaky DNS, kept for parity with long-observed feed behavior.
// TODO: replace the static list with retry-with-backoff over the dynamic
// walk once the feed's cadence stabilizes.
type Locator struct {
	resolver      *calendar.Resolver
	prober        Prober
	baseURL       string
	fallbackDates []string
	maxAttempts   int
	logger        *zap.Logger
	now           func() time.Time
}

func NewLocator(resolver *calendar.Resolver, prober Prober, baseURL string, fallbackDates []string, maxAttempts int, logger *zap.Logger) *Locator {
	if maxAttempts <= 0 {
		maxAttempts = 7
	}
	return &Locator{
		resolver:      resolver,
		prober:        prober,
		baseURL:       baseURL,
		fallbackDates: fallbackDates,
		maxAttempts:   maxAttempts,
		logger:        logger,
		now:           time.Now,
	}
}

// SetClock overrides the wall clock. Tests only.
func (l *Locator) SetClock(now func() time.Time) { l.now = now }

// URLFor builds the edition URL for a feed and an ISO date.
func (l *Locator) URLFor(feed, date string) string {
	return fmt.Sprintf("%s/%s/%s", l.baseURL, feed, date)
}

// Locate returns the URL of the most recent available edition, walking
// backward over business days. ErrNotFound is returned when every attempt
// and every fallback date fails, so callers can tell "nothing to fetch"
// apart from "fetched nothing".
func (l *Locator) Locate(feed string) (string, error) {
	anchor := l.now()

	for attempt := 0; attempt < l.maxAttempts; attempt++ {
		businessDay := l.resolver.LastBusinessDay(anchor)
		url := l.URLFor(feed, businessDay.Format(isoDate))

		if l.prober.Available(url) {
			l.logger.Info("Edition located",
				zap.String("feed", feed),
				zap.String("date", businessDay.Format(isoDate)))
			return url, nil
		}

		l.logger.Debug("Edition unavailable, trying earlier date",
			zap.String("feed", feed),
			zap.String("date", businessDay.Format(isoDate)))
		anchor = businessDay.AddDate(0, 0, -1)
	}

	for _, date := range l.fallbackDates {
		url := l.URLFor(feed, date)
		if l.prober.Available(url) {
			l.logger.Warn("Using fallback date",
				zap.String("feed", feed),
				zap.String("date", date))
			return url, nil
		}
	}

	l.logger.Warn("No edition found",
		zap.String("feed", feed),
		zap.Int("attempts", l.maxAttempts),
		zap.Int("fallback_dates", len(l.fallbackDates)))
	return "", ErrNotFound
}
