package calendar

import (
	"time"

	"go.uber.org/zap"
)

const isoDate = "2006-01-02"

// Resolver answers "is this a business day" and walks a calendar backward to
// the nearest one. Holiday data comes from the injected cache.
type Resolver struct {
	holidays    *HolidayCache
	cutoverHour int
	maxLookback int
	logger      *zap.Logger
	now         func() time.Time
}

func NewResolver(holidays *HolidayCache, cutoverHour, maxLookback int, logger *zap.Logger) *Resolver {
	if maxLookback <= 0 {
		maxLookback = 14
	}
	return &Resolver{
		holidays:    holidays,
		cutoverHour: cutoverHour,
		maxLookback: maxLookback,
		logger:      logger,
		now:         time.Now,
	}
}

// SetClock overrides the wall clock. Tests only.
func (r *Resolver) SetClock(now func() time.Time) { r.now = now }

// IsBusinessDay reports whether d is neither a weekend day nor a public
// holiday for the configured country.
func (r *Resolver) IsBusinessDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !r.holidays.HolidaysFor(d.Year()).Contains(d.Format(isoDate))
}

// LastBusinessDay walks backward from the given date to the nearest business
// day, checking at most maxLookback dates. If the whole window fails the
// original input is returned unchanged, as a best-effort fallback.
//
// When from is today and the wall clock is before the cutover hour, the walk
// starts from yesterday: an edition for "today" is assumed to not exist yet.
// This is a publishing-schedule heuristic, not a calendar fact.
func (r *Resolver) LastBusinessDay(from time.Time) time.Time {
	now := r.now()
	if sameDay(from, now) && now.Hour() < r.cutoverHour {
		from = from.AddDate(0, 0, -1)
	}

	current := from
	for checked := 0; checked < r.maxLookback; checked++ {
		if r.IsBusinessDay(current) {
			return current
		}
		current = current.AddDate(0, 0, -1)
	}

	r.logger.Warn("No business day found in lookback window, keeping start date",
		zap.String("from", from.Format(isoDate)),
		zap.Int("max_lookback", r.maxLookback))
	return from
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
