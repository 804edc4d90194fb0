package calendar

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func holidayServer(t *testing.T, dates []string, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, "[")
		for i, d := range dates {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"date":%q,"localName":"x"}`, d)
		}
		fmt.Fprint(w, "]")
	}))
}

func TestHolidayCache_FetchAndCache(t *testing.T) {
	hits := 0
	srv := holidayServer(t, []string{"2025-01-01", "2025-07-04"}, &hits)
	defer srv.Close()

	cache := NewHolidayCache(srv.URL, "US", zap.NewNop())

	h := cache.HolidaysFor(2025)
	assert.False(t, h.Fallback)
	assert.True(t, h.Contains("2025-07-04"))
	assert.False(t, h.Contains("2025-07-05"))

	// Second lookup must not hit the network again.
	cache.HolidaysFor(2025)
	assert.Equal(t, 1, hits)
}

func TestHolidayCache_FallbackOnFailure(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cache := NewHolidayCache(srv.URL, "US", zap.NewNop())

	h := cache.HolidaysFor(2025)
	assert.True(t, h.Fallback)
	assert.True(t, h.Contains("2025-01-01"))
	assert.True(t, h.Contains("2025-12-25"))

	// The failure is cached too: no retry within the process.
	cache.HolidaysFor(2025)
	assert.Equal(t, 1, hits)
}

func TestHolidayCache_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer srv.Close()

	cache := NewHolidayCache(srv.URL, "US", zap.NewNop())
	h := cache.HolidaysFor(2025)
	assert.True(t, h.Fallback)
}

func newTestResolver(t *testing.T, holidayDates []string) *Resolver {
	t.Helper()
	srv := holidayServer(t, holidayDates, nil)
	t.Cleanup(srv.Close)

	cache := NewHolidayCache(srv.URL, "US", zap.NewNop())
	r := NewResolver(cache, 12, 14, zap.NewNop())
	// Pin the clock far from the dates under test so the cutover rule
	// never fires by accident.
	r.SetClock(func() time.Time {
		return time.Date(2030, 1, 1, 15, 0, 0, 0, time.UTC)
	})
	return r
}

func TestIsBusinessDay_Weekends(t *testing.T) {
	r := newTestResolver(t, nil)

	sat := time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)
	sun := time.Date(2025, 6, 22, 0, 0, 0, 0, time.UTC)
	mon := time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC)

	assert.False(t, r.IsBusinessDay(sat))
	assert.False(t, r.IsBusinessDay(sun))
	assert.True(t, r.IsBusinessDay(mon))
}

func TestIsBusinessDay_Holidays(t *testing.T) {
	r := newTestResolver(t, []string{"2025-07-04"})

	fourth := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC) // a Friday
	require.Equal(t, time.Friday, fourth.Weekday())
	assert.False(t, r.IsBusinessDay(fourth))
	assert.True(t, r.IsBusinessDay(fourth.AddDate(0, 0, -1)))
}

func TestLastBusinessDay_SkipsWeekendAndHoliday(t *testing.T) {
	r := newTestResolver(t, []string{"2025-07-04"})

	// Sunday 2025-07-06: walk skips Sun, Sat, the July 4 holiday, and
	// lands on Thursday July 3.
	sun := time.Date(2025, 7, 6, 0, 0, 0, 0, time.UTC)
	got := r.LastBusinessDay(sun)
	assert.Equal(t, "2025-07-03", got.Format("2006-01-02"))
}

func TestLastBusinessDay_NeverWalksPastWindow(t *testing.T) {
	// Pathological window: every date for the month is a holiday.
	var dates []string
	for day := 1; day <= 31; day++ {
		dates = append(dates, fmt.Sprintf("2025-03-%02d", day))
	}
	r := newTestResolver(t, dates)

	from := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	got := r.LastBusinessDay(from)

	// Nothing qualifies, so the input comes back unchanged.
	assert.Equal(t, from, got)
}

func TestLastBusinessDay_BoundedLookback(t *testing.T) {
	r := newTestResolver(t, nil)

	from := time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC)
	got := r.LastBusinessDay(from)
	assert.LessOrEqual(t, from.Sub(got), 14*24*time.Hour)
	assert.True(t, r.IsBusinessDay(got))
}

func TestLastBusinessDay_CutoverShiftsToYesterday(t *testing.T) {
	r := newTestResolver(t, nil)

	// Clock says Wednesday 09:00; resolving "today" before the noon
	// cutover starts from Tuesday.
	now := time.Date(2025, 6, 25, 9, 0, 0, 0, time.UTC)
	r.SetClock(func() time.Time { return now })

	got := r.LastBusinessDay(now)
	assert.Equal(t, "2025-06-24", got.Format("2006-01-02"))

	// After the cutover, today itself qualifies.
	r.SetClock(func() time.Time {
		return time.Date(2025, 6, 25, 14, 0, 0, 0, time.UTC)
	})
	got = r.LastBusinessDay(time.Date(2025, 6, 25, 14, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-06-25", got.Format("2006-01-02"))
}
