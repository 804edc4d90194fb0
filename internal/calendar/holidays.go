package calendar

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Holidays is the public-holiday set for one (country, year). Fallback is
// true when the remote service could not be reached and the coarse built-in
// list was substituted, so callers can tell "no holidays published" apart
// from "service unreachable".
type Holidays struct {
	Year     int
	Country  string
	Dates    map[string]bool // ISO YYYY-MM-DD
	Fallback bool
}

// Contains reports whether the given ISO date is a holiday.
func (h Holidays) Contains(isoDate string) bool {
	return h.Dates[isoDate]
}

// HolidayCache lazily fetches holiday sets from a nager.at-style service and
// keeps them for the process lifetime. A failed fetch caches the fallback
// under the same key so the network cost is not repeated.
type HolidayCache struct {
	baseURL string
	country string
	client  *http.Client
	logger  *zap.Logger
	cache   map[int]Holidays
}

func NewHolidayCache(baseURL, country string, logger *zap.Logger) *HolidayCache {
	return &HolidayCache{
		baseURL: baseURL,
		country: country,
		client:  &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
		cache:   map[int]Holidays{},
	}
}

// HolidaysFor returns the holiday set for a year, fetching it on first use.
func (c *HolidayCache) HolidaysFor(year int) Holidays {
	if h, ok := c.cache[year]; ok {
		return h
	}

	h, err := c.fetch(year)
	if err != nil {
		c.logger.Warn("Holiday service unavailable, using fallback list",
			zap.Int("year", year),
			zap.String("country", c.country),
			zap.Error(err))
		h = c.fallback(year)
	}

	c.cache[year] = h
	return h
}

func (c *HolidayCache) fetch(year int) (Holidays, error) {
	url := fmt.Sprintf("%s/publicholidays/%d/%s", c.baseURL, year, c.country)

	resp, err := c.client.Get(url)
	if err != nil {
		return Holidays{}, fmt.Errorf("holiday request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Holidays{}, fmt.Errorf("holiday service returned status %d", resp.StatusCode)
	}

	var entries []struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return Holidays{}, fmt.Errorf("decoding holiday response: %w", err)
	}

	dates := make(map[string]bool, len(entries))
	for _, e := range entries {
		dates[e.Date] = true
	}

	return Holidays{Year: year, Country: c.country, Dates: dates}, nil
}

// fallback is deliberately coarse: new year, a fixed mid-year date and the
// two year-end dates. Not a substitute for real coverage.
func (c *HolidayCache) fallback(year int) Holidays {
	dates := map[string]bool{
		fmt.Sprintf("%04d-01-01", year): true,
		fmt.Sprintf("%04d-07-04", year): true,
		fmt.Sprintf("%04d-12-25", year): true,
		fmt.Sprintf("%04d-12-31", year): true,
	}
	return Holidays{Year: year, Country: c.country, Dates: dates, Fallback: true}
}
