package locate

import (
	"net/http"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Prober answers whether a candidate URL has content behind it.
// Implementations never return errors: any failure is "unavailable".
type Prober interface {
	Available(url string) bool
}

// HTTPProber issues a metadata-only HEAD request with a short timeout.
type HTTPProber struct {
	client    *http.Client
	userAgent string
}

func NewHTTPProber() *HTTPProber {
	return &HTTPProber{
		client:    &http.Client{Timeout: 5 * time.Second},
		userAgent: defaultUserAgent,
	}
}

func (p *HTTPProber) Available(url string) bool {
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
