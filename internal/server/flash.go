package web

import (
	"net/http"
	"net/url"
)

const flashCookie = "briefcast_flash"

// setFlash stores a one-shot notice that survives the redirect back to the
// dashboard. Cookie-based so it works behind proxies that collapse client
// addresses.
func setFlash(w http.ResponseWriter, _ *http.Request, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
	})
}

// getFlash retrieves the notice and expires the cookie
func getFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	message, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return message
}
