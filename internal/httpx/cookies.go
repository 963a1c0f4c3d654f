package httpx

import (
	"net/http"
	"time"
)

const (
	AccessCookieName  = "elibrary_access"
	RefreshCookieName = "elibrary_refresh"
)

// CookieOptions mirrors the cross-site cookie policy the SPA relies on:
// SameSite=None so the frontend origin can send it, HttpOnly always.
type CookieOptions struct {
	Secure bool
}

func (o CookieOptions) SetAuthCookies(w http.ResponseWriter, accessToken string, accessTTL time.Duration, refreshToken string, refreshTTL time.Duration) {
	http.SetCookie(w, o.cookie(AccessCookieName, accessToken, "/", accessTTL))
	http.SetCookie(w, o.cookie(RefreshCookieName, refreshToken, "/", refreshTTL))
}

func (o CookieOptions) ClearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		c := o.cookie(name, "", "/", 0)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

func (o CookieOptions) cookie(name, value, path string, ttl time.Duration) *http.Cookie {
	sameSite := http.SameSiteNoneMode
	if !o.Secure {
		// Browsers reject SameSite=None without Secure.
		sameSite = http.SameSiteLaxMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: sameSite,
	}
}

// CookieValue returns the named cookie's value or "".
func CookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
