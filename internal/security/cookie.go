package security

import (
	"net/http"
	"time"
)

type CookiePolicy struct {
	Name        string
	Domain      string
	Secure      bool
	CrossOrigin bool
	MaxAge      time.Duration
}

// SessionCookie builds the session cookie: httpOnly always, secure when the
// deployment is cross-origin or production, SameSite=None only when
// cross-origin (a None cookie must also be Secure).
func (p CookiePolicy) SessionCookie(token string) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	secure := p.Secure
	if p.CrossOrigin {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	return &http.Cookie{
		Name:     p.Name,
		Value:    token,
		Path:     "/",
		Domain:   p.Domain,
		MaxAge:   int(p.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}

func (p CookiePolicy) ClearCookie() *http.Cookie {
	c := p.SessionCookie("")
	c.MaxAge = -1
	return c
}
