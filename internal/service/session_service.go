package service

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"hirelane/api/internal/config"
	"hirelane/api/internal/models"
	"hirelane/api/internal/security"
)

// Session is what a successful authentication hands back: the signed token
// travels both in the cookie and in the response body, for clients that
// cannot rely on cookies.
type Session struct {
	Token  string
	Cookie *http.Cookie
}

type SessionService struct {
	users  UserRepo
	secret string
	ttl    time.Duration
	cookie security.CookiePolicy
	log    zerolog.Logger
	now    func() time.Time
}

func NewSessionService(users UserRepo, cfg *config.AppConfig, log zerolog.Logger) *SessionService {
	return &SessionService{
		users:  users,
		secret: cfg.Security.JWTSecret,
		ttl:    cfg.Security.SessionTTL,
		cookie: security.CookiePolicy{
			Name:        cfg.Security.CookieName,
			Domain:      cfg.Security.CookieDomain,
			Secure:      cfg.Production(),
			CrossOrigin: cfg.Security.CrossOrigin,
			MaxAge:      cfg.Security.SessionTTL,
		},
		log: log,
		now: time.Now,
	}
}

// Issue signs session claims for the user and records the login time. The
// last-login update is best-effort: a failed bookkeeping write never blocks
// an otherwise successful authentication.
func (s *SessionService) Issue(ctx context.Context, user models.User) (Session, error) {
	token, err := security.SignSession(s.secret, user.ID, user.Email, user.RoleNames(), s.ttl)
	if err != nil {
		return Session{}, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("update last login failed")
	}

	return Session{
		Token:  token,
		Cookie: s.cookie.SessionCookie(token),
	}, nil
}

func (s *SessionService) ClearCookie() *http.Cookie {
	return s.cookie.ClearCookie()
}

func (s *SessionService) Parse(token string) (*security.SessionClaims, error) {
	return security.ParseSession(token, s.secret)
}
