package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/itchan-dev/aurum/internal/session"
	internal_errors "github.com/itchan-dev/aurum/shared/errors"
	jwt_internal "github.com/itchan-dev/aurum/shared/jwt"
	"github.com/itchan-dev/aurum/shared/logger"
	mw "github.com/itchan-dev/aurum/shared/middleware"
	"github.com/itchan-dev/aurum/shared/middleware/ratelimiter"
	"github.com/itchan-dev/aurum/shared/utils"
)

const SessionCookie = "session"

var ErrTooManySessionStarts = internal_errors.New("Too many new sessions, try again later", http.StatusTooManyRequests)

type key int

const sessionKey key = 0

type Sessions interface {
	Get(id string) (*session.Session, bool)
	Create() (*session.Session, error)
}

// SessionAuth binds every request to a session through a signed cookie.
type SessionAuth struct {
	jwtService    jwt_internal.JwtService
	sessions      Sessions
	cookieTTL     time.Duration
	secureCookies bool
	// starts limits new sessions per client IP; nil allows any number
	starts *ratelimiter.UserRateLimiter
}

func NewSessionAuth(jwtService jwt_internal.JwtService, sessions Sessions, cookieTTL time.Duration, secureCookies bool, starts *ratelimiter.UserRateLimiter) *SessionAuth {
	return &SessionAuth{
		jwtService:    jwtService,
		sessions:      sessions,
		cookieTTL:     cookieTTL,
		secureCookies: secureCookies,
		starts:        starts,
	}
}

// Load attaches the caller's session to the request. A missing, invalid or
// expired token starts a fresh session and sets a new cookie, unless the
// caller's IP has started too many sessions recently.
func (a *SessionAuth) Load() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := a.existing(r)
			if !ok {
				var err error
				s, err = a.start(w, r)
				if err != nil {
					utils.WriteErrorAndStatusCode(w, err)
					return
				}
			}

			ctx := context.WithValue(r.Context(), sessionKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NeedUser rejects requests whose session has no signed-in user.
func NeedUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := GetSession(r)
			if s == nil || s.User() == nil {
				http.Error(w, "Please sign-in", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *SessionAuth) existing(r *http.Request) (*session.Session, bool) {
	// Cookie first (browsers), then Authorization header (API clients)
	var tokenString string
	if c, err := r.Cookie(SessionCookie); err == nil {
		tokenString = c.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}
	if tokenString == "" {
		return nil, false
	}

	sid, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, false
	}
	s, ok := a.sessions.Get(sid)
	if !ok {
		logger.Log.Debug("session expired", "session_id", sid)
	}
	return s, ok
}

func (a *SessionAuth) start(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if a.starts != nil {
		ip, err := mw.GetIP(r)
		if err != nil {
			return nil, err
		}
		if !a.starts.Allow(ip) {
			logger.Log.Warn("session start limit exceeded", "ip", ip, "path", r.URL.Path)
			return nil, ErrTooManySessionStarts
		}
	}

	s, err := a.sessions.Create()
	if err != nil {
		return nil, err
	}
	token, err := a.jwtService.NewToken(s.Id)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     SessionCookie,
		Value:    token,
		MaxAge:   int(a.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	// API clients without a cookie jar can send it back as a bearer token
	w.Header().Set("X-Session-Token", token)
	return s, nil
}

// GetSession retrieves the session attached by Load.
func GetSession(r *http.Request) *session.Session {
	s, ok := r.Context().Value(sessionKey).(*session.Session)
	if !ok {
		return nil
	}
	return s
}

// WithSession returns a copy of r carrying s. Used by tests and internal redirects.
func WithSession(r *http.Request, s *session.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionKey, s))
}
