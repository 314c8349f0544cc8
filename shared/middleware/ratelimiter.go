package middleware

import (
	"fmt"
	"net"
	"net/http"

	"github.com/itchan-dev/aurum/shared/logger"
	"github.com/itchan-dev/aurum/shared/middleware/ratelimiter"
	"github.com/itchan-dev/aurum/shared/utils"
)

func RateLimit(rl *ratelimiter.UserRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				logger.Log.Warn("rate limit exceeded", "identity", identity, "path", r.URL.Path)
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GlobalRateLimit(rl *ratelimiter.UserRateLimiter) func(http.Handler) http.Handler {
	return RateLimit(rl, func(r *http.Request) (string, error) { return "global", nil })
}

// GetIP extracts the client IP from RemoteAddr.
// Does NOT trust X-Real-IP or X-Forwarded-For headers (no reverse proxy)
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without port
		ip = r.RemoteAddr
	}

	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}

	return ip, nil
}
