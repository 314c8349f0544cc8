package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/aurum/shared/middleware/ratelimiter"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit(t *testing.T) {
	t.Run("allows request within rate limit", func(t *testing.T) {
		rl := ratelimiter.NewUserRateLimiter(1, 1, time.Minute)
		handler := RateLimit(rl, func(r *http.Request) (string, error) { return "user1", nil })(okHandler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("error getting identity", func(t *testing.T) {
		rl := ratelimiter.NewUserRateLimiter(1, 1, time.Minute)
		handler := RateLimit(rl, func(r *http.Request) (string, error) { return "", errors.New("Test error") })(okHandler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("blocks request exceeding rate limit", func(t *testing.T) {
		rl := ratelimiter.NewUserRateLimiter(ratelimiter.PerMinute(1), 1, time.Minute)
		handler := RateLimit(rl, func(r *http.Request) (string, error) { return "user1", nil })(okHandler())

		w1 := httptest.NewRecorder()
		handler.ServeHTTP(w1, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusOK, w1.Code)

		w2 := httptest.NewRecorder()
		handler.ServeHTTP(w2, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusTooManyRequests, w2.Code)
		assert.Equal(t, "Rate limit exceeded, try again later\n", w2.Body.String())
	})

	t.Run("global limit ignores identity", func(t *testing.T) {
		rl := ratelimiter.NewUserRateLimiter(ratelimiter.PerMinute(1), 1, time.Minute)
		handler := GlobalRateLimit(rl)(okHandler())

		first := httptest.NewRequest("GET", "/", nil)
		first.RemoteAddr = "10.0.0.1:1"
		second := httptest.NewRequest("GET", "/", nil)
		second.RemoteAddr = "10.0.0.2:1"

		w1 := httptest.NewRecorder()
		handler.ServeHTTP(w1, first)
		w2 := httptest.NewRecorder()
		handler.ServeHTTP(w2, second)

		assert.Equal(t, http.StatusOK, w1.Code)
		assert.Equal(t, http.StatusTooManyRequests, w2.Code)
	})
}

func TestGetIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
		wantErr    string
	}{
		{name: "ipv4", remoteAddr: "192.168.1.100:54321", expected: "192.168.1.100"},
		{name: "ipv6", remoteAddr: "[2001:db8::1]:8080", expected: "2001:db8::1"},
		{name: "no port", remoteAddr: "192.168.1.1", expected: "192.168.1.1"},
		{
			name:       "ignores spoofed headers",
			remoteAddr: "203.0.113.50:12345",
			headers:    map[string]string{"X-Real-IP": "10.0.0.1", "X-Forwarded-For": "10.0.0.2, 10.0.0.3"},
			expected:   "203.0.113.50",
		},
		{name: "invalid", remoteAddr: "not-an-ip:1234", wantErr: "invalid IP address: not-an-ip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			ip, err := GetIP(req)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ip)
		})
	}
}
