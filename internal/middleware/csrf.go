package middleware

import (
	"net/http"
	"strings"

	"github.com/itchan-dev/aurum/shared/csrf"
	"github.com/itchan-dev/aurum/shared/logger"
)

const csrfFormField = "csrf_token"

// ValidateCSRFToken checks form posts against the token of the caller's
// session. Must run after SessionAuth.Load.
func ValidateCSRFToken(maxFormSize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only validate POST, PUT, PATCH, DELETE methods
			if r.Method != http.MethodPost && r.Method != http.MethodPut &&
				r.Method != http.MethodPatch && r.Method != http.MethodDelete {
				next.ServeHTTP(w, r)
				return
			}

			s := GetSession(r)
			if s == nil {
				http.Error(w, "CSRF token missing", http.StatusForbidden)
				return
			}

			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
				r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
				if err := r.ParseMultipartForm(maxFormSize); err != nil {
					logger.Log.Warn("failed to parse multipart form", "error", err)
					http.Error(w, "Invalid form data", http.StatusBadRequest)
					return
				}
			} else if err := r.ParseForm(); err != nil {
				logger.Log.Warn("failed to parse form", "error", err)
				http.Error(w, "Invalid form data", http.StatusBadRequest)
				return
			}

			if !csrf.ValidateToken(s.CSRFToken, r.PostFormValue(csrfFormField)) {
				logger.Log.Warn("CSRF token validation failed", "path", r.URL.Path)
				http.Error(w, "CSRF token invalid", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
