package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

const TokenLength = 32 // bytes

// GenerateToken creates a cryptographically secure random token
func GenerateToken() (string, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// ValidateToken compares the session token with the form token
func ValidateToken(sessionToken, formToken string) bool {
	if sessionToken == "" || formToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sessionToken), []byte(formToken)) == 1
}
