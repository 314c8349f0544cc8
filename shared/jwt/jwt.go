package jwt

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	internal_errors "github.com/itchan-dev/aurum/shared/errors"
	"github.com/itchan-dev/aurum/shared/logger"
)

// JwtService signs the session cookie. The token only carries the session id,
// everything else lives server side in the session.
type JwtService interface {
	NewToken(sessionId string) (string, error)
	DecodeToken(jwtStr string) (string, error)
}

type Jwt struct {
	secretKey string
	ttl       time.Duration
}

func New(secretKey string, ttl time.Duration) JwtService {
	return &Jwt{secretKey, ttl}
}

func (j *Jwt) NewToken(sessionId string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{}
	claims["sid"] = sessionId
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(j.ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		logger.Log.Error("failed to sign token", "error", err)
		return "", &internal_errors.ErrorWithStatusCode{Message: "Can't create token", StatusCode: http.StatusInternalServerError}
	}

	return tokenString, nil
}

// DecodeToken verifies the token and returns the session id it carries.
func (j *Jwt) DecodeToken(jwtStr string) (string, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		// Verify signing algorithm
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &internal_errors.ErrorWithStatusCode{Message: fmt.Sprintf("Unexpected signing method: %v", token.Header["alg"]), StatusCode: http.StatusUnauthorized}
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		logger.Log.Debug("invalid token", "error", err)
		return "", &internal_errors.ErrorWithStatusCode{Message: "Invalid token signature", StatusCode: http.StatusUnauthorized}
	}

	if !token.Valid {
		return "", &internal_errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", &internal_errors.ErrorWithStatusCode{Message: "Invalid token claims", StatusCode: http.StatusUnauthorized}
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", &internal_errors.ErrorWithStatusCode{Message: "Token has no session", StatusCode: http.StatusUnauthorized}
	}

	return sid, nil
}
