package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the HTTP-only cookie carrying the signed
// session token.
const SessionCookie = "session_token"

// SignSessionToken issues the JWT stored in the session cookie. The token
// carries only the session ID and user ID; credentials stay in Redis.
func SignSessionToken(sessionID string, userID uint, key []byte) (string, error) {
	claims := jwt.MapClaims{
		"session_id": sessionID,
		"user_id":    userID,
		"exp":        time.Now().Add(SessionTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// ParseSessionToken validates a session cookie value and returns the
// session ID embedded in it.
func ParseSessionToken(tokenStr string, key []byte) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		return "", fmt.Errorf("missing session_id claim")
	}
	return sessionID, nil
}
