package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ArtoLord/enoa-sign-roller/config"
)

const stateTokenTTL = 10 * time.Minute

// GenerateStateToken issues a short-lived signed token used as the
// OAuth state parameter. The token carries only a nonce and an expiry:
// it proves the callback originates from a redirect we produced.
func GenerateStateToken() (string, error) {
	cfg := config.Get()

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(stateTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.StateSecret))
}

// ValidateStateToken checks signature and expiry of an OAuth state
// token.
func ValidateStateToken(tokenStr string) bool {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.StateSecret), nil
	})
	return err == nil && parsed.Valid
}
