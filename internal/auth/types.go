package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenRequest struct {
	Producer string `json:"producer"`
	Key      string `json:"key"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	Producer  string    `json:"producer"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Claims struct {
	Producer string `json:"producer"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

type Config struct {
	JWTSecret string
	// KeyHash is the bcrypt hash every producer key is checked against.
	KeyHash  string
	TokenTTL time.Duration
}
