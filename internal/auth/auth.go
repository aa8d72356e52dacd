// Package auth issues and checks the bearer tokens ingest producers use.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrMissingProducer    = errors.New("producer name required")
	ErrNoSecret           = errors.New("jwt secret not configured")
)

const (
	tokenType = "producer"
	issuer    = "toastlog"
)

type AuthService struct {
	config *Config
	now    func() time.Time
}

func NewAuthService(cfg *Config) *AuthService {
	return &AuthService{
		config: cfg,
		now:    time.Now,
	}
}

// Exchange checks req.Key against the configured key hash and returns a
// token for req.Producer.
func (s *AuthService) Exchange(req TokenRequest) (*TokenResponse, error) {
	producer := strings.TrimSpace(req.Producer)
	if producer == "" {
		return nil, ErrMissingProducer
	}
	if s.config.KeyHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.config.KeyHash), []byte(req.Key)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.Issue(producer)
}

// Issue signs a token for producer without checking any key. The token
// subcommand uses it with the local secret.
func (s *AuthService) Issue(producer string) (*TokenResponse, error) {
	if producer == "" {
		return nil, ErrMissingProducer
	}
	if s.config.JWTSecret == "" {
		return nil, ErrNoSecret
	}

	now := s.now()
	expiresAt := now.Add(s.config.TokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Producer: producer,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   producer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResponse{
		Token:     signed,
		Producer:  producer,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	if s.config.JWTSecret == "" {
		return nil, ErrNoSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.Type == tokenType {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// HashKey returns the bcrypt hash to put in ingest.key_hash.
func HashKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("key cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}
	return string(hashed), nil
}
