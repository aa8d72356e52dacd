package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T, key string) *AuthService {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash key: %v", err)
	}
	return NewAuthService(&Config{
		JWTSecret: testSecret,
		KeyHash:   string(hash),
		TokenTTL:  time.Hour,
	})
}

func TestExchangeAndValidate(t *testing.T) {
	svc := newTestService(t, "s3cret")

	resp, err := svc.Exchange(TokenRequest{Producer: "ci", Key: "s3cret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Producer != "ci" {
		t.Errorf("expected producer 'ci', got %q", resp.Producer)
	}

	claims, err := svc.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.Producer != "ci" || claims.Subject != "ci" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestExchangeRejects(t *testing.T) {
	svc := newTestService(t, "s3cret")

	tests := []struct {
		name string
		req  TokenRequest
		want error
	}{
		{name: "wrong key", req: TokenRequest{Producer: "ci", Key: "nope"}, want: ErrInvalidCredentials},
		{name: "missing producer", req: TokenRequest{Producer: "  ", Key: "s3cret"}, want: ErrMissingProducer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Exchange(tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestService(t, "k")
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	resp, err := svc.Issue("old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.now = time.Now
	if _, err := svc.ValidateToken(resp.Token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := newTestService(t, "k")
	resp, err := svc.Issue("ci")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := NewAuthService(&Config{JWTSecret: "a-completely-different-secret", TokenTTL: time.Hour})
	if _, err := other.ValidateToken(resp.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssueWithoutSecret(t *testing.T) {
	svc := NewAuthService(&Config{TokenTTL: time.Hour})
	if _, err := svc.Issue("ci"); !errors.Is(err, ErrNoSecret) {
		t.Errorf("expected ErrNoSecret, got %v", err)
	}
}

func TestHashKey(t *testing.T) {
	hash, err := HashKey("producer-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("producer-key")); err != nil {
		t.Errorf("expected hash to match key: %v", err)
	}
	if _, err := HashKey(""); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestTokenHandler(t *testing.T) {
	h := NewHandler(newTestService(t, "s3cret"))

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{name: "ok", method: http.MethodPost, body: `{"producer":"ci","key":"s3cret"}`, want: http.StatusOK},
		{name: "bad key", method: http.MethodPost, body: `{"producer":"ci","key":"x"}`, want: http.StatusUnauthorized},
		{name: "no producer", method: http.MethodPost, body: `{"key":"s3cret"}`, want: http.StatusBadRequest},
		{name: "bad json", method: http.MethodPost, body: `{`, want: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodGet, body: ``, want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/token", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			h.Token(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	svc := newTestService(t, "k")
	h := NewHandler(svc)

	resp, err := svc.Issue("deploy-bot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var seen string
	protected := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ProducerFromContext(r.Context())
		RespondWithJSON(w, http.StatusOK, map[string]string{"ok": "yes"})
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Bearer " + resp.Token, want: http.StatusOK},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc.def.ghi", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
			if rec.Code != http.StatusOK {
				var body map[string]string
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
					t.Errorf("expected JSON error body, got %s", rec.Body.String())
				}
			}
		})
	}

	if seen != "deploy-bot" {
		t.Errorf("expected producer in context, got %q", seen)
	}
}
