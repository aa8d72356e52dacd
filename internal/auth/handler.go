package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const producerKey contextKey = "producer"

type Handler struct {
	authService *AuthService
}

func NewHandler(authService *AuthService) *Handler {
	return &Handler{
		authService: authService,
	}
}

func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.authService.Exchange(req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingProducer):
			RespondWithError(w, http.StatusBadRequest, "Producer name required")
		case errors.Is(err, ErrInvalidCredentials):
			RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		default:
			RespondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		}
		return
	}

	RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			RespondWithError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			RespondWithError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := h.authService.ValidateToken(parts[1])
		if err != nil {
			RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), producerKey, claims.Producer)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// ProducerFromContext returns the producer AuthMiddleware authenticated.
func ProducerFromContext(ctx context.Context) (string, bool) {
	producer, ok := ctx.Value(producerKey).(string)
	return producer, ok
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/token", h.Token)
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
