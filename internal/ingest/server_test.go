package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/crypto/bcrypt"

	"github.com/tuanbt/toastlog/internal/auth"
	"github.com/tuanbt/toastlog/internal/metrics"
	"github.com/tuanbt/toastlog/internal/notify"
	"github.com/tuanbt/toastlog/internal/spool"
	"github.com/tuanbt/toastlog/internal/toast"
)

const testKey = "producer-key"

// MockSender collects the messages the server sends to the UI loop.
type MockSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (m *MockSender) Send(msg tea.Msg) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
}

func (m *MockSender) Emissions() []Emission {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []Emission
	for _, msg := range m.msgs {
		if e, ok := msg.(Emission); ok {
			result = append(result, e)
		}
	}
	return result
}

type fixture struct {
	server  *httptest.Server
	sender  *MockSender
	store   *notify.Store
	metrics *metrics.Metrics
	client  *Client
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash key: %v", err)
	}
	authService := auth.NewAuthService(&auth.Config{
		JWTSecret: "0123456789abcdef0123456789abcdef",
		KeyHash:   string(hash),
		TokenTTL:  time.Hour,
	})

	store := notify.NewStore()
	store.Register(store.AppendHandler())
	m := metrics.New(store)
	sender := &MockSender{}

	srv := NewServer(cfg, authService, sender, store, WithMetrics(m))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &fixture{
		server:  ts,
		sender:  sender,
		store:   store,
		metrics: m,
		client:  NewClient(ts.URL, ""),
	}
}

func TestClientEmitRoundTrip(t *testing.T) {
	f := newFixture(t, Config{RatePerSecond: 100, Burst: 100})
	ctx := context.Background()

	if _, err := f.client.Exchange(ctx, "ci", testKey); err != nil {
		t.Fatalf("failed to exchange key: %v", err)
	}

	resp, err := f.client.Emit(ctx, spool.Request{Kind: "error", Message: "Network down", Description: "eth0"})
	if err != nil {
		t.Fatalf("failed to emit: %v", err)
	}
	if resp.Kind != toast.KindError || resp.Producer != "ci" {
		t.Errorf("unexpected response: %+v", resp)
	}

	emissions := f.sender.Emissions()
	if len(emissions) != 1 {
		t.Fatalf("expected 1 emission, got %d", len(emissions))
	}
	e := emissions[0]
	if e.Kind != toast.KindError || e.Message != "Network down" || e.Producer != "ci" {
		t.Errorf("unexpected emission: %+v", e)
	}
	if toast.Apply(e.Options...).Description != "eth0" {
		t.Error("expected description option to be forwarded")
	}

	// The server never emits or records by itself
	if f.store.Len() != 0 {
		t.Errorf("expected no records from the server, got %d", f.store.Len())
	}
}

func TestEmitNonStringMessageForwardedUntouched(t *testing.T) {
	f := newFixture(t, Config{RatePerSecond: 100, Burst: 100})
	ctx := context.Background()

	if _, err := f.client.Exchange(ctx, "ci", testKey); err != nil {
		t.Fatalf("failed to exchange key: %v", err)
	}
	if _, err := f.client.Emit(ctx, spool.Request{Kind: "info", Message: map[string]any{"build": 42}}); err != nil {
		t.Fatalf("failed to emit: %v", err)
	}

	msg, ok := f.sender.Emissions()[0].Message.(map[string]any)
	if !ok || msg["build"] != float64(42) {
		t.Errorf("expected object payload, got %#v", f.sender.Emissions()[0].Message)
	}
}

func TestHistory(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	f.store.Dispatch(toast.KindSuccess, "one")
	f.store.Dispatch(toast.KindWarning, "two")

	if _, err := f.client.Exchange(ctx, "reader", testKey); err != nil {
		t.Fatalf("failed to exchange key: %v", err)
	}

	resp, err := f.client.History(ctx, 1)
	if err != nil {
		t.Fatalf("failed to fetch history: %v", err)
	}
	if resp.LastSeq != 2 {
		t.Errorf("expected last seq 2, got %d", resp.LastSeq)
	}
	if len(resp.Records) != 1 || resp.Records[0].Message != "two" {
		t.Errorf("unexpected records: %+v", resp.Records)
	}
}

func TestNotificationsRequireToken(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := f.client.Emit(context.Background(), spool.Request{Kind: "info", Message: "x"})
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
	if len(f.sender.Emissions()) != 0 {
		t.Error("expected nothing sent without a token")
	}
}

func TestEmitRejectsBadRequests(t *testing.T) {
	f := newFixture(t, Config{RatePerSecond: 100, Burst: 100})
	if _, err := f.client.Exchange(context.Background(), "ci", testKey); err != nil {
		t.Fatalf("failed to exchange key: %v", err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "unknown kind", method: http.MethodPost, path: RouteNotifications, body: `{"kind":"fatal","message":"x"}`, want: http.StatusBadRequest},
		{name: "invalid json", method: http.MethodPost, path: RouteNotifications, body: `{`, want: http.StatusBadRequest},
		{name: "bad since", method: http.MethodGet, path: RouteNotifications + "?since=abc", want: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodDelete, path: RouteNotifications, want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, f.server.URL+tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("Authorization", "Bearer "+f.client.Token)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestEmitRateLimitedPerProducer(t *testing.T) {
	f := newFixture(t, Config{RatePerSecond: 0.001, Burst: 2})
	ctx := context.Background()

	noisy := NewClient(f.server.URL, "")
	quiet := NewClient(f.server.URL, "")
	if _, err := noisy.Exchange(ctx, "noisy", testKey); err != nil {
		t.Fatalf("failed to exchange key: %v", err)
	}
	if _, err := quiet.Exchange(ctx, "quiet", testKey); err != nil {
		t.Fatalf("failed to exchange key: %v", err)
	}

	req := spool.Request{Kind: "info", Message: "x"}
	for i := 0; i < 2; i++ {
		if _, err := noisy.Emit(ctx, req); err != nil {
			t.Fatalf("emit %d: unexpected error: %v", i, err)
		}
	}

	_, err := noisy.Emit(ctx, req)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %v", err)
	}

	if _, err := quiet.Emit(ctx, req); err != nil {
		t.Errorf("expected other producer to be unaffected, got %v", err)
	}
	if len(f.sender.Emissions()) != 3 {
		t.Errorf("expected 3 emissions, got %d", len(f.sender.Emissions()))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, Config{})
	f.store.Dispatch(toast.KindInfo, "x")

	// Count one unauthorized request
	unauth, err := http.Post(f.server.URL+RouteNotifications, "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	unauth.Body.Close()

	resp, err := http.Get(f.server.URL + RouteMetrics)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	body := buf.String()

	if !strings.Contains(body, "toastlog_log_records 1") {
		t.Errorf("expected log size in metrics, got:\n%s", body)
	}
	if !strings.Contains(body, `toastlog_ingest_requests_total{code="401",route="/api/notifications"} 1`) {
		t.Errorf("expected unauthorized request counted, got:\n%s", body)
	}
}

func TestTokenEndpointRejectsBadKey(t *testing.T) {
	f := newFixture(t, Config{})

	body, _ := json.Marshal(auth.TokenRequest{Producer: "ci", Key: "wrong"})
	resp, err := http.Post(f.server.URL+RouteToken, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestStartServesUntilCancelled(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(testKey), bcrypt.MinCost)
	authService := auth.NewAuthService(&auth.Config{
		JWTSecret: "0123456789abcdef0123456789abcdef",
		KeyHash:   string(hash),
		TokenTTL:  time.Hour,
	})
	store := notify.NewStore()
	srv := NewServer(Config{Address: "127.0.0.1:0"}, authService, &MockSender{}, store)

	ctx, cancel := context.WithCancel(context.Background())
	addr, err := srv.Start(ctx)
	if err != nil {
		t.Fatalf("failed to start: %v", err)
	}

	client := NewClient(addr.String(), "")
	if _, err := client.Exchange(context.Background(), "ci", testKey); err != nil {
		t.Fatalf("expected server to answer, got %v", err)
	}

	cancel()
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := client.Exchange(context.Background(), "ci", testKey); err != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expected server to stop after cancel")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
