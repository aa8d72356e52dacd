package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tuanbt/toastlog/internal/auth"
	"github.com/tuanbt/toastlog/internal/spool"
)

// Client talks to a running ingest server.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewClient creates a client for baseURL, e.g. http://127.0.0.1:7878.
func NewClient(baseURL, token string) *Client {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Exchange trades a producer key for a token and stores it on the client.
func (c *Client) Exchange(ctx context.Context, producer, key string) (*auth.TokenResponse, error) {
	var resp auth.TokenResponse
	if err := c.do(ctx, http.MethodPost, RouteToken, auth.TokenRequest{Producer: producer, Key: key}, false, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	c.Token = resp.Token
	return &resp, nil
}

// Emit posts one notification.
func (c *Client) Emit(ctx context.Context, req spool.Request) (*AcceptedResponse, error) {
	var resp AcceptedResponse
	if err := c.do(ctx, http.MethodPost, RouteNotifications, req, true, http.StatusAccepted, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History fetches records after since.
func (c *Client) History(ctx context.Context, since uint64) (*HistoryResponse, error) {
	var resp HistoryResponse
	path := RouteNotifications + "?since=" + strconv.FormatUint(since, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, true, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, bearer bool, want int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = resp.Status
		}
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// StatusError is returned when the server answers with an unexpected status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ingest: %d %s", e.Code, e.Message)
}
