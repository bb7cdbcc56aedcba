package servicetrade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.servicetrade.com/api"

	// sessionCookieName is the cookie ServiceTrade issues on login and
	// expects back on every authenticated call
	sessionCookieName = "PHPSESSID"
)

// ClientConfig holds ServiceTrade API client settings
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a thin HTTP client for the ServiceTrade REST API. Session
// handling lives in SessionManager; the client only moves tokens on and
// off the wire.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Response captures the parts of an upstream response callers act on
type Response struct {
	StatusCode int
	Body       []byte
}

// OK returns true for 2xx responses
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// NewClient creates a new ServiceTrade API client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Login posts credentials to /auth. On success the session token is read
// from the response's session cookie; an empty token with a non-nil
// response means the remote rejected the login.
func (c *Client) Login(ctx context.Context, username, password string) (string, *Response, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal login payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth", bytes.NewReader(payload))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create login request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", nil, fmt.Errorf("login request failed: %w", err)
	}
	defer httpResp.Body.Close()

	resp, err := readResponse(httpResp)
	if err != nil {
		return "", nil, err
	}

	var token string
	for _, cookie := range httpResp.Cookies() {
		if cookie.Name == sessionCookieName {
			token = cookie.Value
			break
		}
	}

	return token, resp, nil
}

// CheckSession validates a session token with a lightweight GET /auth
func (c *Client) CheckSession(ctx context.Context, token string) (*Response, error) {
	return c.Do(ctx, token, http.MethodGet, "/auth", nil)
}

// CloseSession asks the remote to end the session
func (c *Client) CloseSession(ctx context.Context, token string) (*Response, error) {
	return c.Do(ctx, token, http.MethodDelete, "/auth", nil)
}

// Do issues an arbitrary authenticated call. path must start with "/".
func (c *Client) Do(ctx context.Context, token, method, path string, body []byte) (*Response, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	return readResponse(httpResp)
}

func readResponse(httpResp *http.Response) (*Response, error) {
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
	}, nil
}
