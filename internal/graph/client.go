package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client issues authenticated REST calls against the Microsoft Graph API.
// It holds no per-user state; the caller's token travels with every call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Graph client. An empty baseURL selects the public
// v1.0 endpoint.
func NewClient(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	if log == nil {
		log = slog.Default()
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://graph.microsoft.com/v1.0"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.With(slog.String("client", "graph")),
	}
}

// BaseURL returns the configured Graph endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// url resolves a path against the base endpoint. Absolute URLs (pagination
// continuation links, upload session URLs) pass through untouched.
func (c *Client) url(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}
	return c.baseURL + "/" + strings.TrimLeft(pathOrURL, "/")
}

func (c *Client) get(ctx context.Context, token Token, pathOrURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(pathOrURL), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, token, out)
}

func (c *Client) postJSON(ctx context.Context, token Token, pathOrURL string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(pathOrURL), bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, token, out)
}

// do executes the request with bearer auth and decodes a 2xx response body
// into out. Non-2xx responses become a StatusError carrying the body text.
func (c *Client) do(req *http.Request, token Token, out any) error {
	if token.IsEmpty() {
		return ErrMissingToken
	}
	req.Header.Set("Authorization", "Bearer "+string(token))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph request: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// decodeResponse turns a non-2xx response into a StatusError and otherwise
// decodes the body into out when out is non-nil.
func decodeResponse(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read graph response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode graph response: %w", err)
	}
	return nil
}
