package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Config holds the configuration for connecting to the Riskscreen API.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8080"
	APIKey string // API key, optional
}

// RiskscreenClient is a pure HTTP client for the Riskscreen screening API.
type RiskscreenClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewRiskscreenClient creates a new client for the Riskscreen API.
func NewRiskscreenClient(cfg Config) *RiskscreenClient {
	return &RiskscreenClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError represents an error response from the API.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doRequest makes an HTTP request to the API and returns the response body.
func (c *RiskscreenClient) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}

// ScreenSubject runs a subject screening against the configured sources.
func (c *RiskscreenClient) ScreenSubject(ctx context.Context, kind, name, walletAddress string, sources []string) (json.RawMessage, error) {
	subject := map[string]string{"kind": kind}
	if name != "" {
		subject["name"] = name
	}
	if walletAddress != "" {
		subject["walletAddress"] = walletAddress
	}
	body := map[string]any{"subject": subject}
	if len(sources) > 0 {
		body["sources"] = sources
	}
	return c.doRequest(ctx, http.MethodPost, "/v1/screenings", nil, body)
}

// ScreenTransactions runs the detection rules over a transaction batch.
func (c *RiskscreenClient) ScreenTransactions(ctx context.Context, kind, name string, records []map[string]any, categories []string) (json.RawMessage, error) {
	body := map[string]any{
		"subject":      map[string]string{"kind": kind, "name": name},
		"transactions": records,
	}
	if len(categories) > 0 {
		body["categories"] = categories
	}
	return c.doRequest(ctx, http.MethodPost, "/v1/screenings/transactions", nil, body)
}

// GetScreening fetches one completed screening record by ID.
func (c *RiskscreenClient) GetScreening(ctx context.Context, id string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/screenings/"+id, nil, nil)
}

// ListScreenings lists completed screenings, optionally filtered.
func (c *RiskscreenClient) ListScreenings(ctx context.Context, level string, sarOnly bool, limit int) (json.RawMessage, error) {
	q := url.Values{}
	if level != "" {
		q.Set("level", level)
	}
	if sarOnly {
		q.Set("sar", "true")
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.doRequest(ctx, http.MethodGet, "/v1/screenings", q, nil)
}

// ListSources lists the registered source adapters and their health.
func (c *RiskscreenClient) ListSources(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/sources", nil, nil)
}

// ListRules lists the registered detection rule IDs.
func (c *RiskscreenClient) ListRules(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/rules", nil, nil)
}
