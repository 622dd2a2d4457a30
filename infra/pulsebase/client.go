// Package pulsebase implements the backend boundaries against a hosted
// Pulsebase project: documents and queries over REST, live queries over
// SSE, plus the auth and blob endpoints.
package pulsebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// TokenProvider supplies the session token attached to every request.
// An empty token means the request goes out unauthenticated.
type TokenProvider interface {
	SessionToken() string
}

// Client is a thin HTTP wrapper for the Pulsebase API. It handles base
// URL construction, project key and session token injection, and the
// JSON envelope.
type Client struct {
	baseURL string
	apiKey  string
	tokens  TokenProvider
	http    *http.Client
}

// NewClient creates a Pulsebase API client.
func NewClient(baseURL, apiKey string, tokens TokenProvider) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		tokens:  tokens,
		http:    &http.Client{},
	}
}

// apiError is the wire shape of a failed call.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StatusError is a non-2xx API response.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("pulsebase: %s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("pulsebase: status %d", e.Status)
}

// do performs one authenticated JSON call. in and out may be nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	if token := c.tokens.SessionToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		_ = json.Unmarshal(data, &ae)
		return &StatusError{Status: resp.StatusCode, Code: ae.Error.Code, Message: ae.Error.Message}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parsing response from %s: %w", path, err)
		}
	}
	return nil
}
