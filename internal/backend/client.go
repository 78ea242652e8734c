// Package backend is the client for the precinct REST API that issues
// submission codes and owns their processing status.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/polsek-portal/api/internal/tracking"
)

// Errors returned by the client.
var (
	ErrNotFound    = errors.New("submission not found")
	ErrMissingCode = errors.New("backend response has no code")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Receipt is the backend's answer to a successful submission.
type Receipt struct {
	Code   string `json:"code"`
	Status string `json:"status"`
}

// Record is the processing status of one submission.
type Record struct {
	Code      string    `json:"code"`
	Service   string    `json:"service"`
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Client talks to the backend over HTTP. Retries are left to callers.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Submit posts a citizen submission for kind and returns the issued code.
func (c *Client) Submit(ctx context.Context, kind tracking.Kind, payload json.RawMessage) (Receipt, error) {
	endpoint := c.baseURL + "/api/submissions/" + url.PathEscape(string(kind))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Receipt{}, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var receipt Receipt
	if err := c.do(req, &receipt); err != nil {
		return Receipt{}, fmt.Errorf("submit %s: %w", kind, err)
	}
	if strings.TrimSpace(receipt.Code) == "" {
		return Receipt{}, ErrMissingCode
	}
	return receipt, nil
}

// Status fetches the processing status of code.
func (c *Client) Status(ctx context.Context, code string) (Record, error) {
	endpoint := c.baseURL + "/api/submissions/" + url.PathEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Record{}, fmt.Errorf("build status request: %w", err)
	}

	var rec Record
	if err := c.do(req, &rec); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("status %s: %w", code, err)
	}
	return rec, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} or falls back to the raw body.
func errorMessage(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, 4096))
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &e) == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
