// Package saveclient talks the two-phase save protocol with the contracts
// backend: a draft payload is first submitted for validation, which yields
// either path-keyed field errors or an opaque save token, and the token is
// then committed to obtain the authoritative persisted document. The client
// never computes financial totals; the payload carries zeros and the
// backend's recalculation is the value of record.
package saveclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oakhaven/contracts/internal/model"
)

// Error is a structured backend failure. Fields is populated only for
// validation-phase rejections.
type Error struct {
	StatusCode int               `json:"-"`
	Message    string            `json:"error"`
	Fields     map[string]string `json:"errors,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Fields) > 0 {
		return fmt.Sprintf("contract save rejected: status=%d fields=%d", e.StatusCode, len(e.Fields))
	}
	return fmt.Sprintf("contract save failed: status=%d message=%s", e.StatusCode, e.Message)
}

// FieldErrors satisfies the session's field-error surface.
func (e *Error) FieldErrors() map[string]string {
	return e.Fields
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithAuthToken(token string) Option {
	return func(c *Client) { c.authToken = token }
}

type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type validateResponse struct {
	Token string `json:"token"`
}

// Get fetches a persisted contract. A 404 comes back as (nil, nil).
func (c *Client) Get(ctx context.Context, id string) (*model.Contract, error) {
	var doc model.Contract
	status, err := c.do(ctx, http.MethodGet, "/contracts/"+url.PathEscape(id), nil, &doc)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate submits the candidate payload. On success the backend stores it
// and returns the save token; on rejection the error carries the field map.
func (c *Client) Validate(ctx context.Context, payload *model.Contract) (string, error) {
	var resp validateResponse
	if _, err := c.do(ctx, http.MethodPost, "/contracts/validate", payload, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &Error{StatusCode: http.StatusOK, Message: "backend returned no save token"}
	}
	return resp.Token, nil
}

// Commit exchanges a save token for the recalculated persisted document.
func (c *Client) Commit(ctx context.Context, token string) (*model.Contract, error) {
	var doc model.Contract
	if _, err := c.do(ctx, http.MethodPost, "/contracts/commit/"+url.PathEscape(token), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Save runs the full exchange. A validation failure short-circuits before
// any token is consumed; a commit failure surfaces verbatim so the caller
// can retry without re-entering data.
func (c *Client) Save(ctx context.Context, payload *model.Contract) (*model.Contract, error) {
	token, err := c.Validate(ctx, payload)
	if err != nil {
		return nil, err
	}
	return c.Commit(ctx, token)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || (apiErr.Message == "" && len(apiErr.Fields) == 0) {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return resp.StatusCode, apiErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
