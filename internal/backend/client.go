// Package backend is the HTTP/JSON client for the ledger REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ledger/internal/core"
	"ledger/internal/ports"
)

// maxErrorBody bounds how much of a failed response is read for diagnostics.
const maxErrorBody = 64 << 10

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	// Detail is the backend-supplied "detail" message, when it was a string.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.URL, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s failed with status %d", e.Method, e.URL, e.StatusCode)
}

// DetailOr returns the backend detail message for err, or fallback when err
// carries none.
func DetailOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets a per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// Client talks to the ledger REST API. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    http.Header
	logger     *slog.Logger
}

var _ ports.Ledger = (*Client)(nil)

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		headers: http.Header{
			"Accept": []string{"application/json"},
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListExpenses(ctx context.Context, p core.Period) ([]core.Expense, error) {
	var out []core.Expense
	if err := c.do(ctx, http.MethodGet, "/expenses/", monthQuery(p), nil, &out); err != nil {
		return nil, fmt.Errorf("list expenses (%s): %w", p, err)
	}
	if out == nil {
		out = []core.Expense{}
	}
	return out, nil
}

func (c *Client) ListIncome(ctx context.Context, p core.Period) ([]core.Income, error) {
	var out []core.Income
	if err := c.do(ctx, http.MethodGet, "/income/", monthQuery(p), nil, &out); err != nil {
		return nil, fmt.Errorf("list income (%s): %w", p, err)
	}
	if out == nil {
		out = []core.Income{}
	}
	return out, nil
}

func (c *Client) Summary(ctx context.Context, p core.Period) (core.MonthSummary, error) {
	var out core.MonthSummary
	if err := c.do(ctx, http.MethodGet, "/summary/", monthQuery(p), nil, &out); err != nil {
		return core.MonthSummary{}, fmt.Errorf("get summary (%s): %w", p, err)
	}
	if out.CategorySummary == nil {
		out.CategorySummary = []core.CategoryTotal{}
	}
	return out, nil
}

type createdResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

func (c *Client) CreateExpense(ctx context.Context, e core.NewExpense) (int64, error) {
	var out createdResponse
	if err := c.do(ctx, http.MethodPost, "/expenses/", nil, e, &out); err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}
	return out.ID, nil
}

func (c *Client) CreateIncome(ctx context.Context, i core.NewIncome) (int64, error) {
	var out createdResponse
	if err := c.do(ctx, http.MethodPost, "/income/", nil, i, &out); err != nil {
		return 0, fmt.Errorf("create income: %w", err)
	}
	return out.ID, nil
}

func (c *Client) DeleteExpense(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, "/expenses/"+strconv.FormatInt(id, 10), nil, nil, nil); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteIncome(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, "/income/"+strconv.FormatInt(id, 10), nil, nil, nil); err != nil {
		return fmt.Errorf("delete income %d: %w", id, err)
	}
	return nil
}

// Ping checks that the backend answers the summary endpoint for the current month.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Summary(ctx, core.PeriodOf(time.Now()))
	return err
}

func monthQuery(p core.Period) url.Values {
	return url.Values{
		"month": []string{strconv.Itoa(p.Month)},
		"year":  []string{strconv.Itoa(p.Year)},
	}
}

// do performs one request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Backend request failed",
			"method", method,
			"url", fullURL,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:     method,
			URL:        fullURL,
			StatusCode: resp.StatusCode,
			Detail:     readDetail(resp.Body),
		}
		c.logger.WarnContext(ctx, "Backend error response",
			"method", method,
			"url", fullURL,
			"status", resp.StatusCode,
			"detail", apiErr.Detail,
			"duration_ms", time.Since(start).Milliseconds())
		return apiErr
	}

	c.logger.DebugContext(ctx, "Backend request completed",
		"method", method,
		"url", fullURL,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readDetail extracts a string "detail" field from an error body. Structured
// details (e.g. validation error lists) are not surfaced.
func readDetail(r io.Reader) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(r, maxErrorBody)).Decode(&payload); err != nil {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return strings.TrimSpace(detail)
}
