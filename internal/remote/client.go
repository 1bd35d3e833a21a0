package remote

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

	"budget/internal/core"
	"budget/internal/gateway"
)

// genericFailure is surfaced when the service returns an error without a
// parseable message body.
const genericFailure = "request failed"

// StatusError is a non-2xx response from the expense service, carrying the
// server-supplied message when one was present.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote service: %s (status %d)", e.Message, e.StatusCode)
}

// Client serves the persistence contract over HTTP. Every response body is
// normalized before it reaches the caller, so malformed server payloads
// cannot corrupt the working set.
type Client struct {
	baseURL string
	http    *http.Client
	norm    core.Normalizer
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		norm:    core.NewNormalizer(),
	}
}

// List implements gateway.ExpenseLister.
func (c *Client) List(ctx context.Context, params gateway.ListParams) ([]core.Expense, error) {
	query := url.Values{}
	if params.Category != "" {
		query.Set("category", params.Category)
	}
	if params.Range != "" {
		query.Set("range", string(params.Range))
	}

	var raws []core.RawExpense
	if err := c.do(ctx, http.MethodGet, "/expenses", query, nil, &raws); err != nil {
		return nil, err
	}
	return c.norm.NormalizeAll(raws), nil
}

// Create implements gateway.ExpenseWriter.
func (c *Client) Create(ctx context.Context, payload core.NewExpense) (core.Expense, error) {
	if err := payload.Validate(); err != nil {
		return core.Expense{}, err
	}

	var raw core.RawExpense
	if err := c.do(ctx, http.MethodPost, "/expenses", nil, payload, &raw); err != nil {
		return core.Expense{}, err
	}
	return c.norm.Normalize(raw), nil
}

// Update implements gateway.ExpenseWriter.
func (c *Client) Update(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error) {
	if err := patch.Validate(); err != nil {
		return core.Expense{}, err
	}

	var raw core.RawExpense
	err := c.do(ctx, http.MethodPatch, "/expenses/"+url.PathEscape(id), nil, patch, &raw)
	if err != nil {
		return core.Expense{}, err
	}
	return c.norm.Normalize(raw), nil
}

// Delete implements gateway.ExpenseWriter.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id), nil, nil, nil)
}

// ByCategory implements gateway.InsightsReader; aggregation happens
// server-side.
func (c *Client) ByCategory(ctx context.Context, rng core.Range) ([]core.CategoryTotal, error) {
	var rows []core.CategoryTotal
	if err := c.do(ctx, http.MethodGet, "/insights/by-category", rangeQuery(rng), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// OverTime implements gateway.InsightsReader.
func (c *Client) OverTime(ctx context.Context, rng core.Range) ([]core.DayTotal, error) {
	var rows []core.DayTotal
	if err := c.do(ctx, http.MethodGet, "/insights/over-time", rangeQuery(rng), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// summaryPayload is the wire shape of the summary endpoint; field naming
// differs from the internal one.
type summaryPayload struct {
	TotalSpent   float64 `json:"total_spent"`
	ExpenseCount int     `json:"expense_count"`
	AvgExpense   float64 `json:"avg_expense"`
}

// Summary implements gateway.InsightsReader, mapping the wire field names
// onto the internal shape.
func (c *Client) Summary(ctx context.Context, rng core.Range) (core.Summary, error) {
	var payload summaryPayload
	if err := c.do(ctx, http.MethodGet, "/insights/summary", rangeQuery(rng), nil, &payload); err != nil {
		return core.Summary{}, err
	}
	return core.Summary{Total: payload.TotalSpent, Count: payload.ExpenseCount}, nil
}

func rangeQuery(rng core.Range) url.Values {
	if rng == "" {
		return nil
	}
	return url.Values{"range": []string{string(rng)}}
}

// do runs one request. A 204 response is success with no body; any other
// non-2xx status becomes a StatusError with the server's message when the
// body carries one.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusNotFound {
			return gateway.ErrNotFound
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return genericFailure
}
