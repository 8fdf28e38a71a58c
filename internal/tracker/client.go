// Package tracker is the client for the upstream transaction-tracking API.
// It enumerates managers and drains their paginated transaction feeds.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"amplo/internal/core"
)

const DefaultPageLimit = 100

// DateRange bounds a transaction fetch. Zero bounds are omitted from the query.
type DateRange struct {
	Start core.Date
	End   core.Date
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	pageLimit  int
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPageLimit overrides the per-page transaction count.
func WithPageLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageLimit = n
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		pageLimit:  DefaultPageLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Managers fetches the manager list. A failure here is fatal for the whole
// refresh: with no managers there is nothing to paginate.
func (c *Client) Managers(ctx context.Context) ([]core.Manager, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/managers", nil)
	if err != nil {
		return nil, fmt.Errorf("build managers request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch managers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch managers: unexpected status %d", resp.StatusCode)
	}

	var managers []core.Manager
	if err := json.NewDecoder(resp.Body).Decode(&managers); err != nil {
		return nil, fmt.Errorf("decode managers: %w", err)
	}
	return managers, nil
}

// ManagerTransactions drains the paginated feed for one manager. Pagination
// stops at the first empty page or the first non-success status; neither is
// an error and neither is retried.
func (c *Client) ManagerTransactions(ctx context.Context, m core.Manager, window DateRange) ([]core.Transaction, error) {
	var out []core.Transaction
	for page := 1; ; page++ {
		txs, ok, err := c.fetchPage(ctx, m, page, window)
		if err != nil {
			return out, err
		}
		if !ok || len(txs) == 0 {
			return out, nil
		}
		out = append(out, txs...)
	}
}

// fetchPage returns one page. ok=false signals a non-success status, which
// silently terminates pagination for this manager.
func (c *Client) fetchPage(ctx context.Context, m core.Manager, page int, window DateRange) ([]core.Transaction, bool, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(c.pageLimit))
	if !window.Start.IsZero() {
		q.Set("startDate", window.Start.Format("2006-01-02"))
	}
	if !window.End.IsZero() {
		q.Set("endDate", window.End.Format("2006-01-02"))
	}

	u := fmt.Sprintf("%s/api/transactions/manager/%d?%s", c.baseURL, m.ID, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build transactions request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetch transactions page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		slog.DebugContext(ctx, "Pagination stopped on non-success status",
			"manager", m.Name, "page", page, "status", resp.StatusCode)
		return nil, false, nil
	}

	var body transactionPage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, fmt.Errorf("decode transactions page %d: %w", page, err)
	}

	txs := make([]core.Transaction, 0, len(body.Transactions))
	for _, raw := range body.Transactions {
		txs = append(txs, normalize(m, raw))
	}
	return txs, true, nil
}

// FetchAll aggregates every manager's transactions into one in-memory table.
// A per-manager failure is logged as a warning and the loop continues with
// the next manager, keeping whatever pages were fetched before the failure;
// this is the only partial-failure policy in the system.
func (c *Client) FetchAll(ctx context.Context, window DateRange) ([]core.Transaction, error) {
	managers, err := c.Managers(ctx)
	if err != nil {
		return nil, err
	}

	var all []core.Transaction
	for _, m := range managers {
		txs, err := c.ManagerTransactions(ctx, m, window)
		// Pages fetched before a mid-pagination failure are kept.
		all = append(all, txs...)
		if err != nil {
			slog.WarnContext(ctx, "Stopping manager after fetch error",
				"manager", m.Name, "manager_id", m.ID, "error", err, "fetched_so_far", len(txs))
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
		}
	}
	return all, nil
}
