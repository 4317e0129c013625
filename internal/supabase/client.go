// Package supabase is a small client for the project's Supabase table,
// speaking the PostgREST dialect: filters, offset/limit paging and exact
// counts via the Content-Range header.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Status markers written to the PAINEL_NEW column.
const (
	StatusOK    = "Cadastro OK"
	StatusError = "Erro no Cadastro"
)

// pendingFilter matches rows not yet registered: status unset or different
// from the success marker.
const pendingFilter = "(PAINEL_NEW.is.null,PAINEL_NEW.neq." + StatusOK + ")"

// Row is one registration record from the backend table. JSON tags match the
// table's column names.
type Row struct {
	ID      int64  `json:"id"`
	ISRC    string `json:"ISRC"`
	Artist  string `json:"ARTISTA"`
	Holders string `json:"TITULARES"`
	Status  string `json:"PAINEL_NEW"`
}

// Page restricts a fetch to one worker's offset/limit slice.
type Page struct {
	Offset int
	Limit  int
}

// Client talks to one table through the Supabase REST endpoint.
type Client struct {
	baseURL string
	apiKey  string
	table   string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a Client for the given project URL, API key and table.
func NewClient(baseURL, apiKey, table string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		table:   table,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (c *Client) tableURL(query url.Values) string {
	return c.baseURL + "/rest/v1/" + c.table + "?" + query.Encode()
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CountPending returns the exact number of rows still pending. It issues a
// HEAD request so only headers travel; the total comes from Content-Range
// ("<start>-<end>/<total>").
func (c *Client) CountPending(ctx context.Context) (int, error) {
	query := url.Values{}
	query.Set("select", "id")
	query.Set("or", pendingFilter)
	query.Set("limit", "1")

	req, err := c.newRequest(ctx, http.MethodHead, c.tableURL(query), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("count pending: unexpected status %d", resp.StatusCode)
	}

	contentRange := resp.Header.Get("Content-Range")
	if contentRange == "" {
		c.logger.Warn("count response missing Content-Range header, assuming zero")
		return 0, nil
	}
	parts := strings.Split(contentRange, "/")
	total, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, fmt.Errorf("parse Content-Range %q: %w", contentRange, err)
	}
	return total, nil
}

// FetchPending returns pending rows ordered by id ascending. A nil page
// fetches the whole pending set; otherwise only the page's offset/limit
// window, so slices stay consistent across workers.
func (c *Client) FetchPending(ctx context.Context, page *Page) ([]Row, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("or", pendingFilter)
	query.Set("order", "id.asc")
	if page != nil {
		query.Set("offset", strconv.Itoa(page.Offset))
		query.Set("limit", strconv.Itoa(page.Limit))
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.tableURL(query), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch pending rows: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch pending rows: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode pending rows: %w", err)
	}
	return rows, nil
}

// UpdateStatus writes the status marker for the row with the given ISRC.
func (c *Client) UpdateStatus(ctx context.Context, isrc, status string) error {
	query := url.Values{}
	query.Set("ISRC", "eq."+isrc)

	body, err := json.Marshal(map[string]string{"PAINEL_NEW": status})
	if err != nil {
		return fmt.Errorf("marshal status update: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPatch, c.tableURL(query), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("update status for %s: %w", isrc, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("update status for %s: status %d: %s", isrc, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// Insert creates one record. Empty fields must already be omitted from the
// map; the backend treats absent and null differently on insert.
func (c *Client) Insert(ctx context.Context, record map[string]string) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/rest/v1/"+c.table, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("insert record: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// DeleteAll removes every row in the table. The ISRC=neq. filter matches all
// rows (every record has an ISRC), which PostgREST requires over an
// unfiltered delete.
func (c *Client) DeleteAll(ctx context.Context) error {
	query := url.Values{}
	query.Set("ISRC", "neq.")

	req, err := c.newRequest(ctx, http.MethodDelete, c.tableURL(query), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("clear table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("clear table: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// Ping performs a lightweight read to verify the backend is reachable and
// the table exists.
func (c *Client) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("limit", "1")

	req, err := c.newRequest(ctx, http.MethodGet, c.tableURL(query), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ping table: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
