package supabase

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
)

// DefaultTimeout bounds every request made by a Client built with NewClient
const DefaultTimeout = 15 * time.Second

// Client represents a Supabase client
type Client struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
}

// NewClient creates a new Supabase client
func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		URL:        strings.TrimRight(baseURL, "/"),
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// Query executes a query on a Supabase table.
//
// Keys are PostgREST parameters: column filters ("user_id": "eq.<id>"),
// "select", "order", "limit", "or" and "and". Values are formatted with %v.
func (c *Client) Query(ctx context.Context, table string, query map[string]interface{}) ([]byte, error) {
	return c.do(ctx, request{
		method: http.MethodGet,
		path:   "/rest/v1/" + table,
		query:  query,
	})
}

// QuerySingle executes a query expecting exactly one row. A missing row
// surfaces as an error matching ErrNoRows.
func (c *Client) QuerySingle(ctx context.Context, table string, query map[string]interface{}) ([]byte, error) {
	return c.do(ctx, request{
		method: http.MethodGet,
		path:   "/rest/v1/" + table,
		query:  query,
		accept: "application/vnd.pgrst.object+json",
	})
}

// Count returns the number of rows matching the query
func (c *Client) Count(ctx context.Context, table string, query map[string]interface{}) (int, error) {
	q := make(map[string]interface{}, len(query)+1)
	for k, v := range query {
		q[k] = v
	}
	q["select"] = "id"

	body, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/rest/v1/" + table,
		query:  q,
	})
	if err != nil {
		return 0, err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode rows: %w", err)
	}
	return len(rows), nil
}

// Insert inserts a record into a Supabase table
func (c *Client) Insert(ctx context.Context, table string, data interface{}) ([]byte, error) {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/" + table,
		body:   data,
		prefer: "return=representation",
	})
}

// Update updates a record in a Supabase table
func (c *Client) Update(ctx context.Context, table string, id string, data interface{}) ([]byte, error) {
	return c.UpdateWhere(ctx, table, map[string]interface{}{"id": "eq." + id}, data)
}

// Delete deletes a record from a Supabase table
func (c *Client) Delete(ctx context.Context, table string, id string) error {
	return c.DeleteWhere(ctx, table, map[string]interface{}{"id": "eq." + id})
}

// Upsert inserts or updates a record in a Supabase table
// onConflict specifies the columns to detect conflicts (e.g., "user_id,insight_id")
func (c *Client) Upsert(ctx context.Context, table string, data interface{}, onConflict string) ([]byte, error) {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/" + table,
		query:  map[string]interface{}{"on_conflict": onConflict},
		body:   data,
		// resolution=merge-duplicates will update existing rows
		prefer: "return=representation,resolution=merge-duplicates",
	})
}

// InsertIgnoreDuplicates inserts a record and silently skips it when it
// conflicts on onConflict. The returned body is empty for a skipped row.
func (c *Client) InsertIgnoreDuplicates(ctx context.Context, table string, data interface{}, onConflict string) ([]byte, error) {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/" + table,
		query:  map[string]interface{}{"on_conflict": onConflict},
		body:   data,
		prefer: "return=representation,resolution=ignore-duplicates",
	})
}

// DeleteWhere deletes records matching a query
func (c *Client) DeleteWhere(ctx context.Context, table string, query map[string]interface{}) error {
	_, err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/rest/v1/" + table,
		query:  query,
	})
	return err
}

// UpdateWhere updates records matching a query
func (c *Client) UpdateWhere(ctx context.Context, table string, query map[string]interface{}, data interface{}) ([]byte, error) {
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/rest/v1/" + table,
		query:  query,
		body:   data,
		prefer: "return=representation",
	})
}

type request struct {
	method string
	path   string
	query  map[string]interface{}
	body   interface{}
	// token replaces the service key as bearer when set
	token  string
	prefer string
	accept string
}

func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	var reader io.Reader
	if r.body != nil {
		jsonData, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.URL+r.path, reader)
	if err != nil {
		return nil, err
	}

	if len(r.query) > 0 {
		req.URL.RawQuery = encodeQuery(r.query)
	}

	bearer := c.ServiceKey
	if r.token != "" {
		bearer = r.token
	}
	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}
	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase request %s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, parseError(resp.StatusCode, body)
	}

	return body, nil
}

func encodeQuery(query map[string]interface{}) string {
	q := url.Values{}
	for k, v := range query {
		q.Add(k, fmt.Sprintf("%v", v))
	}
	return q.Encode()
}
