// Package client provides an HTTP client for the EstateBI REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/evcraddock/estatebi/internal/auth"
	"github.com/evcraddock/estatebi/internal/dashboard"
	"github.com/evcraddock/estatebi/internal/ingest"
	"github.com/evcraddock/estatebi/internal/property"
	"github.com/evcraddock/estatebi/internal/transaction"
	"github.com/evcraddock/estatebi/internal/upload"
)

// Client is an HTTP client for the EstateBI API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. token may be empty for anonymous calls.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// LoginResponse is the response from POST /api/auth/login.
type LoginResponse struct {
	Token string     `json:"token"`
	User  *auth.User `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if err := c.post(ctx, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the account the client's token belongs to.
func (c *Client) Me(ctx context.Context) (*auth.User, error) {
	var u auth.User
	if err := c.get(ctx, "/api/auth/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/api/health", nil)
}

// Upload sends a property file for ingestion.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (*ingest.BatchReport, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("writing form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var report ingest.BatchReport
	if err := c.do(req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// UploadHistory returns the most recent uploads.
func (c *Client) UploadHistory(ctx context.Context) ([]upload.Entry, error) {
	var entries []upload.Entry
	if err := c.get(ctx, "/api/upload/history", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Template downloads the sample upload CSV.
func (c *Client) Template(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/upload/template", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	var raw rawBody
	if err := c.do(req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ListOptions controls filtering for ListProperties.
type ListOptions struct {
	City   string
	Type   string
	Status string
	Limit  int
}

// ListProperties returns properties, optionally filtered.
func (c *Client) ListProperties(ctx context.Context, opts ListOptions) ([]*property.Property, error) {
	params := url.Values{}
	if opts.City != "" {
		params.Set("city", opts.City)
	}
	if opts.Type != "" {
		params.Set("type", opts.Type)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	path := "/api/properties"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var props []*property.Property
	if err := c.get(ctx, path, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// PropertyDetail is the response from GET /api/properties/{id}.
type PropertyDetail struct {
	property.Property
	Transactions []*transaction.Transaction `json:"transactions"`
}

// GetProperty returns a property with its transactions.
func (c *Client) GetProperty(ctx context.Context, id int64) (*PropertyDetail, error) {
	var resp PropertyDetail
	if err := c.get(ctx, fmt.Sprintf("/api/properties/%d", id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteProperty removes a property.
func (c *Client) DeleteProperty(ctx context.Context, id int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/api/properties/%d", c.baseURL, id), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, nil)
}

// Summary returns the dashboard summary.
func (c *Client) Summary(ctx context.Context) (*dashboard.Summary, error) {
	var s dashboard.Summary
	if err := c.get(ctx, "/api/dashboard/summary", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

// post performs a POST request with a JSON body and decodes the response.
func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

// rawBody receives an undecoded response body.
type rawBody []byte

// do executes an HTTP request with auth header and handles errors.
func (c *Client) do(req *http.Request, result interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			if errResp.Message != "" {
				return fmt.Errorf("%s: %s", errResp.Error, errResp.Message)
			}
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("server error: %s", http.StatusText(resp.StatusCode))
	}

	if raw, ok := result.(*rawBody); ok {
		*raw = respBody
		return nil
	}
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
