package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wifstudio/catalog-mirror/pkg/config"
	pkgerrors "github.com/wifstudio/catalog-mirror/pkg/errors"
)

const errorBodyReadLimit int64 = 1024

// Client wraps the Airtable records API for one base.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	baseID     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Airtable client for the configured base.
func NewClient(cfg config.AirtableConfig, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      strings.TrimSpace(cfg.Token),
		baseID:     strings.TrimSpace(cfg.BaseID),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Record is one raw remote record: the remote identity plus its field map.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Attachment is one entry of an attachment-typed field.
type Attachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

// ListRecords fetches every record of the given table, following the offset
// cursor until the remote reports no more pages. The fetch is sequential and
// fails as a whole: callers must not reconcile against a partial snapshot.
func (c *Client) ListRecords(ctx context.Context, tableID string) ([]Record, error) {
	if strings.TrimSpace(tableID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "table id is required")
	}

	var records []Record
	offset := ""

	for {
		page, err := c.fetchPage(ctx, tableID, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, page.Records...)
		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

func (c *Client) fetchPage(ctx context.Context, tableID, offset string) (*listResponse, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(tableID))
	if offset != "" {
		endpoint += "?offset=" + url.QueryEscape(offset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building airtable request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching airtable page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("airtable returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var page listResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding airtable page")
	}
	return &page, nil
}
