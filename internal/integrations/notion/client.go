package notion

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

	"github.com/vthunder/taskdesk/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	notionVersion  = "2022-06-28"
	defaultPage    = 100
)

// Client is a Notion API client
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// Config holds client settings. Zero values fall back to defaults.
type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a client from explicit configuration
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("notion token not set")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		token:   cfg.Token,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// request makes an authenticated request to the Notion API
func (c *Client) request(ctx context.Context, op, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRemoteCall("notion", op, 0, started)
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	metrics.ObserveRemoteCall("notion", op, resp.StatusCode, started)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: string(respBody)}
		var errResp ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
			apiErr.Code = errResp.Code
			apiErr.Message = errResp.Message
		}
		return nil, apiErr
	}

	return respBody, nil
}

// ErrorResponse is a Notion API error body
type ErrorResponse struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIError is returned for any non-2xx response
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notion API error (%d %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("notion API error (%d): %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a Notion 404 / object_not_found
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusNotFound || apiErr.Code == "object_not_found"
}

// SearchParams for the search endpoint
type SearchParams struct {
	Query       string        `json:"query,omitempty"`
	Filter      *SearchFilter `json:"filter,omitempty"`
	Sort        *SearchSort   `json:"sort,omitempty"`
	StartCursor string        `json:"start_cursor,omitempty"`
	PageSize    int           `json:"page_size,omitempty"`
}

type SearchFilter struct {
	Property string `json:"property"`
	Value    string `json:"value"` // "page" or "database"
}

type SearchSort struct {
	Direction string `json:"direction"` // "ascending" or "descending"
	Timestamp string `json:"timestamp"` // "last_edited_time"
}

// SearchResult is the response from search
type SearchResult struct {
	Object     string   `json:"object"`
	Results    []Object `json:"results"`
	NextCursor string   `json:"next_cursor,omitempty"`
	HasMore    bool     `json:"has_more"`
}

// Object is a generic Notion object (page or database)
type Object struct {
	Object         string              `json:"object"` // "page" or "database"
	ID             string              `json:"id"`
	CreatedTime    string              `json:"created_time"`
	LastEditedTime string              `json:"last_edited_time"`
	CreatedBy      *User               `json:"created_by,omitempty"`
	Title          []RichText          `json:"title,omitempty"`
	Properties     map[string]Property `json:"properties,omitempty"`
	URL            string              `json:"url,omitempty"`
	Parent         *Parent             `json:"parent,omitempty"`
	Archived       bool                `json:"archived,omitempty"`
}

// RichText is a Notion rich text object
type RichText struct {
	Type      string   `json:"type,omitempty"`
	PlainText string   `json:"plain_text,omitempty"`
	Text      *TextObj `json:"text,omitempty"`
}

type TextObj struct {
	Content string `json:"content"`
}

// Content returns the plain text, falling back to the raw text content
// (request-side values carry no plain_text).
func (r RichText) Content() string {
	if r.PlainText != "" {
		return r.PlainText
	}
	if r.Text != nil {
		return r.Text.Content
	}
	return ""
}

// Parent describes the parent of an object
type Parent struct {
	Type       string `json:"type,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
	Workspace  bool   `json:"workspace,omitempty"`
}

// Property is a Notion property value. The same shape is used for reads and
// writes; writes leave ID and Type empty.
type Property struct {
	ID          string         `json:"id,omitempty"`
	Type        string         `json:"type,omitempty"`
	Name        string         `json:"name,omitempty"`
	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Date        *DateProperty  `json:"date,omitempty"`
	People      []User         `json:"people,omitempty"`
	Checkbox    bool           `json:"checkbox,omitempty"`
	URL         string         `json:"url,omitempty"`
	Status      *SelectOption  `json:"status,omitempty"`
}

type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type DateProperty struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// Search searches pages and databases
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.PageSize == 0 {
		params.PageSize = defaultPage
	}

	data, err := c.request(ctx, "search", "POST", "/search", params)
	if err != nil {
		return nil, err
	}

	var result SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal search result: %w", err)
	}

	return &result, nil
}

// CreatePageParams is the body of POST /pages
type CreatePageParams struct {
	Parent     Parent              `json:"parent"`
	Properties map[string]Property `json:"properties"`
}

// CreatePage creates a page (a database row when the parent is a database)
func (c *Client) CreatePage(ctx context.Context, params CreatePageParams) (*Object, error) {
	data, err := c.request(ctx, "create_page", "POST", "/pages", params)
	if err != nil {
		return nil, err
	}

	var page Object
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("unmarshal page: %w", err)
	}

	return &page, nil
}

// UpdatePage patches the given properties; properties not named are left alone
func (c *Client) UpdatePage(ctx context.Context, pageID string, properties map[string]Property) (*Object, error) {
	body := map[string]any{"properties": properties}
	data, err := c.request(ctx, "update_page", "PATCH", "/pages/"+url.PathEscape(pageID), body)
	if err != nil {
		return nil, err
	}

	var page Object
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("unmarshal page: %w", err)
	}

	return &page, nil
}

// GetPage retrieves a page by ID
func (c *Client) GetPage(ctx context.Context, pageID string) (*Object, error) {
	data, err := c.request(ctx, "get_page", "GET", "/pages/"+url.PathEscape(pageID), nil)
	if err != nil {
		return nil, err
	}

	var page Object
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("unmarshal page: %w", err)
	}

	return &page, nil
}

// GetDatabase retrieves a database schema by ID
func (c *Client) GetDatabase(ctx context.Context, databaseID string) (*Database, error) {
	data, err := c.request(ctx, "get_database", "GET", "/databases/"+url.PathEscape(databaseID), nil)
	if err != nil {
		return nil, err
	}

	var db Database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("unmarshal database: %w", err)
	}

	return &db, nil
}

// Database is a Notion database with schema
type Database struct {
	Object         string                    `json:"object"`
	ID             string                    `json:"id"`
	Title          []RichText                `json:"title"`
	Properties     map[string]PropertySchema `json:"properties"`
	URL            string                    `json:"url"`
	CreatedTime    string                    `json:"created_time"`
	LastEditedTime string                    `json:"last_edited_time"`
}

// PropertySchema describes a database property
type PropertySchema struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	Select      *SelectSchema `json:"select,omitempty"`
	MultiSelect *SelectSchema `json:"multi_select,omitempty"`
	Status      *StatusSchema `json:"status,omitempty"`
}

type SelectSchema struct {
	Options []SelectOption `json:"options"`
}

type StatusSchema struct {
	Options []SelectOption `json:"options"`
	Groups  []StatusGroup  `json:"groups,omitempty"`
}

type StatusGroup struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Color     string   `json:"color"`
	OptionIDs []string `json:"option_ids"`
}

// QueryParams for querying a database
type QueryParams struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"` // "created_time" or "last_edited_time"
	Direction string `json:"direction"`           // "ascending" or "descending"
}

const (
	Ascending  = "ascending"
	Descending = "descending"
)

// QueryResult is the response from querying a database
type QueryResult struct {
	Object     string   `json:"object"`
	Results    []Object `json:"results"`
	NextCursor string   `json:"next_cursor,omitempty"`
	HasMore    bool     `json:"has_more"`
}

// QueryDatabase queries a database with optional filter and sort
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, params QueryParams) (*QueryResult, error) {
	if params.PageSize == 0 {
		params.PageSize = defaultPage
	}

	data, err := c.request(ctx, "query_database", "POST", "/databases/"+url.PathEscape(databaseID)+"/query", params)
	if err != nil {
		return nil, err
	}

	var result QueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal query result: %w", err)
	}

	return &result, nil
}

// GetTitle extracts the plain text title from a page or database
func (o *Object) GetTitle() string {
	// Check title field (for databases)
	if len(o.Title) > 0 {
		return o.Title[0].Content()
	}

	// Check properties for title type (for pages)
	for _, prop := range o.Properties {
		if prop.Type == "title" && len(prop.Title) > 0 {
			return prop.Title[0].Content()
		}
	}

	return ""
}

// GetPropertyText gets the text value of a property
func (o *Object) GetPropertyText(name string) string {
	prop, ok := o.Properties[name]
	if !ok {
		return ""
	}

	switch prop.Type {
	case "title":
		return PlainText(prop.Title)
	case "rich_text":
		return PlainText(prop.RichText)
	case "select":
		if prop.Select != nil {
			return prop.Select.Name
		}
	case "status":
		if prop.Status != nil {
			return prop.Status.Name
		}
	case "url":
		return prop.URL
	case "number":
		if prop.Number != nil {
			return fmt.Sprintf("%v", *prop.Number)
		}
	case "checkbox":
		return fmt.Sprintf("%v", prop.Checkbox)
	case "date":
		if prop.Date != nil {
			return prop.Date.Start
		}
	case "people":
		var names []string
		for _, u := range prop.People {
			names = append(names, u.Name)
		}
		return strings.Join(names, ", ")
	case "multi_select":
		var names []string
		for _, opt := range prop.MultiSelect {
			names = append(names, opt.Name)
		}
		if len(names) > 0 {
			return fmt.Sprintf("%v", names)
		}
	}

	return ""
}

// PlainText concatenates the text of every rich text run.
func PlainText(parts []RichText) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.Content())
	}
	return sb.String()
}
