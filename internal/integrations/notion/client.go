// Package notion is a minimal Notion API client covering what the bot
// needs: creating task pages in a database and checking connectivity.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	notionVersion  = "2022-06-28"
)

// Client is a Notion API client bound to one task database.
type Client struct {
	token      string
	databaseID string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given integration token and database.
func NewClient(token, databaseID string) *Client {
	return &Client{
		token:      token,
		databaseID: databaseID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// request makes an authenticated request to the Notion API
func (c *Client) request(ctx context.Context, method, path string, body any) ([]byte, error) {
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

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
			return nil, fmt.Errorf("notion API error (%d): %s", resp.StatusCode, errResp.Message)
		}
		return nil, fmt.Errorf("notion API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// ErrorResponse is a Notion API error
type ErrorResponse struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
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

type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type DateProperty struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// PageParams describes a task page to create.
type PageParams struct {
	Title    string
	Status   string
	Priority string
	DueDate  string // YYYY-MM-DD
	Notes    string
}

// pageProperty is one property value in a page creation request.
type pageProperty struct {
	Title    []RichText    `json:"title,omitempty"`
	Status   *SelectOption `json:"status,omitempty"`
	Select   *SelectOption `json:"select,omitempty"`
	Date     *DateProperty `json:"date,omitempty"`
	RichText []RichText    `json:"rich_text,omitempty"`
}

type createPageRequest struct {
	Parent     parent                  `json:"parent"`
	Properties map[string]pageProperty `json:"properties"`
}

type parent struct {
	DatabaseID string `json:"database_id"`
}

type createPageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreatePage creates a task page in the configured database and returns
// the page URL.
func (c *Client) CreatePage(ctx context.Context, p PageParams) (string, error) {
	req := createPageRequest{
		Parent: parent{DatabaseID: c.databaseID},
		Properties: map[string]pageProperty{
			"Title": {
				Title: []RichText{{Text: &TextObj{Content: p.Title}}},
			},
			"Status": {
				Status: &SelectOption{Name: p.Status},
			},
			"Priority": {
				Select: &SelectOption{Name: p.Priority},
			},
			"Due Date": {
				Date: &DateProperty{Start: p.DueDate},
			},
			"notes": {
				RichText: []RichText{{Text: &TextObj{Content: p.Notes}}},
			},
		},
	}

	data, err := c.request(ctx, "POST", "/pages", req)
	if err != nil {
		return "", err
	}

	var resp createPageResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("unmarshal created page: %w", err)
	}
	if resp.URL == "" {
		return "No link available", nil
	}
	return resp.URL, nil
}

// Database is a Notion database, reduced to what the health check reads.
type Database struct {
	Object string     `json:"object"`
	ID     string     `json:"id"`
	Title  []RichText `json:"title"`
	URL    string     `json:"url"`
}

// GetDatabase retrieves the configured database. Used as a connectivity
// health check by the /status command.
func (c *Client) GetDatabase(ctx context.Context) (*Database, error) {
	data, err := c.request(ctx, "GET", "/databases/"+c.databaseID, nil)
	if err != nil {
		return nil, err
	}

	var db Database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("unmarshal database: %w", err)
	}

	return &db, nil
}
