package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("secret-token", "db-123")
	c.baseURL = srv.URL
	return c
}

func TestCreatePage(t *testing.T) {
	var captured createPageRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/pages" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("Unexpected auth header: %q", got)
		}
		if got := r.Header.Get("Notion-Version"); got != notionVersion {
			t.Errorf("Unexpected version header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("Decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id":  "page-1",
			"url": "https://notion.so/page-1",
		})
	})

	url, err := c.CreatePage(context.Background(), PageParams{
		Title:    "Buy groceries",
		Status:   "Not started",
		Priority: "Medium",
		DueDate:  "2026-03-10",
		Notes:    "Created via Telegram bot",
	})
	if err != nil {
		t.Fatalf("CreatePage failed: %v", err)
	}
	if url != "https://notion.so/page-1" {
		t.Errorf("Unexpected URL: %q", url)
	}

	if captured.Parent.DatabaseID != "db-123" {
		t.Errorf("Expected parent db-123, got %q", captured.Parent.DatabaseID)
	}
	title := captured.Properties["Title"]
	if len(title.Title) != 1 || title.Title[0].Text.Content != "Buy groceries" {
		t.Errorf("Unexpected title property: %+v", title)
	}
	if captured.Properties["Status"].Status.Name != "Not started" {
		t.Error("Expected status 'Not started'")
	}
	if captured.Properties["Priority"].Select.Name != "Medium" {
		t.Error("Expected priority 'Medium'")
	}
	if captured.Properties["Due Date"].Date.Start != "2026-03-10" {
		t.Error("Expected due date 2026-03-10")
	}
}

func TestCreatePageAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorResponse{
			Object:  "error",
			Status:  400,
			Code:    "validation_error",
			Message: "Status is expected to be status",
		})
	})

	_, err := c.CreatePage(context.Background(), PageParams{Title: "x"})
	if err == nil {
		t.Fatal("Expected API error")
	}
	if got := err.Error(); got != "notion API error (400): Status is expected to be status" {
		t.Errorf("Unexpected error text: %q", got)
	}
}

func TestGetDatabase(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/databases/db-123" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Database{
			Object: "database",
			ID:     "db-123",
			Title:  []RichText{{PlainText: "Tasks"}},
		})
	})

	db, err := c.GetDatabase(context.Background())
	if err != nil {
		t.Fatalf("GetDatabase failed: %v", err)
	}
	if db.ID != "db-123" {
		t.Errorf("Unexpected database ID: %q", db.ID)
	}
}
