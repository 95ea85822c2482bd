package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleFeed = `{
	"version": "https://jsonfeed.org/version/1.1",
	"title": "Newest extensions",
	"items": [
		{
			"id": "https://www.raycast.com/acme/widget",
			"url": "https://www.raycast.com/acme/widget",
			"title": "Widget",
			"summary": "A widget for everything",
			"date_modified": "2024-06-01T12:00:00Z",
			"authors": [{"name": "Acme"}]
		},
		{
			"id": "https://www.raycast.com/acme/gadget",
			"url": "https://www.raycast.com/acme/gadget",
			"title": "Gadget",
			"summary": "A gadget",
			"date_modified": "2024-06-02T09:30:00Z",
			"authors": [{"name": "Acme"}]
		}
	]
}`

func TestParse(t *testing.T) {
	client := NewClient("", "Store Updates Test/1.0", http.DefaultClient)

	entries, err := client.Parse([]byte(sampleFeed))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.EntryID != "https://www.raycast.com/acme/widget" {
		t.Errorf("Unexpected entry id %q", first.EntryID)
	}
	if first.ItemURL != "https://www.raycast.com/acme/widget" {
		t.Errorf("Unexpected item URL %q", first.ItemURL)
	}
	if first.Title != "Widget" || first.Summary != "A widget for everything" {
		t.Errorf("Unexpected entry %+v", first)
	}
	if first.AuthorName != "Acme" {
		t.Errorf("Unexpected author %q", first.AuthorName)
	}

	expected := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(expected) {
		t.Errorf("Expected publish time %v, got %v", expected, first.PublishedAt)
	}
}

func TestParse_InvalidDocument(t *testing.T) {
	client := NewClient("", "Store Updates Test/1.0", http.DefaultClient)

	if _, err := client.Parse([]byte("not a feed")); err == nil {
		t.Error("Expected parse error for invalid document")
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "Store Updates Test/1.0" {
			t.Errorf("Unexpected user agent %q", ua)
		}
		w.Header().Set("Content-Type", "application/feed+json")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	client := NewClient(server.URL, "Store Updates Test/1.0", http.DefaultClient)

	entries, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(entries))
	}
}

func TestFetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "Store Updates Test/1.0", http.DefaultClient)

	if _, err := client.Fetch(context.Background()); err == nil {
		t.Error("Expected error for non-200 response")
	}
}
