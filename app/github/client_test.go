package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(serverURL string) *Client {
	client := NewClient("raycast/extensions", "", "Store Updates Test/1.0", http.DefaultClient)
	client.baseURL = serverURL
	return client
}

func TestListClosedPulls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/raycast/extensions/pulls" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"number": 101,
				"title": "widget: fix icon",
				"html_url": "https://github.com/raycast/extensions/pull/101",
				"merged_at": "2024-06-01T12:00:00Z",
				"user": {"login": "octocat", "html_url": "https://github.com/octocat", "avatar_url": "https://avatars.example/octocat"},
				"labels": [{"name": "extension: widget"}, {"name": "OP is author"}]
			},
			{
				"number": 102,
				"title": "closed without merge",
				"html_url": "https://github.com/raycast/extensions/pull/102",
				"merged_at": null,
				"user": {"login": "someone", "html_url": "", "avatar_url": ""},
				"labels": []
			}
		]`))
	}))
	defer server.Close()

	records, err := newTestClient(server.URL).ListClosedPulls(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.ReferenceID != 101 || first.AuthorLogin != "octocat" {
		t.Errorf("Unexpected record %+v", first)
	}
	if first.MergedAt == nil {
		t.Error("Expected merged timestamp")
	}
	if len(first.Labels) != 2 || first.Labels[0] != "extension: widget" {
		t.Errorf("Unexpected labels %v", first.Labels)
	}

	if records[1].MergedAt != nil {
		t.Error("Unmerged record must keep a nil merge timestamp")
	}
}

func TestListClosedPulls_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Reset", "1717243200")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListClosedPulls(context.Background())

	var rateLimit *RateLimitError
	if !errors.As(err, &rateLimit) {
		t.Fatalf("Expected RateLimitError, got %v", err)
	}
	if rateLimit.ResetEpochSeconds == nil || *rateLimit.ResetEpochSeconds != 1717243200 {
		t.Errorf("Expected reset hint from header, got %v", rateLimit.ResetEpochSeconds)
	}
}

func TestListChangedFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/raycast/extensions/pulls/101/files" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"filename": "extensions/widget/package.json", "status": "modified"},
			{"filename": "extensions/widget/src/index.ts", "status": "removed"}
		]`))
	}))
	defer server.Close()

	files := newTestClient(server.URL).ListChangedFiles(context.Background(), 101)
	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %d", len(files))
	}
	if files[1].Status != "removed" {
		t.Errorf("Unexpected status %q", files[1].Status)
	}
}

func TestListChangedFiles_DegradesToEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if files := newTestClient(server.URL).ListChangedFiles(context.Background(), 5); files != nil {
		t.Errorf("Failures must degrade to an empty list, got %v", files)
	}
}
