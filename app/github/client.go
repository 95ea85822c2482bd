// Package github fetches catalog change records from the GitHub API:
// merged pull requests and their changed file lists. Rate limiting is
// surfaced as a typed error so the refresh gate can arm its backoff.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/chrismessina/raycast-store-updates/app/catalog"
)

const (
	defaultBaseURL = "https://api.github.com"
	perPage        = 100
	maxPages       = 2
)

// RateLimitError reports an upstream rate limit. ResetEpochSeconds is the
// X-RateLimit-Reset header when the response carried one.
type RateLimitError struct {
	ResetEpochSeconds *int64
}

func (e *RateLimitError) Error() string {
	if e.ResetEpochSeconds == nil {
		return "github: rate limited"
	}
	return fmt.Sprintf("github: rate limited until %s", time.Unix(*e.ResetEpochSeconds, 0).UTC().Format(time.RFC3339))
}

type Client struct {
	baseURL    string
	repo       string
	token      string
	userAgent  string
	httpClient *http.Client
}

func NewClient(repo, token, userAgent string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		repo:       repo,
		token:      token,
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

type pullResponse struct {
	Number   int        `json:"number"`
	Title    string     `json:"title"`
	HTMLURL  string     `json:"html_url"`
	MergedAt *time.Time `json:"merged_at"`
	User     struct {
		Login     string `json:"login"`
		HTMLURL   string `json:"html_url"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

type fileResponse struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

// ListClosedPulls fetches recently updated closed pull requests, most
// recently updated first. Unmerged records are included; the classifier
// discards them. Returns *RateLimitError when the API throttles us.
func (c *Client) ListClosedPulls(ctx context.Context) ([]catalog.ChangeRecord, error) {
	var records []catalog.ChangeRecord

	for page := 1; page <= maxPages; page++ {
		url := fmt.Sprintf("%s/repos/%s/pulls?state=closed&sort=updated&direction=desc&per_page=%d&page=%d",
			c.baseURL, c.repo, perPage, page)

		var pulls []pullResponse
		if err := c.getJSON(ctx, url, &pulls); err != nil {
			return nil, err
		}

		for _, pull := range pulls {
			record := catalog.ChangeRecord{
				ReferenceID:  pull.Number,
				Title:        pull.Title,
				MergedAt:     pull.MergedAt,
				AuthorLogin:  pull.User.Login,
				AuthorURL:    pull.User.HTMLURL,
				AuthorAvatar: pull.User.AvatarURL,
				SourceRef:    pull.HTMLURL,
			}
			for _, label := range pull.Labels {
				record.Labels = append(record.Labels, label.Name)
			}
			records = append(records, record)
		}

		if len(pulls) < perPage {
			break
		}
	}

	return records, nil
}

// ListChangedFiles implements catalog.FileLister. Any failure degrades to
// an empty list: a missing file list only narrows classification, it never
// aborts a pass.
func (c *Client) ListChangedFiles(ctx context.Context, referenceID int) []catalog.ChangedFile {
	url := fmt.Sprintf("%s/repos/%s/pulls/%d/files?per_page=%d", c.baseURL, c.repo, referenceID, perPage)

	var files []fileResponse
	if err := c.getJSON(ctx, url, &files); err != nil {
		slog.Debug("Changed file listing failed", "reference_id", referenceID, "error", err)
		return nil
	}

	changed := make([]catalog.ChangedFile, 0, len(files))
	for _, file := range files {
		changed = append(changed, catalog.ChangedFile{Filename: file.Filename, Status: file.Status})
	}
	return changed
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{ResetEpochSeconds: parseResetHeader(resp)}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func parseResetHeader(resp *http.Response) *int64 {
	header := resp.Header.Get("X-RateLimit-Reset")
	if header == "" {
		return nil
	}
	reset, err := strconv.ParseInt(header, 10, 64)
	if err != nil {
		return nil
	}
	return &reset
}
