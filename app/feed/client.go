// Package feed fetches the store's "new extensions" feed and normalizes
// its entries for the classifier.
package feed

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/chrismessina/raycast-store-updates/app/catalog"
)

type Client struct {
	feedURL      string
	userAgent    string
	httpClient   *http.Client
	gofeedParser *gofeed.Parser
}

func NewClient(feedURL, userAgent string, httpClient *http.Client) *Client {
	return &Client{
		feedURL:      feedURL,
		userAgent:    userAgent,
		httpClient:   httpClient,
		gofeedParser: gofeed.NewParser(),
	}
}

// Fetch retrieves and parses the feed. Entries missing a publish date are
// kept with a zero timestamp; entries missing an id get a generated one so
// every event stays individually addressable.
func (c *Client) Fetch(ctx context.Context) ([]catalog.FeedEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching feed", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	return c.Parse(data)
}

// Parse normalizes raw feed bytes (JSON Feed, RSS, or Atom) into entries.
func (c *Client) Parse(data []byte) ([]catalog.FeedEntry, error) {
	parsed, err := c.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := make([]catalog.FeedEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entry := catalog.FeedEntry{
			EntryID: cmp.Or(item.GUID, item.Link, uuid.NewString()),
			ItemURL: item.Link,
			Title:   item.Title,
			Summary: item.Description,
		}

		if item.PublishedParsed != nil {
			entry.PublishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			entry.PublishedAt = *item.UpdatedParsed
		}

		if item.Image != nil {
			entry.ImageURL = item.Image.URL
		}

		if len(item.Authors) > 0 && item.Authors[0] != nil {
			entry.AuthorName = item.Authors[0].Name
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
