// Package metadata retrieves per-extension descriptor documents and
// changelogs by slug. Every failure mode — transport error, non-success
// status, malformed payload — degrades to "not found"; callers never see
// an error from this package.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/chrismessina/raycast-store-updates/app/catalog"
)

type Fetcher struct {
	source     *catalog.Source
	userAgent  string
	httpClient *http.Client
}

func NewFetcher(source *catalog.Source, userAgent string, httpClient *http.Client) *Fetcher {
	return &Fetcher{
		source:     source,
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

type descriptor struct {
	Owner       string   `json:"owner"`
	Author      string   `json:"author"`
	Title       string   `json:"title"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Platforms   []string `json:"platforms"`
	Version     string   `json:"version"`
	Categories  []string `json:"categories"`
	Icon        string   `json:"icon"`
}

// Fetch implements catalog.MetadataFetcher. A nil result is the single
// "not found" outcome for every failure mode; absence of individual fields
// never invalidates the rest.
func (f *Fetcher) Fetch(ctx context.Context, slug string) *catalog.Metadata {
	url := fmt.Sprintf("%s/%s/%s/package.json", f.source.RawContentURL, f.source.PathPrefix, slug)

	body, ok := f.get(ctx, url)
	if !ok {
		return nil
	}

	var doc descriptor
	if err := json.Unmarshal(body, &doc); err != nil {
		slog.Debug("Malformed descriptor", "slug", slug, "error", err)
		return nil
	}

	return &catalog.Metadata{
		Owner:       doc.Owner,
		Author:      doc.Author,
		Title:       doc.Title,
		Name:        doc.Name,
		Description: doc.Description,
		Platforms:   doc.Platforms,
		Version:     doc.Version,
		Categories:  doc.Categories,
		Icon:        doc.Icon,
	}
}

// FetchChangelog retrieves an extension's changelog document. Absence is
// not an error; the result is simply empty.
func (f *Fetcher) FetchChangelog(ctx context.Context, slug string) string {
	url := fmt.Sprintf("%s/%s/%s/CHANGELOG.md", f.source.RawContentURL, f.source.PathPrefix, slug)

	body, ok := f.get(ctx, url)
	if !ok {
		return ""
	}
	return string(body)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		slog.Debug("Descriptor fetch failed", "url", url, "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false
	}
	return body, true
}
