package catalog

import (
	"cmp"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSource tracks the public Raycast extension store.
var DefaultSource = Source{
	Repo:            "raycast/extensions",
	FeedURL:         "https://www.raycast.com/feed.json",
	StoreBaseURL:    "https://www.raycast.com",
	RawContentURL:   "https://raw.githubusercontent.com/raycast/extensions/main",
	PathPrefix:      "extensions",
	DefaultPlatform: DefaultPlatform,
}

// LoadSource reads a source descriptor file, filling unset fields from
// DefaultSource. A missing path (empty string) yields the defaults.
func LoadSource(path string) (*Source, error) {
	if path == "" {
		src := DefaultSource
		return &src, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source descriptor: %w", err)
	}

	var src Source
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse source descriptor: %w", err)
	}

	src.Repo = cmp.Or(src.Repo, DefaultSource.Repo)
	src.FeedURL = cmp.Or(src.FeedURL, DefaultSource.FeedURL)
	src.StoreBaseURL = cmp.Or(src.StoreBaseURL, DefaultSource.StoreBaseURL)
	src.RawContentURL = cmp.Or(src.RawContentURL, DefaultSource.RawContentURL)
	src.PathPrefix = cmp.Or(src.PathPrefix, DefaultSource.PathPrefix)
	src.DefaultPlatform = cmp.Or(src.DefaultPlatform, DefaultSource.DefaultPlatform)

	return &src, nil
}
