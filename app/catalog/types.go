package catalog

import (
	"time"
)

// Event kinds emitted by a reconciliation pass.

type EventKind string

const (
	EventNew     EventKind = "new"
	EventUpdated EventKind = "updated"
	EventRemoved EventKind = "removed"
)

// DefaultPlatform is assumed when a source carries no platform tags.
const DefaultPlatform = "macOS"

// Event is the unit the reconciliation engine emits. IDs are unique per
// event, not per item: a removal and an earlier update of the same
// extension are distinct events.
type Event struct {
	ID         string
	Slug       string // empty when slug resolution failed
	Kind       EventKind
	Title      string
	Summary    string
	ImageURL   string
	AuthorName string
	AuthorURL  string
	ItemURL    string
	OccurredAt time.Time // publish date for New, merge date otherwise
	SourceRef  string    // originating pull request URL, if any
	Platforms  []string
	Version    string
	Categories []string
}

// ChangeRecord is one closed pull request against the catalog repository.
// A nil MergedAt means the record was closed without merging and must be
// discarded by the classifier.
type ChangeRecord struct {
	ReferenceID  int
	Title        string
	MergedAt     *time.Time
	AuthorLogin  string
	AuthorURL    string
	AuthorAvatar string
	Labels       []string
	SourceRef    string
}

// FeedEntry is one "new extension" announcement from the store feed.
type FeedEntry struct {
	EntryID     string
	ItemURL     string
	Title       string
	Summary     string
	ImageURL    string
	PublishedAt time.Time
	AuthorName  string
	AuthorURL   string
}

// Metadata is the per-extension descriptor document. All fields are
// optional; every consumer carries its own fallback chain.
type Metadata struct {
	Owner       string
	Author      string
	Title       string
	Name        string
	Description string
	Platforms   []string
	Version     string
	Categories  []string
	Icon        string
}

// ChangedFile is one file touched by a pull request, with its change
// status as reported by the source ("removed" denotes deletion).
type ChangedFile struct {
	Filename string
	Status   string
}

// Source describes the catalog being tracked. Loaded from a YAML
// descriptor file, with built-in defaults matching the public store.
type Source struct {
	Repo            string `yaml:"repo"`            // "owner/name" of the catalog repository
	FeedURL         string `yaml:"feed_url"`        // JSON feed of newly published extensions
	StoreBaseURL    string `yaml:"store_base_url"`  // canonical store URL prefix
	RawContentURL   string `yaml:"raw_content_url"` // raw file URL prefix for descriptor/changelog/icon lookups
	PathPrefix      string `yaml:"path_prefix"`     // repository directory holding one subdirectory per extension
	DefaultPlatform string `yaml:"default_platform"`
}
