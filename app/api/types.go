package api

import (
	"time"

	"github.com/chrismessina/raycast-store-updates/app/catalog"
	"github.com/chrismessina/raycast-store-updates/app/database"
	"github.com/chrismessina/raycast-store-updates/app/metadata"
	"github.com/chrismessina/raycast-store-updates/app/refresh"
	"github.com/chrismessina/raycast-store-updates/app/tasks"
)

type Handler struct {
	source    *catalog.Source
	eventRepo database.EventRepository
	kvRepo    database.KVRepository
	gate      *refresh.Gate
	scheduler tasks.TaskSchedulerInterface
	metadata  *metadata.Fetcher
}

type eventResponse struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug,omitempty"`
	Kind       string    `json:"kind"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	ImageURL   string    `json:"image_url,omitempty"`
	AuthorName string    `json:"author_name,omitempty"`
	AuthorURL  string    `json:"author_url,omitempty"`
	ItemURL    string    `json:"item_url,omitempty"`
	DeepLink   string    `json:"deep_link,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	SourceRef  string    `json:"source_ref,omitempty"`
	Platforms  []string  `json:"platforms,omitempty"`
	Version    string    `json:"version,omitempty"`
	Categories []string  `json:"categories,omitempty"`
}

type changelogResponse struct {
	Slug          string `json:"slug"`
	LatestSection string `json:"latest_section"`
	Full          string `json:"full,omitempty"`
}
