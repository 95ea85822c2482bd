package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chrismessina/raycast-store-updates/app/catalog"
	"github.com/chrismessina/raycast-store-updates/app/database"
	"github.com/chrismessina/raycast-store-updates/app/metadata"
	"github.com/chrismessina/raycast-store-updates/app/refresh"
	"github.com/chrismessina/raycast-store-updates/app/tasks"
)

// KV keys owned by UI collaborators; the server stores them as opaque
// JSON blobs without interpretation.
const (
	keyReadState   = "read_state"
	keyKindFilters = "kind_filters"
)

func NewHandler(source *catalog.Source, eventRepo database.EventRepository,
	kvRepo database.KVRepository, gate *refresh.Gate,
	scheduler tasks.TaskSchedulerInterface, metadata *metadata.Fetcher) *Handler {
	return &Handler{
		source:    source,
		eventRepo: eventRepo,
		kvRepo:    kvRepo,
		gate:      gate,
		scheduler: scheduler,
		metadata:  metadata,
	}
}

// GetEvents returns persisted catalog events, newest first.
func (h *Handler) GetEvents(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	events, err := h.eventRepo.GetEvents(limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_events", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	responses := make([]eventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, h.toResponse(event))
	}
	c.JSON(http.StatusOK, gin.H{"events": responses})
}

// GetEventStats returns per-kind event counts.
func (h *Handler) GetEventStats(c *gin.Context) {
	stats, err := h.eventRepo.GetEventStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_event_stats", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"new":     stats[catalog.EventNew],
		"updated": stats[catalog.EventUpdated],
		"removed": stats[catalog.EventRemoved],
	})
}

// Refresh runs a manual reconciliation pass, subject to the refresh gate.
func (h *Handler) Refresh(c *gin.Context) {
	now := time.Now()

	message, err := h.gate.Check(now)
	if err != nil {
		slog.Error("Refresh gate check failed", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if message != "" {
		c.JSON(http.StatusTooManyRequests, gin.H{"message": message})
		return
	}

	task := h.scheduler.NewSyncTask()
	task.Start()
	if err := task.Execute(c.Request.Context()); err != nil {
		// Rate limits are recorded on the gate inside the task.
		slog.Error("Manual refresh failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "refresh failed"})
		return
	}

	if err := h.gate.RecordFetch(now, nil); err != nil {
		slog.Error("Failed to record fetch", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}

// GetChangelog returns an extension's changelog with its most recent
// section extracted. A missing changelog is an empty document, not a 404.
func (h *Handler) GetChangelog(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	doc := h.metadata.FetchChangelog(c.Request.Context(), slug)
	c.JSON(http.StatusOK, changelogResponse{
		Slug:          slug,
		LatestSection: catalog.LatestChangelogSection(doc),
		Full:          doc,
	})
}

// GetReadState and PutReadState pass the UI's read-state blob through the
// key-value store untouched.
func (h *Handler) GetReadState(c *gin.Context) {
	h.getBlob(c, keyReadState)
}

func (h *Handler) PutReadState(c *gin.Context) {
	h.putBlob(c, keyReadState)
}

func (h *Handler) GetKindFilters(c *gin.Context) {
	h.getBlob(c, keyKindFilters)
}

func (h *Handler) PutKindFilters(c *gin.Context) {
	h.putBlob(c, keyKindFilters)
}

func (h *Handler) getBlob(c *gin.Context, key string) {
	value, err := h.kvRepo.Get(key)
	if err != nil {
		slog.Error("Database error", "operation", "get_blob", "key", key, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if value == "" {
		value = "{}"
	}
	c.Data(http.StatusOK, "application/json", []byte(value))
}

func (h *Handler) putBlob(c *gin.Context, key string) {
	raw, err := c.GetRawData()
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	var blob map[string]any
	if err := json.Unmarshal(raw, &blob); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON object"})
		return
	}
	if err := h.kvRepo.Set(key, string(raw)); err != nil {
		slog.Error("Database error", "operation", "put_blob", "key", key, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) toResponse(event catalog.Event) eventResponse {
	return eventResponse{
		ID:         event.ID,
		Slug:       event.Slug,
		Kind:       string(event.Kind),
		Title:      event.Title,
		Summary:    event.Summary,
		ImageURL:   event.ImageURL,
		AuthorName: event.AuthorName,
		AuthorURL:  event.AuthorURL,
		ItemURL:    event.ItemURL,
		DeepLink:   h.source.DeepLink(event.ItemURL),
		OccurredAt: event.OccurredAt,
		SourceRef:  event.SourceRef,
		Platforms:  event.Platforms,
		Version:    event.Version,
		Categories: event.Categories,
	}
}
