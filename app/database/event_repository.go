package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/chrismessina/raycast-store-updates/app/catalog"
)

var _ EventRepository = (*EventRepositoryImpl)(nil)

// EventRepositoryImpl persists catalog events in the events table.
// Platform and category sets are stored as JSON arrays.
type EventRepositoryImpl struct {
	db *DB
}

func NewEventRepository(db *DB) *EventRepositoryImpl {
	return &EventRepositoryImpl{db: db}
}

// UpsertEvents inserts events, ignoring ids already present, and reports
// how many rows were actually new.
func (r *EventRepositoryImpl) UpsertEvents(events []catalog.Event) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO events (id, slug, kind, title, summary, image_url, author_name,
			author_url, item_url, occurred_at, source_ref, platforms, version, categories)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, event := range events {
		platforms, err := json.Marshal(emptyIfNil(event.Platforms))
		if err != nil {
			return 0, fmt.Errorf("failed to encode platforms: %w", err)
		}
		categories, err := json.Marshal(emptyIfNil(event.Categories))
		if err != nil {
			return 0, fmt.Errorf("failed to encode categories: %w", err)
		}

		result, err := stmt.Exec(event.ID, event.Slug, string(event.Kind), event.Title,
			event.Summary, event.ImageURL, event.AuthorName, event.AuthorURL,
			event.ItemURL, event.OccurredAt.UTC().Format(time.RFC3339), event.SourceRef,
			string(platforms), event.Version, string(categories))
		if err != nil {
			return 0, fmt.Errorf("failed to insert event %s: %w", event.ID, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit events: %w", err)
	}
	return inserted, nil
}

// GetEvents returns events in reverse-chronological order of occurrence.
func (r *EventRepositoryImpl) GetEvents(limit int) ([]catalog.Event, error) {
	rows, err := r.db.Query(`
		SELECT id, slug, kind, title, summary, image_url, author_name,
			author_url, item_url, occurred_at, source_ref, platforms, version, categories
		FROM events
		ORDER BY occurred_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []catalog.Event
	for rows.Next() {
		var event catalog.Event
		var kind, occurredAt, platforms, categories string

		err := rows.Scan(&event.ID, &event.Slug, &kind, &event.Title, &event.Summary,
			&event.ImageURL, &event.AuthorName, &event.AuthorURL, &event.ItemURL,
			&occurredAt, &event.SourceRef, &platforms, &event.Version, &categories)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		event.Kind = catalog.EventKind(kind)
		if ts, err := time.Parse(time.RFC3339, occurredAt); err == nil {
			event.OccurredAt = ts
		}
		if err := json.Unmarshal([]byte(platforms), &event.Platforms); err != nil {
			return nil, fmt.Errorf("failed to decode platforms for %s: %w", event.ID, err)
		}
		if err := json.Unmarshal([]byte(categories), &event.Categories); err != nil {
			return nil, fmt.Errorf("failed to decode categories for %s: %w", event.ID, err)
		}

		events = append(events, event)
	}
	return events, rows.Err()
}

// GetEventStats returns event counts per kind.
func (r *EventRepositoryImpl) GetEventStats() (map[catalog.EventKind]int, error) {
	rows, err := r.db.Query(`SELECT kind, COUNT(*) FROM events GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("failed to query event stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[catalog.EventKind]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event stats: %w", err)
		}
		stats[catalog.EventKind(kind)] = count
	}
	return stats, rows.Err()
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
