package database

import (
	"github.com/chrismessina/raycast-store-updates/app/catalog"
)

// KVRepository is the string-keyed persisted store. The refresh gate owns
// the fetch/rate-limit keys; the API layer stores opaque UI blobs
// (read state, kind filters) under its own keys.
type KVRepository interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// EventRepository persists classified catalog events. Upserts are keyed
// by event id so repeated reconciliation passes stay idempotent.
type EventRepository interface {
	UpsertEvents(events []catalog.Event) (int, error)
	GetEvents(limit int) ([]catalog.Event, error)
	GetEventStats() (map[catalog.EventKind]int, error)
}
