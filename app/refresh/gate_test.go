package refresh

import (
	"strings"
	"testing"
	"time"
)

type memStore struct {
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (s *memStore) Get(key string) (string, error) {
	return s.values[key], nil
}

func (s *memStore) Set(key, value string) error {
	s.values[key] = value
	return nil
}

func (s *memStore) Delete(key string) error {
	delete(s.values, key)
	return nil
}

var gateNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestGate_AllowedWithoutHistory(t *testing.T) {
	gate := NewGate(newMemStore())

	message, err := gate.Check(gateNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if message != "" {
		t.Errorf("Fresh gate must allow refresh, got %q", message)
	}
}

func TestGate_MinimumIntervalEnforced(t *testing.T) {
	gate := NewGate(newMemStore())

	if err := gate.RecordFetch(gateNow, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	message, err := gate.Check(gateNow.Add(10 * time.Second))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(message, "5 minutes") {
		t.Errorf("Expected rounded-up '5 minutes' countdown, got %q", message)
	}

	message, err = gate.Check(gateNow.Add(MinInterval))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if message != "" {
		t.Errorf("Refresh must be allowed after the minimum interval, got %q", message)
	}
}

func TestGate_SecondsBelowOneMinute(t *testing.T) {
	gate := NewGate(newMemStore())

	if err := gate.RecordFetch(gateNow, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	message, err := gate.Check(gateNow.Add(MinInterval - 30*time.Second))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(message, "30 seconds") {
		t.Errorf("Expected seconds countdown below a minute, got %q", message)
	}
}

func TestGate_RateLimitWithHint(t *testing.T) {
	gate := NewGate(newMemStore())

	reset := gateNow.Add(2 * time.Minute).Unix()
	if err := gate.RecordRateLimit(gateNow, &reset); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	message, err := gate.Check(gateNow.Add(30 * time.Second))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(message, "2 minutes") {
		t.Errorf("Expected limit countdown, got %q", message)
	}

	message, err = gate.Check(gateNow.Add(3 * time.Minute))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if message != "" {
		t.Errorf("Expired limit must allow refresh, got %q", message)
	}
}

func TestGate_RateLimitDefaultBackoff(t *testing.T) {
	gate := NewGate(newMemStore())

	if err := gate.RecordRateLimit(gateNow, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	message, err := gate.Check(gateNow.Add(59 * time.Minute))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if message == "" {
		t.Error("Default backoff must still be active before an hour elapses")
	}

	message, err = gate.Check(gateNow.Add(61 * time.Minute))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if message != "" {
		t.Errorf("Default backoff must expire after an hour, got %q", message)
	}
}

func TestGate_RecordFetchClearsLimit(t *testing.T) {
	gate := NewGate(newMemStore())

	if err := gate.RecordRateLimit(gateNow, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := gate.RecordFetch(gateNow.Add(time.Minute), nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	message, err := gate.Check(gateNow.Add(time.Minute + MinInterval))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if message != "" {
		t.Errorf("RecordFetch without hint must clear the limit, got %q", message)
	}
}

func TestGate_StateSurvivesRestart(t *testing.T) {
	store := newMemStore()

	gate := NewGate(store)
	if err := gate.RecordFetch(gateNow, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// A new gate over the same store sees the previous session's fetch.
	restarted := NewGate(store)
	message, err := restarted.Check(gateNow.Add(time.Minute))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if message == "" {
		t.Error("Persisted fetch time must gate the restarted process")
	}
}
