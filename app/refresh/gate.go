// Package refresh throttles manual refresh requests. The gate persists
// its state through a string-keyed store so backoff survives restarts;
// background fetches are outside its authority.
package refresh

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

const (
	keyLastFetch      = "last_fetch_at"
	keyRateLimitReset = "rate_limit_reset_at"

	// MinInterval is the shortest allowed gap between manual refreshes.
	MinInterval = 5 * time.Minute

	// defaultBackoff applies when the upstream rate-limits us without
	// saying when the limit resets.
	defaultBackoff = 60 * time.Minute
)

// Store is the persisted key-value backend. A missing key reads as "".
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// State mirrors the persisted gate state. Epoch values are milliseconds.
type State struct {
	LastFetchEpochMs      int64
	RateLimitResetEpochMs *int64
}

// Gate decides whether a manual refresh may proceed. Persisted state is
// re-read on every check because another process may have written it.
type Gate struct {
	store Store
	mu    sync.Mutex
}

func NewGate(store Store) *Gate {
	return &Gate{store: store}
}

// Check returns "" when a refresh is allowed, or a human-readable
// countdown message when the gate is closed. State is not modified.
func (g *Gate) Check(now time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	state, err := g.load()
	if err != nil {
		return "", fmt.Errorf("failed to load refresh state: %w", err)
	}

	if state.RateLimitResetEpochMs != nil {
		until := time.UnixMilli(*state.RateLimitResetEpochMs)
		if now.Before(until) {
			return waitMessage(until.Sub(now)), nil
		}
	}

	if state.LastFetchEpochMs > 0 {
		nextAllowed := time.UnixMilli(state.LastFetchEpochMs).Add(MinInterval)
		if now.Before(nextAllowed) {
			return waitMessage(nextAllowed.Sub(now)), nil
		}
	}

	return "", nil
}

// RecordFetch marks a successful fetch. A reset hint (epoch seconds) arms
// the rate limit; no hint clears any existing one.
func (g *Gate) RecordFetch(now time.Time, resetHintEpochSeconds *int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.Set(keyLastFetch, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		return fmt.Errorf("failed to persist last fetch time: %w", err)
	}

	if resetHintEpochSeconds != nil {
		return g.armLimit(*resetHintEpochSeconds * 1000)
	}
	if err := g.store.Delete(keyRateLimitReset); err != nil {
		return fmt.Errorf("failed to clear rate limit: %w", err)
	}
	return nil
}

// RecordRateLimit arms the gate after an upstream rate-limit response,
// falling back to a conservative default when no reset hint was supplied.
func (g *Gate) RecordRateLimit(now time.Time, resetHintEpochSeconds *int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	resetMs := now.Add(defaultBackoff).UnixMilli()
	if resetHintEpochSeconds != nil {
		resetMs = *resetHintEpochSeconds * 1000
	}
	return g.armLimit(resetMs)
}

func (g *Gate) armLimit(resetMs int64) error {
	if err := g.store.Set(keyRateLimitReset, strconv.FormatInt(resetMs, 10)); err != nil {
		return fmt.Errorf("failed to persist rate limit: %w", err)
	}
	return nil
}

func (g *Gate) load() (State, error) {
	var state State

	raw, err := g.store.Get(keyLastFetch)
	if err != nil {
		return state, err
	}
	if raw != "" {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			state.LastFetchEpochMs = ms
		}
	}

	raw, err = g.store.Get(keyRateLimitReset)
	if err != nil {
		return state, err
	}
	if raw != "" {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			state.RateLimitResetEpochMs = &ms
		}
	}

	return state, nil
}

// waitMessage formats the remaining wait: whole seconds below a minute,
// rounded-up minutes above.
func waitMessage(remaining time.Duration) string {
	seconds := int64(remaining.Seconds())
	if remaining > time.Duration(seconds)*time.Second {
		seconds++
	}

	if seconds < 60 {
		unit := "seconds"
		if seconds == 1 {
			unit = "second"
		}
		return fmt.Sprintf("Refresh available in %d %s", seconds, unit)
	}

	minutes := (seconds + 59) / 60
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("Refresh available in %d %s", minutes, unit)
}
