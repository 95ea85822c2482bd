package catalog

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MetadataFetcher looks up an extension's descriptor by slug. A nil result
// means "not found"; implementations never return errors.
type MetadataFetcher interface {
	Fetch(ctx context.Context, slug string) *Metadata
}

// Classifier reconciles merged change records with the new-extensions feed
// into disjoint updated and removed event sets.
type Classifier struct {
	source   *Source
	files    FileLister
	metadata MetadataFetcher
}

func NewClassifier(source *Source, files FileLister, metadata MetadataFetcher) *Classifier {
	return &Classifier{
		source:   source,
		files:    files,
		metadata: metadata,
	}
}

// Result holds the per-kind event sets of one reconciliation pass. Order
// within each set is unspecified; display ordering is the caller's job.
type Result struct {
	Updated []Event
	Removed []Event
}

// Run classifies change records against the slug -> feed-publish-date map
// built from the current pass's feed entries. Records that cannot be
// resolved to a slug produce no event. Removal processing is independent
// of the update pipeline and runs concurrently with it.
func (c *Classifier) Run(ctx context.Context, records []ChangeRecord, publishedAt map[string]time.Time) Result {
	// Discard anything that never merged.
	var merged []ChangeRecord
	for _, record := range records {
		if record.MergedAt != nil {
			merged = append(merged, record)
		}
	}

	var candidates, rest []ChangeRecord
	for _, record := range merged {
		if IsRemovalCandidate(record) {
			candidates = append(candidates, record)
		} else {
			rest = append(rest, record)
		}
	}

	var result Result
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		result.Removed = c.classifyRemovals(ctx, candidates)
	}()

	result.Updated = c.classifyUpdates(ctx, rest, publishedAt)
	wg.Wait()

	return result
}

func (c *Classifier) classifyUpdates(ctx context.Context, records []ChangeRecord, publishedAt map[string]time.Time) []Event {
	// Title heuristics first; the file-path fallback is fetched
	// concurrently for every record they missed. Results are written to
	// per-record slots so the original order survives the fan-in.
	slugs := make([]string, len(records))
	var wg sync.WaitGroup
	for i, record := range records {
		slugs[i] = ResolveSlug(record)
		if slugs[i] != "" {
			continue
		}
		wg.Add(1)
		go func(i, referenceID int) {
			defer wg.Done()
			slugs[i] = c.source.ResolveSlugFromChangedPaths(ctx, c.files, referenceID)
		}(i, record.ReferenceID)
	}
	wg.Wait()

	// Deduplicate in encounter order. The source lists records most
	// recently updated first, so the first record seen for a slug is the
	// relevant one. Records merged no later than the slug's feed publish
	// date document the introduction already reported as New.
	claimed := make(map[string]bool)
	var kept []ChangeRecord
	var keptSlugs []string
	for i, record := range records {
		slug := slugs[i]
		if slug == "" {
			slog.Debug("Dropping record without resolvable slug", "reference_id", record.ReferenceID, "title", record.Title)
			continue
		}
		if published, ok := publishedAt[slug]; ok && !record.MergedAt.After(published) {
			continue
		}
		if claimed[slug] {
			continue
		}
		claimed[slug] = true
		kept = append(kept, record)
		keptSlugs = append(keptSlugs, slug)
	}

	metas := c.fetchAll(ctx, keptSlugs)

	events := make([]Event, len(kept))
	for i, record := range kept {
		events[i] = c.buildUpdatedEvent(record, keptSlugs[i], metas[i])
	}
	return events
}

func (c *Classifier) classifyRemovals(ctx context.Context, candidates []ChangeRecord) []Event {
	type removal struct {
		slug   string
		record ChangeRecord
	}

	// Resolve each candidate's fully-deleted slug set concurrently,
	// then claim slugs in encounter order: one removal per slug per pass.
	slugSets := make([][]string, len(candidates))
	var wg sync.WaitGroup
	for i, record := range candidates {
		wg.Add(1)
		go func(i, referenceID int) {
			defer wg.Done()
			slugSets[i] = c.source.ResolveRemovedSlugs(ctx, c.files, referenceID)
		}(i, record.ReferenceID)
	}
	wg.Wait()

	claimed := make(map[string]bool)
	var removals []removal
	for i, record := range candidates {
		for _, slug := range slugSets[i] {
			if claimed[slug] {
				continue
			}
			claimed[slug] = true
			removals = append(removals, removal{slug: slug, record: record})
		}
	}

	slugs := make([]string, len(removals))
	for i, r := range removals {
		slugs[i] = r.slug
	}
	metas := c.fetchAll(ctx, slugs)

	var events []Event
	for i, r := range removals {
		// A successful metadata lookup means the extension still exists
		// under another path, so the deletion was a move, not a removal.
		if metas[i] != nil {
			slog.Debug("Removal candidate still present, skipping", "slug", r.slug, "reference_id", r.record.ReferenceID)
			continue
		}
		events = append(events, Event{
			ID:         eventID(EventRemoved, r.record.ReferenceID, r.slug),
			Slug:       r.slug,
			Kind:       EventRemoved,
			Title:      TitleFromSlug(r.slug),
			Summary:    "This extension has been removed from the store.",
			ImageURL:   r.record.AuthorAvatar,
			AuthorName: r.record.AuthorLogin,
			AuthorURL:  r.record.AuthorURL,
			OccurredAt: *r.record.MergedAt,
			SourceRef:  r.record.SourceRef,
		})
	}
	return events
}

func (c *Classifier) buildUpdatedEvent(record ChangeRecord, slug string, md *Metadata) Event {
	if md == nil {
		md = &Metadata{}
	}

	owner := cmp.Or(md.Owner, md.Author)
	event := Event{
		ID:         eventID(EventUpdated, record.ReferenceID, slug),
		Slug:       slug,
		Kind:       EventUpdated,
		Title:      cmp.Or(md.Title, md.Name, TitleFromSlug(slug)),
		Summary:    cmp.Or(md.Description, record.Title),
		ImageURL:   c.source.IconURL(slug, md.Icon),
		AuthorName: cmp.Or(owner, record.AuthorLogin),
		AuthorURL:  record.AuthorURL,
		OccurredAt: *record.MergedAt,
		SourceRef:  record.SourceRef,
		Platforms:  md.Platforms,
		Version:    md.Version,
		Categories: md.Categories,
	}
	if owner != "" {
		event.ItemURL = c.source.ItemURL(owner, slug)
	}
	if len(event.Platforms) == 0 {
		event.Platforms = []string{c.source.DefaultPlatform}
	}
	return event
}

// BuildNewEvents produces one New event per feed entry, enriched with
// descriptor data where the lookup succeeds. Feed entries are unique by
// construction, so no deduplication is needed.
func (c *Classifier) BuildNewEvents(ctx context.Context, entries []FeedEntry) []Event {
	slugs := make([]string, len(entries))
	for i, entry := range entries {
		if _, slug, ok := c.source.SplitItemURL(entry.ItemURL); ok {
			slugs[i] = slug
		}
	}
	metas := c.fetchAll(ctx, slugs)

	events := make([]Event, len(entries))
	for i, entry := range entries {
		md := metas[i]
		if md == nil {
			md = &Metadata{}
		}
		if entry.AuthorURL == "" {
			if owner, _, ok := c.source.SplitItemURL(entry.ItemURL); ok {
				entry.AuthorURL = c.source.StoreBaseURL + "/" + owner
			}
		}
		events[i] = Event{
			ID:         cmp.Or(entry.EntryID, uuid.NewString()),
			Slug:       slugs[i],
			Kind:       EventNew,
			Title:      cmp.Or(entry.Title, md.Title, md.Name),
			Summary:    cmp.Or(entry.Summary, md.Description),
			ImageURL:   entry.ImageURL,
			AuthorName: cmp.Or(entry.AuthorName, md.Owner, md.Author),
			AuthorURL:  entry.AuthorURL,
			ItemURL:    entry.ItemURL,
			OccurredAt: entry.PublishedAt,
			Platforms:  md.Platforms,
			Version:    md.Version,
			Categories: md.Categories,
		}
		if len(events[i].Platforms) == 0 {
			events[i].Platforms = []string{c.source.DefaultPlatform}
		}
	}
	return events
}

// PublishDates builds the slug -> feed-publish-date map the classifier
// uses to tell re-documented introductions apart from real updates.
func (c *Classifier) PublishDates(entries []FeedEntry) map[string]time.Time {
	dates := make(map[string]time.Time, len(entries))
	for _, entry := range entries {
		if _, slug, ok := c.source.SplitItemURL(entry.ItemURL); ok {
			dates[slug] = entry.PublishedAt
		}
	}
	return dates
}

// fetchAll looks up descriptors for every slug concurrently, preserving
// slot order. Empty slugs skip the lookup and yield nil.
func (c *Classifier) fetchAll(ctx context.Context, slugs []string) []*Metadata {
	metas := make([]*Metadata, len(slugs))
	var wg sync.WaitGroup
	for i, slug := range slugs {
		if slug == "" {
			continue
		}
		wg.Add(1)
		go func(i int, slug string) {
			defer wg.Done()
			metas[i] = c.metadata.Fetch(ctx, slug)
		}(i, slug)
	}
	wg.Wait()
	return metas
}

func eventID(kind EventKind, referenceID int, slug string) string {
	return fmt.Sprintf("%s-%d-%s", kind, referenceID, slug)
}
