package catalog

import (
	"context"
	"regexp"
	"strings"
)

// removalLabel marks housekeeping pull requests that bypass review,
// which is how catalog deletions land.
const removalLabel = "no-review"

var removalTitleRe = regexp.MustCompile(`(?i)^removed?\b`)

// IsRemovalCandidate reports whether a change record is suspected of
// deleting an extension. Candidacy is necessary but not sufficient;
// confirmation requires ResolveRemovedSlugs plus a failed metadata lookup.
func IsRemovalCandidate(record ChangeRecord) bool {
	for _, label := range record.Labels {
		if strings.EqualFold(label, removalLabel) {
			return true
		}
	}
	return removalTitleRe.MatchString(record.Title)
}

// ResolveRemovedSlugs reports the slugs a record fully deleted. A slug
// qualifies only when every file under its directory carries deletion
// status; partial deletions such as renames or refactors do not count.
func (s *Source) ResolveRemovedSlugs(ctx context.Context, lister FileLister, referenceID int) []string {
	files := lister.ListChangedFiles(ctx, referenceID)

	allRemoved := make(map[string]bool)
	var order []string
	for _, file := range files {
		slug, ok := s.slugFromPath(file.Filename)
		if !ok {
			continue
		}
		if _, seen := allRemoved[slug]; !seen {
			order = append(order, slug)
			allRemoved[slug] = true
		}
		if file.Status != "removed" {
			allRemoved[slug] = false
		}
	}

	var removed []string
	for _, slug := range order {
		if allRemoved[slug] {
			removed = append(removed, slug)
		}
	}
	return removed
}
