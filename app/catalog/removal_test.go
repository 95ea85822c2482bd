package catalog

import (
	"context"
	"testing"
)

func TestIsRemovalCandidate(t *testing.T) {
	tests := []struct {
		name     string
		record   ChangeRecord
		expected bool
	}{
		{"no-review label", ChangeRecord{Title: "Cleanup", Labels: []string{"no-review"}}, true},
		{"label case-insensitive", ChangeRecord{Title: "Cleanup", Labels: []string{"No-Review"}}, true},
		{"remove title", ChangeRecord{Title: "Remove foo extension"}, true},
		{"removed title", ChangeRecord{Title: "removed broken extension"}, true},
		{"word boundary respected", ChangeRecord{Title: "Remover improvements"}, false},
		{"plain update", ChangeRecord{Title: "Spotify Player: fix controls"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRemovalCandidate(tt.record); got != tt.expected {
				t.Errorf("IsRemovalCandidate(%q) = %v, expected %v", tt.record.Title, got, tt.expected)
			}
		})
	}
}

func TestResolveRemovedSlugs_AllFilesDeleted(t *testing.T) {
	source := DefaultSource
	lister := &fakeFileLister{files: map[int][]ChangedFile{
		1: {
			{Filename: "extensions/gone/package.json", Status: "removed"},
			{Filename: "extensions/gone/src/index.ts", Status: "removed"},
		},
	}}

	slugs := source.ResolveRemovedSlugs(context.Background(), lister, 1)
	if len(slugs) != 1 || slugs[0] != "gone" {
		t.Errorf("Expected ['gone'], got %v", slugs)
	}
}

func TestResolveRemovedSlugs_PartialDeletionExcluded(t *testing.T) {
	source := DefaultSource
	lister := &fakeFileLister{files: map[int][]ChangedFile{
		2: {
			{Filename: "extensions/renamed/old.ts", Status: "removed"},
			{Filename: "extensions/renamed/new.ts", Status: "added"},
			{Filename: "extensions/gone/package.json", Status: "removed"},
		},
	}}

	slugs := source.ResolveRemovedSlugs(context.Background(), lister, 2)
	if len(slugs) != 1 || slugs[0] != "gone" {
		t.Errorf("Partial deletions must not count as removals, got %v", slugs)
	}
}

func TestResolveRemovedSlugs_NoMatchingFiles(t *testing.T) {
	source := DefaultSource
	lister := &fakeFileLister{files: map[int][]ChangedFile{
		3: {
			{Filename: "docs/changelog.md", Status: "removed"},
		},
	}}

	if slugs := source.ResolveRemovedSlugs(context.Background(), lister, 3); len(slugs) != 0 {
		t.Errorf("Expected no slugs, got %v", slugs)
	}
}
