package catalog

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FileLister returns the files touched by a change record. Implemented by
// the github client; failures degrade to an empty list, never an error.
type FileLister interface {
	ListChangedFiles(ctx context.Context, referenceID int) []ChangedFile
}

var (
	extensionLabelRe = regexp.MustCompile(`(?i)^extension:\s*(.+)$`)
	titlePrefixRe    = regexp.MustCompile(`^([^:]+):\s`)
	titleBracketRe   = regexp.MustCompile(`^\[([^\]]+)\]`)

	// Conventional-commit verbs describe the change, not the extension,
	// so a "verb:" title prefix is rejected as a slug candidate.
	commitVerbRe = regexp.MustCompile(`(?i)^(fix|feat|chore|docs|ci|build|refactor|test|style|perf|revert|bump|update|add|remove|merge)$`)

	titleCaser = cases.Title(language.English)
)

// ResolveSlug extracts an extension slug from a change record's labels or
// title. Returns "" when no heuristic matches; callers fall back to
// ResolveSlugFromChangedPaths.
func ResolveSlug(record ChangeRecord) string {
	for _, label := range record.Labels {
		if m := extensionLabelRe.FindStringSubmatch(label); m != nil {
			return Slugify(m[1])
		}
	}

	if m := titlePrefixRe.FindStringSubmatch(record.Title); m != nil {
		prefix := strings.TrimSpace(m[1])
		if !commitVerbRe.MatchString(prefix) {
			return Slugify(prefix)
		}
	}

	if m := titleBracketRe.FindStringSubmatch(record.Title); m != nil {
		return Slugify(m[1])
	}

	return ""
}

// ResolveSlugFromChangedPaths determines a record's slug from the files it
// touched. Every extension lives in its own directory under the source's
// path prefix, so the directory with the most changed files wins; ties go
// to the first directory seen. Returns "" when no file matches.
func (s *Source) ResolveSlugFromChangedPaths(ctx context.Context, lister FileLister, referenceID int) string {
	files := lister.ListChangedFiles(ctx, referenceID)

	counts := make(map[string]int)
	var order []string
	for _, file := range files {
		slug, ok := s.slugFromPath(file.Filename)
		if !ok {
			continue
		}
		if counts[slug] == 0 {
			order = append(order, slug)
		}
		counts[slug]++
	}

	best := ""
	for _, slug := range order {
		if best == "" || counts[slug] > counts[best] {
			best = slug
		}
	}
	return best
}

// slugFromPath extracts the first path segment after the extension root,
// e.g. "extensions/foo-bar/src/index.ts" -> "foo-bar".
func (s *Source) slugFromPath(path string) (string, bool) {
	rest, found := strings.CutPrefix(path, s.PathPrefix+"/")
	if !found {
		return "", false
	}
	slug, _, found := strings.Cut(rest, "/")
	if !found || slug == "" {
		return "", false
	}
	return slug, true
}

// Slugify normalizes an extension name to its slug form: lower-case,
// spaces collapsed to hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(slug), "-")
}

// TitleFromSlug derives a display title from a slug: hyphens become
// spaces, each word capitalized.
func TitleFromSlug(slug string) string {
	return titleCaser.String(strings.ReplaceAll(slug, "-", " "))
}
