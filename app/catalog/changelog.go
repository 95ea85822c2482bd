package catalog

import (
	"strings"
)

// LatestChangelogSection extracts the most recent section of a changelog
// document: the first "## " heading and every line up to, but excluding,
// the next one. Returns "" when the document has no "## " heading.
func LatestChangelogSection(doc string) string {
	lines := strings.Split(doc, "\n")

	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "## ") {
			start = i
			break
		}
	}
	if start == -1 {
		return ""
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "## ") {
			end = i
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}
