package catalog

import (
	"testing"
)

func TestLatestChangelogSection(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		expected string
	}{
		{
			name:     "two sections",
			doc:      "intro\n## v2\nfix A\n## v1\nfix B",
			expected: "## v2\nfix A",
		},
		{
			name:     "single section",
			doc:      "## Initial Version\n- First release\n",
			expected: "## Initial Version\n- First release",
		},
		{
			name:     "no headings",
			doc:      "just some text\nwithout sections",
			expected: "",
		},
		{
			name:     "empty document",
			doc:      "",
			expected: "",
		},
		{
			name:     "deeper headings ignored",
			doc:      "### not a section\n## v3\n### details\nstuff\n## v2\nolder",
			expected: "## v3\n### details\nstuff",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LatestChangelogSection(tt.doc); got != tt.expected {
				t.Errorf("LatestChangelogSection() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
