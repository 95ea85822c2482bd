package catalog

import (
	"strings"
)

// DeepLink converts a canonical store URL of the shape {base}/{owner}/{slug}
// into a client-local raycast:// link. Inputs that do not match the
// expected shape are returned unchanged.
func (s *Source) DeepLink(itemURL string) string {
	owner, slug, ok := s.SplitItemURL(itemURL)
	if !ok {
		return itemURL
	}
	return "raycast://extensions/" + owner + "/" + slug
}

// ItemURL builds the canonical store URL for an extension.
func (s *Source) ItemURL(owner, slug string) string {
	return s.StoreBaseURL + "/" + owner + "/" + slug
}

// SplitItemURL extracts the owner and slug from a canonical store URL.
// Reports false when the URL is not under the store base or has extra or
// missing path segments.
func (s *Source) SplitItemURL(itemURL string) (owner, slug string, ok bool) {
	rest, found := strings.CutPrefix(itemURL, s.StoreBaseURL+"/")
	if !found {
		return "", "", false
	}
	rest = strings.TrimSuffix(rest, "/")

	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// IconURL resolves an icon filename from an extension's descriptor to its
// raw content URL. Empty filenames resolve to an empty URL.
func (s *Source) IconURL(slug, icon string) string {
	if icon == "" {
		return ""
	}
	return s.RawContentURL + "/" + s.PathPrefix + "/" + slug + "/" + icon
}
