package github

import (
	"regexp"
	"strings"
)

// linkRegex matches Link header entries: <url>; rel="type".
var linkRegex = regexp.MustCompile(`<([^>]+)>;\s*rel="([^"]+)"`)

// ParseNextLink extracts the "next" URL from a Link header.
// Returns empty string if no next link is found.
func ParseNextLink(linkHeader string) string {
	return ParseLinks(linkHeader)["next"]
}

// ParseLinks maps each rel type in a Link header to its URL
func ParseLinks(linkHeader string) map[string]string {
	links := make(map[string]string)
	if linkHeader == "" {
		return links
	}

	for _, part := range strings.Split(linkHeader, ",") {
		matches := linkRegex.FindStringSubmatch(strings.TrimSpace(part))
		if len(matches) != 3 {
			continue
		}
		// rel may list several space-separated types
		for _, rel := range strings.Fields(matches[2]) {
			links[rel] = matches[1]
		}
	}

	return links
}
