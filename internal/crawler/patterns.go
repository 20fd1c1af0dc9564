package crawler

import (
	"net/url"
	"path/filepath"
	"strings"
)

// allowed checks a frontier URL against the ignore and follow patterns.
//
// Logic:
//  1. A URL matching any ignore pattern is skipped
//  2. When follow patterns are set, the URL must match at least one
//  3. Otherwise the URL is allowed
func (c *Crawler) allowed(rawURL string) bool {
	if len(c.ignorePatterns) == 0 && len(c.followPatterns) == 0 {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range c.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(c.followPatterns) > 0 {
		for _, pattern := range c.followPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}

	return true
}

// matchPattern reports whether a URL path matches a glob pattern.
// Supported forms:
//   - "/admin/*" matches the /admin subtree, including /admin itself
//   - "*.pdf" matches any path ending in that extension
//   - anything else uses filepath.Match, first against the full path and
//     then against the final path segment for slash-free patterns
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}

	return false
}
