package config

import "strings"

// SiteConfig holds site-specific configuration for a single host.
// This allows customizing crawl behavior per website, e.g. auth headers
// for a staging site or tighter bounds for a huge one.
type SiteConfig struct {
	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// IgnorePatterns are URL path patterns to skip during crawling.
	// Patterns use glob syntax (e.g., "/admin/*", "*.pdf").
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL path patterns to follow during crawling.
	// If specified, only URLs matching these patterns are crawled.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`

	// MaxPages overrides the global page cap for this site.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// Delay overrides the global request delay for this site, as a Go
	// duration string (e.g., "500ms", "2s"). Empty means the global
	// delay applies.
	Delay string `yaml:"delay,omitempty"`
}

// File represents the structure of the webinventory configuration file.
type File struct {
	// Sites maps hosts to their site-specific configurations. Keys are
	// bare hosts without a scheme (e.g., "example.com"); a leading www.
	// is ignored when looking a host up.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a host, merging the
// site-specific configuration over the defaults. Hosts are matched
// case-insensitively and with any leading www. stripped.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	siteConfig, ok := cf.Sites[host]
	if !ok {
		siteConfig, ok = cf.Sites[strings.TrimPrefix(strings.ToLower(host), "www.")]
	}
	if !ok {
		return result
	}

	// Merge into a fresh map so repeated lookups never mutate Defaults.
	if len(siteConfig.Headers) > 0 {
		merged := make(map[string]string, len(result.Headers)+len(siteConfig.Headers))
		for k, v := range result.Headers {
			merged[k] = v
		}
		for k, v := range siteConfig.Headers {
			merged[k] = v
		}
		result.Headers = merged
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	if len(siteConfig.FollowPatterns) > 0 {
		result.FollowPatterns = siteConfig.FollowPatterns
	}
	if siteConfig.MaxPages != 0 {
		result.MaxPages = siteConfig.MaxPages
	}
	if siteConfig.Delay != "" {
		result.Delay = siteConfig.Delay
	}

	return result
}
