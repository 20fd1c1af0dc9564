// Package config provides configuration structures and utilities for
// webinventory. It defines the crawl options populated from CLI flags and
// the YAML file format for per-site overrides.
package config
