package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/webinventory/internal/fetch"
)

// Default configuration values. These are the documented CLI defaults;
// a crawl with no flags at all should behave reasonably on a typical
// small business site.
const (
	// DefaultTimeout is the per-request fetch deadline. Twenty seconds
	// tolerates slow shared hosting without letting a dead server stall
	// a whole wave.
	DefaultTimeout = 20 * time.Second

	// DefaultConcurrency is the number of concurrent fetches. Four keeps
	// the crawl fast without looking like a scraper to small servers.
	DefaultConcurrency = 4

	// DefaultMaxPages of 0 leaves the crawl unbounded. The crawl is
	// expected to be bounded externally via --max-duration when a site's
	// size is unknown.
	DefaultMaxPages = 0

	// DefaultDelay is the pause between requests per worker. Zero by
	// default; politeness budgets are the operator's call.
	DefaultDelay = 0 * time.Second

	// DefaultUserAgent identifies the crawler in HTTP requests. A
	// descriptive User-Agent lets operators identify crawler traffic.
	DefaultUserAgent = fetch.DefaultUserAgent

	// DefaultMaxBodySize limits the response body size to read. Matches
	// the fetch client's cap.
	DefaultMaxBodySize = fetch.DefaultMaxBodySize

	// AppName is the application name used for XDG directory paths.
	AppName = "webinventory"
)

// Config holds all configuration options for a webinventory run.
// It is populated from CLI flags and passed through the application via
// dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant
// benefit.
type Config struct {
	// Target is the website URL the crawl starts from.
	// Must be an absolute http(s) URL.
	Target string

	// Output is the report destination path. Empty means an auto-named
	// file in the current directory; "-" means stdout.
	Output string

	// Timeout is the fetch deadline for each HTTP request.
	// This applies to individual requests, not the overall crawl.
	Timeout time.Duration

	// MaxDuration bounds the whole crawl. Zero means no bound; the crawl
	// runs until the frontier is exhausted or MaxPages is reached.
	MaxDuration time.Duration

	// MaxPages is the maximum number of pages to record.
	// A value of 0 means unbounded.
	MaxPages int

	// Concurrency is the number of concurrent fetches during the crawl.
	Concurrency int

	// Delay is the pause between HTTP requests per worker.
	// This is a politeness setting to avoid overwhelming small servers.
	Delay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory
	// exhaustion. Set to 0 to use the default.
	MaxBodySize int64

	// Markdown switches the report from JSON to a Markdown summary.
	Markdown bool

	// NoSave skips recording the crawl in the history database.
	NoSave bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches the current directory and then the XDG config
	// directory.
	ConfigFilePath string

	// DBDir is the directory for the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SiteConfigs holds per-site configurations loaded from the config
	// file. Populated by LoadConfigFile and applied before crawling.
	SiteConfigs *File
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout,
// concurrency). This also serves as documentation of what the defaults
// are.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
		MaxPages:    DefaultMaxPages,
		Delay:       DefaultDelay,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for webinventory.
// On Linux: ~/.local/share/webinventory
// On macOS: ~/Library/Application Support/webinventory
// On Windows: %LOCALAPPDATA%\webinventory
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for webinventory.
// On Linux: ~/.config/webinventory
// On macOS: ~/Library/Application Support/webinventory
// On Windows: %APPDATA%\webinventory
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific sentinel error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
// The first error found is returned rather than collecting all errors,
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.Target == "" {
		return ErrNoTarget
	}

	u, err := url.Parse(c.Target)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidTarget
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.MaxDuration < 0 {
		return ErrInvalidMaxDuration
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
