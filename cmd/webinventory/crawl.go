package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/nao1215/webinventory/internal/config"
	"github.com/nao1215/webinventory/internal/crawler"
	"github.com/nao1215/webinventory/internal/database"
	"github.com/nao1215/webinventory/internal/fetch"
	"github.com/nao1215/webinventory/internal/log"
	"github.com/nao1215/webinventory/internal/pipeline"
	"github.com/nao1215/webinventory/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url> [url...]",
		Short: "Crawl a website and produce a content inventory",
		Long: `Crawl walks a website within its own host and produces a structured
content inventory.

Every reachable HTML page is fetched, its repeated site chrome (header
and footer) is separated from page content, and the remaining content
is classified into components (hero, text, image, gallery, list, form,
table, video) with categorized links. The result is written as a JSON
document, or as Markdown with --markdown.

Examples:
  # Crawl a site and write docs_example_com_<timestamp>.json
  webinventory crawl https://docs.example.com

  # Crawl several sites concurrently, one report each
  webinventory crawl https://a.example https://b.example

  # Write the report to a specific file
  webinventory crawl -o inventory.json https://example.com

  # Pipe the report to another tool
  webinventory crawl -o - https://example.com | jq .website.pages

  # Bound a large site
  webinventory crawl --max-pages 200 --max-duration 5m https://example.com

  # Use a custom configuration file
  webinventory crawl -c myconfig.yaml https://example.com

Configuration file (.webinventory.yaml) example:
  sites:
    example.com:
      headers:
        Authorization: "Bearer token"
      ignorePatterns:
        - "/admin/*"
    huge-catalog.example:
      maxPages: 500
      delay: "250ms"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("timeout", "t", int(config.DefaultTimeout/time.Second),
		"Fetch timeout per request in seconds")
	cmd.Flags().Duration("max-duration", 0,
		"Maximum total crawl duration (e.g. 5m); 0 means unbounded")
	cmd.Flags().Int("max-pages", config.DefaultMaxPages,
		"Maximum number of pages to record; 0 means unbounded")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of concurrent page fetches")
	cmd.Flags().Duration("delay", config.DefaultDelay,
		"Delay between requests per worker (e.g. 500ms)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header to send with each request")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: "+config.DefaultConfigFile+" in current directory)")

	// Report flags
	cmd.Flags().StringP("output", "o", "",
		"Report file path; '-' writes to stdout (default: auto-named from host and time)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Write a Markdown report instead of JSON")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not record this crawl in the run history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, targets, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration once per target; the crawl settings are
	// shared, only the target URL varies.
	for _, target := range targets {
		targetCfg := *cfg
		targetCfg.Target = target
		if err := targetCfg.Validate(); err != nil {
			return fmt.Errorf("configuration error for %q: %w", target, err)
		}
	}

	if cfg.Output != "" && len(targets) > 1 {
		return errors.New("--output cannot be combined with multiple URLs (each crawl writes an auto-named report)")
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing up...")
		cancel()
	}()

	return runCrawl(ctx, cfg, targets, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags. The returned
// target list has every URL normalized (a bare host gets an https
// scheme), with the first target mirrored on Config.Target.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, []string, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	timeoutSec, err := cmd.Flags().GetInt("timeout")
	if err != nil {
		return nil, nil, err
	}
	cfg.Timeout = time.Duration(timeoutSec) * time.Second

	cfg.MaxDuration, err = cmd.Flags().GetDuration("max-duration")
	if err != nil {
		return nil, nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.Output, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, nil, err
	}

	cfg.Markdown, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, nil, err
	}

	cfg.NoSave, err = cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Run history lives in the XDG data directory
	cfg.DBDir = config.XDGDataDir()

	// Normalize positional arguments (entry URLs)
	targets := make([]string, len(args))
	for i, arg := range args {
		targets[i] = normalizeTarget(arg)
	}
	cfg.Target = targets[0]

	return cfg, targets, nil
}

// normalizeTarget adds an https scheme to a bare host so that
// "example.com" works as an argument. Anything already carrying a
// scheme is left alone for Validate to judge.
func normalizeTarget(target string) string {
	if strings.Contains(target, "://") {
		return target
	}
	return "https://" + target
}

// runCrawl executes the crawl for the given targets.
func runCrawl(ctx context.Context, cfg *config.Config, targets []string, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"targets", targets,
		"concurrency", cfg.Concurrency,
		"maxPages", cfg.MaxPages,
		"saveHistory", !cfg.NoSave,
	)

	// Open the run history database unless saving is disabled
	var db *database.HistoryDB
	if !cfg.NoSave {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	// Bound the whole crawl when requested. Per-request timeouts are
	// handled by the fetch client.
	if cfg.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxDuration)
		defer cancel()
	}

	if len(targets) > 1 {
		return runBatchCrawl(ctx, cfg, targets, db, logger)
	}

	return runSingleCrawl(ctx, cfg, targets[0], db, logger)
}

// runSingleCrawl crawls one target and reports progress on the way.
func runSingleCrawl(ctx context.Context, cfg *config.Config, target string, db *database.HistoryDB, logger *slog.Logger) error {
	out, err := openOutput(cfg.Output, target, cfg.Markdown)
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg, target, out, db, logger)
	if err != nil {
		out.discard()
		return err
	}

	// Status lines move to stderr when the report itself goes to stdout.
	status := io.Writer(os.Stdout)
	if out.file == nil {
		status = os.Stderr
	}

	fmt.Fprintf(status, "Crawling %s...\n", target)
	startTime := time.Now()

	// A spinner keeps an interactive terminal informed; it stays off in
	// verbose mode (the debug log is the progress) and when the report
	// goes to stdout (piping safety).
	var spin *spinner.Spinner
	if !cfg.Verbose && out.file != nil {
		spin = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = fmt.Sprintf(" crawling %s", target)
		spin.Start()
	}

	job := pipeline.NewJob(target)
	execErr := p.Execute(ctx, job)

	if spin != nil {
		spin.Stop()
	}

	elapsed := time.Since(startTime)

	if execErr != nil {
		out.discard()

		// Cancellation before anything was crawled is a normal way to
		// stop the program, not a failure.
		if job.Site == nil && (errors.Is(execErr, context.Canceled) || errors.Is(execErr, context.DeadlineExceeded)) {
			fmt.Fprintln(status, "Crawl cancelled before any page was recorded.")
			return nil
		}

		return execErr
	}

	if err := out.close(); err != nil {
		return fmt.Errorf("failed to finish report: %w", err)
	}

	fmt.Fprintf(status, "Crawl completed in %s: %d pages", elapsed.Round(time.Millisecond), job.Stats.PagesRecorded)
	if job.Stats.Failures > 0 {
		fmt.Fprintf(status, " (%d failed)", job.Stats.Failures)
	}
	fmt.Fprintln(status)

	if out.path != "" {
		fmt.Fprintf(status, "Report written to %s\n", out.path)
	}

	return nil
}

// runBatchCrawl crawls multiple targets concurrently using BatchProcessor.
// Each target gets its own auto-named report file.
func runBatchCrawl(ctx context.Context, cfg *config.Config, targets []string, db *database.HistoryDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d sites (concurrency: %d)...\n\n",
		len(targets), cfg.Concurrency)

	startTime := time.Now()

	// The factory opens the report file per target; the completion
	// callback closes it (or removes it if the crawl produced nothing).
	// One mutex guards both the map and the callback output.
	var mu sync.Mutex
	outputs := make(map[string]*reportOutput, len(targets))

	bp := pipeline.NewBatchProcessor(
		func(target string) (*pipeline.Pipeline, error) {
			out, err := openOutput("", target, cfg.Markdown)
			if err != nil {
				return nil, err
			}

			p, err := buildPipeline(cfg, target, out, db, logger)
			if err != nil {
				out.discard()
				return nil, err
			}

			mu.Lock()
			outputs[target] = out
			mu.Unlock()

			return p, nil
		},
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	err := bp.ProcessBatchWithCallback(ctx, targets, func(job *pipeline.Job, index int) {
		mu.Lock()
		defer mu.Unlock()

		out := outputs[job.Target]

		if job.Err != nil {
			if out != nil {
				out.discard()
			}
			fmt.Fprintf(os.Stderr, "[%d/%d] Crawl failed: %s: %v\n",
				index+1, len(targets), job.Target, job.Err)
			return
		}

		if out == nil {
			return
		}

		if cerr := out.close(); cerr != nil {
			logger.Error("failed to finish report", "target", job.Target, "error", cerr)
			fmt.Fprintf(os.Stderr, "[%d/%d] Report error: %s: %v\n",
				index+1, len(targets), job.Target, cerr)
			return
		}

		fmt.Printf("[%d/%d] Crawl completed: %s (%d pages) -> %s\n",
			index+1, len(targets), job.Target, job.Stats.PagesRecorded, out.path)
	})

	elapsed := time.Since(startTime)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			fmt.Printf("\nBatch crawl interrupted after %s\n", elapsed.Round(time.Millisecond))
			return nil
		}
		return err
	}

	fmt.Printf("\nBatch crawl completed in %s\n", elapsed.Round(time.Millisecond))

	return nil
}

// buildPipeline assembles the crawl-report-persist pipeline for one
// target, applying any site-specific configuration for its host.
func buildPipeline(cfg *config.Config, target string, out *reportOutput, db *database.HistoryDB, logger *slog.Logger) (*pipeline.Pipeline, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL %q: %w", target, err)
	}

	siteConfig := cfg.SiteConfigs.GetSiteConfig(u.Host)

	maxPages := cfg.MaxPages
	if siteConfig.MaxPages > 0 {
		maxPages = siteConfig.MaxPages
	}

	delay := cfg.Delay
	if siteConfig.Delay != "" {
		delay, err = time.ParseDuration(siteConfig.Delay)
		if err != nil {
			return nil, fmt.Errorf("invalid delay %q configured for %s: %w", siteConfig.Delay, u.Host, err)
		}
	}

	clientOpts := []fetch.Option{
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
	}
	if len(siteConfig.Headers) > 0 {
		clientOpts = append(clientOpts, fetch.WithHeaders(siteConfig.Headers))
	}

	client := fetch.NewClient(clientOpts...)

	crawlOpts := []crawler.Option{
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithDelay(delay),
		crawler.WithMaxPages(maxPages),
		crawler.WithLogger(logger),
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		crawlOpts = append(crawlOpts, crawler.WithIgnorePatterns(siteConfig.IgnorePatterns))
	}
	if len(siteConfig.FollowPatterns) > 0 {
		crawlOpts = append(crawlOpts, crawler.WithFollowPatterns(siteConfig.FollowPatterns))
	}

	var writer report.Writer
	if cfg.Markdown {
		writer = report.NewMarkdownWriter(out.w)
	} else {
		writer = report.NewJSONWriter(out.w, report.WithPrettyPrint())
	}

	// Add steps in logical order. Report and persist are finalizers, so
	// an interrupted crawl still writes out whatever it recorded.
	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewCrawlStep(crawler.NewCrawler(client, crawlOpts...), pipeline.WithCrawlLogger(logger)),
		pipeline.NewReportStep(writer, pipeline.WithReportLogger(logger)),
	)
	if db != nil {
		p.AddStep(pipeline.NewPersistStep(db, pipeline.WithPersistLogger(logger)))
	}

	return p, nil
}

// reportOutput is the destination of a single report.
type reportOutput struct {
	// w receives the rendered report.
	w io.Writer

	// file is the opened report file; nil when writing to stdout.
	file *os.File

	// path is the report file path; empty when writing to stdout.
	path string
}

// close flushes the report file to disk. Writing to stdout needs no close.
func (o *reportOutput) close() error {
	if o.file == nil {
		return nil
	}
	return o.file.Close()
}

// discard removes a report file that never received a complete report,
// so failed crawls do not leave empty artifacts behind.
func (o *reportOutput) discard() {
	if o.file == nil {
		return
	}
	_ = o.file.Close()    //nolint:errcheck // the file is being thrown away
	_ = os.Remove(o.path) //nolint:errcheck // best-effort cleanup
}

// openOutput resolves the report destination for a target: an explicit
// path, "-" for stdout, or an auto-named file in the current directory.
func openOutput(outputFlag, target string, markdown bool) (*reportOutput, error) {
	if outputFlag == "-" {
		return &reportOutput{w: os.Stdout}, nil
	}

	path := outputFlag
	if path == "" {
		path = autoOutputPath(target, markdown, time.Now())
	}

	// Create directories if they don't exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Create/overwrite the report file with owner-only permissions;
	// inventories of authenticated sites may expose internal URLs.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &reportOutput{w: f, file: f, path: path}, nil
}

// autoOutputPath derives a report filename from the target host and a
// timestamp, e.g. docs_example_com_20260314_093045.json. A leading www.
// is dropped and dots and ports become underscores.
func autoOutputPath(target string, markdown bool, now time.Time) string {
	host := target
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		host = u.Host
	}

	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	host = strings.NewReplacer(".", "_", ":", "_").Replace(host)

	ext := ".json"
	if markdown {
		ext = ".md"
	}

	return host + "_" + now.Format("20060102_150405") + ext
}
