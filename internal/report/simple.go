package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/webinventory/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the site inventory in human-readable format.
func (w *SimpleWriter) Write(site *model.Site) (int, error) {
	var sb strings.Builder

	// Header
	w.writeHeader(&sb, site)

	// Global header/footer
	w.writeChrome(&sb, site.Chrome)

	// Pages
	w.writePages(&sb, site)

	// Footer
	w.writeFooter(&sb)

	// Write to output
	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the inventory header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, site *model.Site) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        WEBSITE INVENTORY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	name := site.Name
	if name == "" {
		name = site.URL
	}

	sb.WriteString(fmt.Sprintf("Site:        %s\n", name))
	sb.WriteString(fmt.Sprintf("URL:         %s\n", site.URL))
	if site.Description != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", site.Description))
	}
	sb.WriteString(fmt.Sprintf("Crawl Date:  %s\n", site.CrawledAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Pages:       %d\n", len(site.Pages)))

	sb.WriteString("\n")
}

// writeChrome writes the site-global header and footer section.
func (w *SimpleWriter) writeChrome(sb *strings.Builder, chrome model.Chrome) {
	if chrome.IsEmpty() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("GLOBAL COMPONENTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if chrome.IsEmpty() {
		sb.WriteString("  No site-global header or footer recognized\n\n")
		return
	}

	if !chrome.Header.IsEmpty() {
		w.writeHeaderChrome(sb, chrome.Header)
	}
	if !chrome.Footer.IsEmpty() {
		w.writeFooterChrome(sb, chrome.Footer)
	}
}

// writeHeaderChrome writes the extracted header properties.
func (w *SimpleWriter) writeHeaderChrome(sb *strings.Builder, header *model.Header) {
	sb.WriteString("Header:\n")
	if header.Logo != "" {
		sb.WriteString(fmt.Sprintf("  Logo:       %s\n", header.Logo))
	}
	if len(header.Navigation) > 0 {
		sb.WriteString(fmt.Sprintf("  Navigation: %s\n", strings.Join(header.Navigation, ", ")))
	}
	if header.Contact != nil {
		if header.Contact.Email != "" {
			sb.WriteString(fmt.Sprintf("  Email:      %s\n", header.Contact.Email))
		}
		if header.Contact.Phone != "" {
			sb.WriteString(fmt.Sprintf("  Phone:      %s\n", header.Contact.Phone))
		}
	}
	sb.WriteString("\n")
}

// writeFooterChrome writes the extracted footer properties and links.
func (w *SimpleWriter) writeFooterChrome(sb *strings.Builder, footer *model.Footer) {
	sb.WriteString("Footer:\n")
	if footer.Address != "" {
		sb.WriteString(fmt.Sprintf("  Address: %s\n", footer.Address))
	}
	if footer.Email != "" {
		sb.WriteString(fmt.Sprintf("  Email:   %s\n", footer.Email))
	}
	if footer.Phone != "" {
		sb.WriteString(fmt.Sprintf("  Phone:   %s\n", footer.Phone))
	}
	if len(footer.SocialLinks) > 0 {
		sb.WriteString(fmt.Sprintf("  Social:  %s\n", strings.Join(footer.SocialLinks, ", ")))
	}
	for _, l := range footer.FooterLinks {
		sb.WriteString(fmt.Sprintf("  [+] %s -> %s\n", l.Label, l.URL))
	}
	sb.WriteString("\n")
}

// writePages writes one entry per recorded page.
func (w *SimpleWriter) writePages(sb *strings.Builder, site *model.Site) {
	if len(site.Pages) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(site.Pages) == 0 {
		sb.WriteString("  No pages recorded\n\n")
		return
	}

	for _, page := range site.Pages {
		w.writePage(sb, page)
	}
}

// writePage writes one page entry with its component summary.
func (w *SimpleWriter) writePage(sb *strings.Builder, page *model.Page) {
	sb.WriteString(fmt.Sprintf("  * %s (%s)\n", page.Slug, page.Path))
	if page.Title != "" {
		sb.WriteString(fmt.Sprintf("    Title:      %s\n", page.Title))
	}
	sb.WriteString(fmt.Sprintf("    Components: %s\n", summarizeComponents(page.Components)))
	sb.WriteString(fmt.Sprintf("    Links:      %d internal, %d external\n",
		len(page.Links.Internal), len(page.Links.External)))

	if w.verbose {
		for _, c := range page.Components {
			detail := componentDetail(c)
			if detail == "" {
				continue
			}
			sb.WriteString(fmt.Sprintf("      [%s] %s\n", c.Type, model.Truncate(detail, 80)))
		}
	}
	sb.WriteString("\n")
}

// summarizeComponents renders per-type counts in display order.
func summarizeComponents(components []model.Component) string {
	if len(components) == 0 {
		return "none"
	}

	counts := make(map[string]int)
	for _, c := range components {
		counts[c.Type]++
	}

	parts := make([]string, 0, len(counts))
	for _, ct := range componentTypes {
		if counts[ct] == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%d)", ct, counts[ct]))
	}
	return strings.Join(parts, ", ")
}

// WriteDiff outputs the run comparison in human-readable format.
func (w *SimpleWriter) WriteDiff(diff *model.Diff) (int, error) {
	var sb strings.Builder

	w.writeDiffHeader(&sb, diff)
	w.writeChanges(&sb, diff)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeDiffHeader writes the comparison header with run information.
func (w *SimpleWriter) writeDiffHeader(sb *strings.Builder, diff *model.Diff) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         CONTENT CHANGES\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Site:      %s\n", diff.Site))
	sb.WriteString(fmt.Sprintf("Older Run: %s (%s)\n",
		diff.OldRunID, diff.OldCrawledAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Newer Run: %s (%s)\n",
		diff.NewRunID, diff.NewCrawledAt.Format("2006-01-02 15:04:05 MST")))

	sb.WriteString("\n")
}

// writeChanges writes the added/removed/changed page sets.
func (w *SimpleWriter) writeChanges(sb *strings.Builder, diff *model.Diff) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CHANGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if !diff.HasChanges() {
		sb.WriteString("  No content changes detected\n\n")
		return
	}

	sb.WriteString(fmt.Sprintf("  Added:   %d\n", len(diff.Added)))
	sb.WriteString(fmt.Sprintf("  Removed: %d\n", len(diff.Removed)))
	sb.WriteString(fmt.Sprintf("  Changed: %d\n", len(diff.Changed)))
	sb.WriteString("\n")

	w.writeChangeSet(sb, "+", diff.Added)
	w.writeChangeSet(sb, "-", diff.Removed)
	w.writeChangeSet(sb, "~", diff.Changed)
}

// writeChangeSet writes one change set with its marker.
// Markers: + added, - removed, ~ changed.
func (w *SimpleWriter) writeChangeSet(sb *strings.Builder, marker string, changes []model.PageChange) {
	for _, c := range changes {
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", marker, c.URL))
		if w.verbose && c.Title != "" {
			sb.WriteString(fmt.Sprintf("      Title: %s\n", c.Title))
		}
	}
	if len(changes) > 0 {
		sb.WriteString("\n")
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by webinventory\n")
	sb.WriteString("https://github.com/nao1215/webinventory\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
