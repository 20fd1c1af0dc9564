package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/webinventory/internal/model"
)

// MarkdownWriter outputs inventories in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the site inventory in Markdown format.
func (w *MarkdownWriter) Write(site *model.Site) (int, error) {
	md := markdown.NewMarkdown(w.output)

	// Header
	w.writeHeader(md, site)

	// Component summary
	w.writeSummary(md, site)

	// Global header/footer
	w.writeChrome(md, site.Chrome)

	// Per-page detail
	w.writePages(md, site)

	// Footer
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, site *model.Site) {
	md.H1("Website Inventory")
	md.PlainText("")

	name := site.Name
	if name == "" {
		name = site.URL
	}
	description := site.Description
	if description == "" {
		description = "-"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", name},
			{"URL", "`" + site.URL + "`"},
			{"Description", description},
			{"Crawl Date", site.CrawledAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages", strconv.Itoa(len(site.Pages))},
		},
	})
	md.PlainText("")
}

// writeSummary writes the component distribution across all pages.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, site *model.Site) {
	md.H2("Component Summary")
	md.PlainText("")

	counts, total := countComponents(site)

	rows := make([][]string, 0, len(componentTypes)+1)
	for _, ct := range componentTypes {
		if counts[ct] == 0 {
			continue
		}
		rows = append(rows, []string{ct, strconv.Itoa(counts[ct])})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(total) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Component", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	// Add pie chart if any components were classified
	if total > 0 {
		w.writeComponentChart(md, counts)
	}

	// Flag degenerate inventories
	w.writeAlert(md, site)
}

// writeComponentChart writes a mermaid pie chart of the component mix.
func (w *MarkdownWriter) writeComponentChart(md *markdown.Markdown, counts map[string]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Component Distribution"),
		piechart.WithShowData(true),
	)

	for _, ct := range componentTypes {
		if counts[ct] > 0 {
			chart.LabelAndIntValue(ct, uint64(counts[ct]))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert for degenerate inventories.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, site *model.Site) {
	switch {
	case len(site.Pages) == 0:
		md.Warning("The crawl recorded no pages.")
	case site.Chrome.IsEmpty():
		md.Note("No site-global header or footer was recognized.")
	default:
		return
	}
	md.PlainText("")
}

// writeChrome writes the site-global header and footer section.
func (w *MarkdownWriter) writeChrome(md *markdown.Markdown, chrome model.Chrome) {
	md.H2("Global Components")
	md.PlainText("")

	if chrome.IsEmpty() {
		md.PlainText("No site-global header or footer was recognized.")
		md.PlainText("")
		return
	}

	if !chrome.Header.IsEmpty() {
		w.writeHeaderChrome(md, chrome.Header)
	}
	if !chrome.Footer.IsEmpty() {
		w.writeFooterChrome(md, chrome.Footer)
	}
}

// writeHeaderChrome writes the extracted header properties.
func (w *MarkdownWriter) writeHeaderChrome(md *markdown.Markdown, header *model.Header) {
	md.PlainText("### Header")
	md.PlainText("")

	rows := make([][]string, 0, 4)
	if header.Logo != "" {
		rows = append(rows, []string{"Logo", header.Logo})
	}
	if len(header.Navigation) > 0 {
		rows = append(rows, []string{"Navigation", strings.Join(header.Navigation, ", ")})
	}
	if header.Contact != nil {
		if header.Contact.Email != "" {
			rows = append(rows, []string{"Email", header.Contact.Email})
		}
		if header.Contact.Phone != "" {
			rows = append(rows, []string{"Phone", header.Contact.Phone})
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooterChrome writes the extracted footer properties and links.
func (w *MarkdownWriter) writeFooterChrome(md *markdown.Markdown, footer *model.Footer) {
	md.PlainText("### Footer")
	md.PlainText("")

	rows := make([][]string, 0, 4)
	if footer.Address != "" {
		rows = append(rows, []string{"Address", footer.Address})
	}
	if footer.Email != "" {
		rows = append(rows, []string{"Email", footer.Email})
	}
	if footer.Phone != "" {
		rows = append(rows, []string{"Phone", footer.Phone})
	}
	if len(footer.SocialLinks) > 0 {
		rows = append(rows, []string{"Social", strings.Join(footer.SocialLinks, ", ")})
	}

	if len(rows) > 0 {
		md.Table(markdown.TableSet{
			Header: []string{"Property", "Value"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(footer.FooterLinks) > 0 {
		linkRows := make([][]string, len(footer.FooterLinks))
		for i, l := range footer.FooterLinks {
			linkRows[i] = []string{l.Label, "`" + l.URL + "`"}
		}

		md.Table(markdown.TableSet{
			Header: []string{"Link", "URL"},
			Rows:   linkRows,
		})
		md.PlainText("")
	}
}

// writePages writes the page index and a detail section per page.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, site *model.Site) {
	md.H2("Pages")
	md.PlainText("")

	if len(site.Pages) == 0 {
		md.PlainText("No pages were recorded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(site.Pages))
	for i, p := range site.Pages {
		rows[i] = []string{
			p.Slug,
			model.Truncate(p.Title, 40),
			"`" + p.Path + "`",
			strconv.Itoa(len(p.Components)),
			strconv.Itoa(len(p.Links.Internal)),
			strconv.Itoa(len(p.Links.External)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Slug", "Title", "Path", "Components", "Internal", "External"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, p := range site.Pages {
		w.writePageDetail(md, p)
	}
}

// writePageDetail writes one page's component table.
func (w *MarkdownWriter) writePageDetail(md *markdown.Markdown, page *model.Page) {
	title := page.Title
	if title == "" {
		title = page.Slug
	}

	md.PlainText("### " + title)
	md.PlainText("")

	if len(page.Components) == 0 {
		md.PlainText("No components classified.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(page.Components))
	for i, c := range page.Components {
		detail := componentDetail(c)
		if detail == "" {
			detail = "-"
		}
		rows[i] = []string{c.Type, model.Truncate(detail, 60)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Type", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteDiff outputs the run comparison in Markdown format.
func (w *MarkdownWriter) WriteDiff(diff *model.Diff) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Content Changes")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", diff.Site},
			{"Older Run", diff.OldRunID + " (" + diff.OldCrawledAt.Format("2006-01-02 15:04:05 MST") + ")"},
			{"Newer Run", diff.NewRunID + " (" + diff.NewCrawledAt.Format("2006-01-02 15:04:05 MST") + ")"},
			{"Pages Changed", strconv.Itoa(diff.TotalChanges())},
		},
	})
	md.PlainText("")

	if !diff.HasChanges() {
		md.Tip("No content changes between the compared runs.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	w.writeChangeSection(md, "Added Pages", diff.Added)
	w.writeChangeSection(md, "Removed Pages", diff.Removed)
	w.writeChangeSection(md, "Changed Pages", diff.Changed)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeChangeSection writes one added/removed/changed table.
// Empty change sets produce no section.
func (w *MarkdownWriter) writeChangeSection(md *markdown.Markdown, heading string, changes []model.PageChange) {
	if len(changes) == 0 {
		return
	}

	md.H2(heading)
	md.PlainText("")

	rows := make([][]string, len(changes))
	for i, c := range changes {
		title := c.Title
		if title == "" {
			title = "-"
		}
		rows[i] = []string{"`" + c.URL + "`", model.Truncate(title, 50)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Title"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [webinventory](https://github.com/nao1215/webinventory)*")
}

// componentTypes lists the component variants in display order.
var componentTypes = []string{
	model.ComponentHeroBanner,
	model.ComponentForm,
	model.ComponentTable,
	model.ComponentList,
	model.ComponentMediaGallery,
	model.ComponentRichText,
	model.ComponentTextBlock,
}

// countComponents tallies component types across all pages.
func countComponents(site *model.Site) (map[string]int, int) {
	counts := make(map[string]int)
	total := 0
	for _, p := range site.Pages {
		for _, c := range p.Components {
			counts[c.Type]++
			total++
		}
	}
	return counts, total
}

// componentDetail renders a one-line description of a component for table
// cells and terminal listings. The caller applies truncation.
func componentDetail(c model.Component) string {
	switch c.Type {
	case model.ComponentHeroBanner:
		if c.Subtitle == "" {
			return c.Title
		}
		return c.Title + " / " + c.Subtitle
	case model.ComponentForm:
		return "fields: " + strings.Join(c.Fields, ", ")
	case model.ComponentTable:
		return "columns: " + strings.Join(c.Columns, ", ")
	case model.ComponentList:
		return strings.Join(c.Items, "; ")
	case model.ComponentMediaGallery:
		return strconv.Itoa(len(c.Images)) + " image(s)"
	case model.ComponentRichText:
		if c.Heading == "" {
			return c.ContentPreview
		}
		return c.Heading + ": " + c.ContentPreview
	case model.ComponentTextBlock:
		return c.Content
	default:
		return ""
	}
}
