package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/webinventory/internal/model"
)

// createTestSite creates an inventory with sample data for testing.
func createTestSite() *model.Site {
	site := model.NewSite("https://acme.test")
	site.Name = "Acme Widgets"
	site.Description = "Widgets for every occasion."
	site.CrawledAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	site.Chrome = model.Chrome{
		Header: &model.Header{
			Logo:       "Acme",
			Navigation: []string{"Home", "Products", "Contact"},
			Contact:    &model.Contact{Email: "info@acme.test"},
		},
		Footer: &model.Footer{
			Email:       "info@acme.test",
			SocialLinks: []string{"Twitter", "Facebook"},
			FooterLinks: []model.FooterLink{{Label: "Privacy", URL: "/privacy"}},
		},
	}

	home := model.NewPage("https://acme.test/")
	home.Slug = "home"
	home.Title = "Acme Widgets - Home"
	home.Path = "/"
	home.AddComponent(model.Component{
		Type:     model.ComponentHeroBanner,
		Title:    "Widgets that last",
		Subtitle: "Hand made since 1980.",
	})
	home.AddComponent(model.Component{
		Type:   model.ComponentForm,
		Fields: []string{"Name", "Email"},
	})
	home.Links.Internal = []string{"https://acme.test/products"}
	home.Links.External = []string{"https://example.org/"}
	site.AddPage(home)

	products := model.NewPage("https://acme.test/products")
	products.Slug = "products"
	products.Title = "Products"
	products.Path = "/products"
	products.AddComponent(model.Component{
		Type:       model.ComponentTable,
		Columns:    []string{"Name", "Price"},
		SampleData: [][]string{{"Widget", "$5"}},
	})
	site.AddPage(products)

	return site
}

// createTestDiff creates a run comparison with sample data for testing.
func createTestDiff() *model.Diff {
	diff := model.NewDiff("acme.test")
	diff.OldRunID = "11111111-aaaa-bbbb-cccc-111111111111"
	diff.NewRunID = "22222222-aaaa-bbbb-cccc-222222222222"
	diff.OldCrawledAt = time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC)
	diff.NewCrawledAt = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	diff.Added = append(diff.Added, model.PageChange{URL: "https://acme.test/new", Title: "New Page"})
	diff.Removed = append(diff.Removed, model.PageChange{URL: "https://acme.test/old"})
	diff.Changed = append(diff.Changed, model.PageChange{URL: "https://acme.test/", Title: "Acme Widgets - Home"})
	return diff
}

// errorWriter is an io.Writer that always fails.
type errorWriter struct{}

func (errorWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

// TestJSONWriter tests the JSON inventory writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("wraps the inventory in a website envelope", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestSite()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var doc map[string]json.RawMessage
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(doc) != 1 {
			t.Errorf("expected a single top-level key, got %d", len(doc))
		}
		if _, ok := doc["website"]; !ok {
			t.Error("expected top-level website key")
		}
	})

	t.Run("compact output is a single line", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		n, err := w.Write(createTestSite())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := bytes.Count(buf.Bytes(), []byte("\n")); got != 1 {
			t.Errorf("expected exactly one newline, got %d", got)
		}
		if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
			t.Error("expected trailing newline")
		}
		if n != buf.Len() {
			t.Errorf("expected byte count %d, got %d", buf.Len(), n)
		}
	})

	t.Run("pretty print indents nested fields", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(createTestSite()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  \"website\"") {
			t.Error("expected indented website key")
		}
	})

	t.Run("custom indent prefix is applied", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithIndent(">", "\t"))

		if _, err := w.Write(createTestSite()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n>\t\"website\"") {
			t.Error("expected prefixed and tab-indented website key")
		}
	})

	t.Run("round trip preserves site data", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		site := createTestSite()

		if _, err := w.Write(site); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var doc inventoryDocument
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if doc.Website.Name != site.Name {
			t.Errorf("expected name %q, got %q", site.Name, doc.Website.Name)
		}
		if doc.Website.URL != site.URL {
			t.Errorf("expected url %q, got %q", site.URL, doc.Website.URL)
		}
		if len(doc.Website.Pages) != len(site.Pages) {
			t.Fatalf("expected %d pages, got %d", len(site.Pages), len(doc.Website.Pages))
		}
		if doc.Website.Pages[0].Slug != "home" {
			t.Errorf("expected first page slug home, got %q", doc.Website.Pages[0].Slug)
		}
		if doc.Website.Pages[0].Components[0].Type != model.ComponentHeroBanner {
			t.Errorf("unexpected first component type %q", doc.Website.Pages[0].Components[0].Type)
		}
	})

	t.Run("write diff outputs change sets", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.WriteDiff(createTestDiff()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var diff model.Diff
		if err := json.Unmarshal(buf.Bytes(), &diff); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if diff.Site != "acme.test" {
			t.Errorf("expected site acme.test, got %q", diff.Site)
		}
		if len(diff.Added) != 1 || len(diff.Removed) != 1 || len(diff.Changed) != 1 {
			t.Errorf("unexpected change set sizes: %d/%d/%d",
				len(diff.Added), len(diff.Removed), len(diff.Changed))
		}
	})

	t.Run("empty diff keeps change set keys", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.WriteDiff(model.NewDiff("acme.test")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, key := range []string{`"added":[]`, `"removed":[]`, `"changed":[]`} {
			if !strings.Contains(output, key) {
				t.Errorf("expected output to contain %s", key)
			}
		}
	})

	t.Run("write errors propagate", func(t *testing.T) {
		t.Parallel()

		w := NewJSONWriter(errorWriter{})

		if _, err := w.Write(createTestSite()); err == nil {
			t.Error("expected error from failing output")
		}
	})
}

// TestMarkdownWriter tests the markdown inventory writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes inventory heading and overview", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestSite()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Website Inventory") {
			t.Error("expected inventory heading")
		}
		if !strings.Contains(output, "Acme Widgets") {
			t.Error("expected site name in overview")
		}
		if !strings.Contains(output, "`https://acme.test`") {
			t.Error("expected site URL in overview")
		}
	})

	t.Run("summary counts component types", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestSite()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Component Summary") {
			t.Error("expected component summary section")
		}
		for _, ct := range []string{"hero_banner", "form", "table"} {
			if !strings.Contains(output, ct) {
				t.Errorf("expected summary to mention %s", ct)
			}
		}
		if !strings.Contains(output, "mermaid") {
			t.Error("expected mermaid component chart")
		}
		if !strings.Contains(output, "Component Distribution") {
			t.Error("expected component chart title")
		}
	})

	t.Run("chrome section lists header and footer", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestSite()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "### Header") {
			t.Error("expected header subsection")
		}
		if !strings.Contains(output, "Home, Products, Contact") {
			t.Error("expected joined navigation labels")
		}
		if !strings.Contains(output, "### Footer") {
			t.Error("expected footer subsection")
		}
		if !strings.Contains(output, "Twitter, Facebook") {
			t.Error("expected joined social platforms")
		}
	})

	t.Run("pages section has a row and a detail per page", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestSite()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Pages") {
			t.Error("expected pages section")
		}
		if !strings.Contains(output, "### Acme Widgets - Home") {
			t.Error("expected home page detail section")
		}
		if !strings.Contains(output, "### Products") {
			t.Error("expected products page detail section")
		}
		if !strings.Contains(output, "columns: Name, Price") {
			t.Error("expected table component detail")
		}
	})

	t.Run("empty inventory warns", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(model.NewSite("https://empty.test")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "The crawl recorded no pages.") {
			t.Error("expected empty-crawl warning")
		}
		if !strings.Contains(output, "No pages were recorded.") {
			t.Error("expected empty pages placeholder")
		}
	})

	t.Run("write diff renders change tables", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.WriteDiff(createTestDiff()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Content Changes") {
			t.Error("expected changes heading")
		}
		for _, section := range []string{"## Added Pages", "## Removed Pages", "## Changed Pages"} {
			if !strings.Contains(output, section) {
				t.Errorf("expected section %s", section)
			}
		}
		if !strings.Contains(output, "11111111-aaaa-bbbb-cccc-111111111111") {
			t.Error("expected older run ID in overview")
		}
	})

	t.Run("diff without changes emits a tip", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.WriteDiff(model.NewDiff("acme.test")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No content changes between the compared runs.") {
			t.Error("expected no-changes tip")
		}
		if strings.Contains(output, "## Added Pages") {
			t.Error("expected no change sections for an empty diff")
		}
	})
}

// TestSimpleWriter tests the human-readable inventory writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes inventory header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestSite()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "WEBSITE INVENTORY") {
			t.Error("expected output to contain header banner")
		}
		if !strings.Contains(output, "Acme Widgets") {
			t.Error("expected output to contain site name")
		}
		if !strings.Contains(output, "https://acme.test") {
			t.Error("expected output to contain site URL")
		}
	})

	t.Run("writes global components", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestSite()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "GLOBAL COMPONENTS") {
			t.Error("expected global components section")
		}
		if !strings.Contains(output, "Home, Products, Contact") {
			t.Error("expected joined navigation labels")
		}
		if !strings.Contains(output, "[+] Privacy -> /privacy") {
			t.Error("expected footer link entry")
		}
	})

	t.Run("writes page entries", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestSite()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "* home (/)") {
			t.Error("expected home page entry")
		}
		if !strings.Contains(output, "hero_banner (1), form (1)") {
			t.Error("expected component summary counts")
		}
		if !strings.Contains(output, "1 internal, 1 external") {
			t.Error("expected link counts")
		}
	})

	t.Run("verbose mode includes component details", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.Write(createTestSite()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[hero_banner] Widgets that last / Hand made since 1980.") {
			t.Error("expected hero banner detail line")
		}
		if !strings.Contains(output, "[form] fields: Name, Email") {
			t.Error("expected form detail line")
		}
	})

	t.Run("empty sections hidden by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(model.NewSite("https://empty.test")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "GLOBAL COMPONENTS") {
			t.Error("expected empty chrome section to be hidden")
		}
		if strings.Contains(output, "PAGES") {
			t.Error("expected empty pages section to be hidden")
		}
	})

	t.Run("show empty reveals placeholder sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowEmpty(true))

		if _, err := w.Write(model.NewSite("https://empty.test")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No site-global header or footer recognized") {
			t.Error("expected chrome placeholder")
		}
		if !strings.Contains(output, "No pages recorded") {
			t.Error("expected pages placeholder")
		}
	})

	t.Run("write diff lists changes with markers", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.WriteDiff(createTestDiff()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "CONTENT CHANGES") {
			t.Error("expected changes banner")
		}
		if !strings.Contains(output, "[+] https://acme.test/new") {
			t.Error("expected added page marker")
		}
		if !strings.Contains(output, "[-] https://acme.test/old") {
			t.Error("expected removed page marker")
		}
		if !strings.Contains(output, "[~] https://acme.test/") {
			t.Error("expected changed page marker")
		}
	})

	t.Run("diff without changes reports none", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.WriteDiff(model.NewDiff("acme.test")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "No content changes detected") {
			t.Error("expected no-changes message")
		}
	})

	t.Run("verbose diff includes titles", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.WriteDiff(createTestDiff()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Title: New Page") {
			t.Error("expected verbose title line")
		}
	})
}

// TestMultiWriter tests fan-out across multiple writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var jsonBuf, textBuf bytes.Buffer
		w := NewMultiWriter(NewJSONWriter(&jsonBuf), NewSimpleWriter(&textBuf))

		total, err := w.Write(createTestSite())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if jsonBuf.Len() == 0 {
			t.Error("expected JSON output")
		}
		if textBuf.Len() == 0 {
			t.Error("expected text output")
		}
		if total != jsonBuf.Len()+textBuf.Len() {
			t.Errorf("expected total %d, got %d", jsonBuf.Len()+textBuf.Len(), total)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMultiWriter(NewJSONWriter(errorWriter{}), NewJSONWriter(&buf))

		if _, err := w.Write(createTestSite()); err == nil {
			t.Error("expected error from failing writer")
		}
		if buf.Len() != 0 {
			t.Error("expected later writers to be skipped after an error")
		}
	})

	t.Run("fans out diffs", func(t *testing.T) {
		t.Parallel()

		var jsonBuf, textBuf bytes.Buffer
		w := NewMultiWriter(NewJSONWriter(&jsonBuf), NewSimpleWriter(&textBuf))

		if _, err := w.WriteDiff(createTestDiff()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if jsonBuf.Len() == 0 || textBuf.Len() == 0 {
			t.Error("expected diff output from both writers")
		}
	})
}
