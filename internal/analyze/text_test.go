package analyze

import (
	"errors"
	"net/url"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// mustParse parses an HTML fixture or fails the test.
func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := ParseDocument([]byte(html))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	return doc
}

// mustURL parses a URL fixture or fails the test.
func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) error = %v", raw, err)
	}
	return u
}

// TestParseDocument tests body parsing and non-content stripping.
func TestParseDocument(t *testing.T) {
	t.Parallel()

	t.Run("script and style content is removed", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<html><body><p>Visible</p><script>var hidden = 1;</script><style>p{}</style></body></html>`)
		if got := Text(doc.Find("body")); got != "Visible" {
			t.Errorf("body text = %q, want %q", got, "Visible")
		}
	})

	t.Run("empty body yields ErrNoContent", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseDocument([]byte("<html><body></body></html>")); !errors.Is(err, ErrNoContent) {
			t.Errorf("ParseDocument() error = %v, want ErrNoContent", err)
		}
	})

	t.Run("body holding only stripped nodes yields ErrNoContent", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseDocument([]byte("<body><script>var x = 1;</script></body>")); !errors.Is(err, ErrNoContent) {
			t.Errorf("ParseDocument() error = %v, want ErrNoContent", err)
		}
	})
}

// TestText tests whitespace normalization of visible text.
func TestText(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "<p>  Hello\n\n\t  World  </p>")
	if got := Text(doc.Find("p")); got != "Hello World" {
		t.Errorf("Text() = %q, want %q", got, "Hello World")
	}
}

// TestMainRegion tests the content region fallback chain.
func TestMainRegion(t *testing.T) {
	t.Parallel()

	t.Run("semantic main wins", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<body><div id="content">aside</div><main><p>real</p></main></body>`)
		if region := MainRegion(doc); !region.Is("main") {
			t.Error("expected the semantic main element")
		}
	})

	t.Run("content id is the first fallback", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<body><div id="content"><p>real</p></div></body>`)
		region := MainRegion(doc)
		if got := region.AttrOr("id", ""); got != "content" {
			t.Errorf("region id = %q, want %q", got, "content")
		}
	})

	t.Run("content class div is recognized", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<body><div class="content"><p>real</p></div></body>`)
		region := MainRegion(doc)
		if got := region.AttrOr("class", ""); got != "content" {
			t.Errorf("region class = %q, want %q", got, "content")
		}
	})

	t.Run("body is the last resort", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<body><p>everything</p></body>`)
		if region := MainRegion(doc); !region.Is("body") {
			t.Error("expected the body element")
		}
	})
}
