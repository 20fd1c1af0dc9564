package model

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestTruncate tests the Truncate helper.
func TestTruncate(t *testing.T) {
	t.Parallel()

	t.Run("short text is returned unchanged", func(t *testing.T) {
		t.Parallel()

		if got := Truncate("hello", 10); got != "hello" {
			t.Errorf("got %q, expected %q", got, "hello")
		}
	})

	t.Run("text at the limit grows no marker", func(t *testing.T) {
		t.Parallel()

		if got := Truncate("12345", 5); got != "12345" {
			t.Errorf("got %q, expected %q", got, "12345")
		}
	})

	t.Run("long text is cut and marked", func(t *testing.T) {
		t.Parallel()

		got := Truncate(strings.Repeat("a", 500), TextBlockMaxLen)
		if len(got) != TextBlockMaxLen+len("...") {
			t.Errorf("got length %d, expected %d", len(got), TextBlockMaxLen+3)
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("expected ellipsis suffix, got %q", got[len(got)-5:])
		}
	})

	t.Run("non-positive limit disables truncation", func(t *testing.T) {
		t.Parallel()

		if got := Truncate("hello", 0); got != "hello" {
			t.Errorf("got %q, expected %q", got, "hello")
		}
	})
}

// TestComponentJSONShape tests that only the active variant's fields are
// serialized.
func TestComponentJSONShape(t *testing.T) {
	t.Parallel()

	t.Run("hero banner serializes title and subtitle only", func(t *testing.T) {
		t.Parallel()

		c := Component{
			Type:     ComponentHeroBanner,
			Title:    "Welcome",
			Subtitle: "We build things",
		}

		data, err := json.Marshal(c)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		got := string(data)
		for _, want := range []string{`"type":"hero_banner"`, `"title":"Welcome"`, `"subtitle":"We build things"`} {
			if !strings.Contains(got, want) {
				t.Errorf("output %s missing %s", got, want)
			}
		}
		for _, absent := range []string{"fields", "columns", "items", "images", "content"} {
			if strings.Contains(got, absent) {
				t.Errorf("output %s contains inactive field %s", got, absent)
			}
		}
	})

	t.Run("table serializes columns and sample data", func(t *testing.T) {
		t.Parallel()

		c := Component{
			Type:       ComponentTable,
			Columns:    []string{"Name", "Email"},
			SampleData: [][]string{{"Alice", "alice@example.com"}},
		}

		data, err := json.Marshal(c)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		got := string(data)
		if !strings.Contains(got, `"columns":["Name","Email"]`) {
			t.Errorf("output missing columns: %s", got)
		}
		if !strings.Contains(got, `"sample_data":[["Alice","alice@example.com"]]`) {
			t.Errorf("output missing sample_data: %s", got)
		}
	})

	t.Run("gallery image alt is always present", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(GalleryImage{Alt: "Image", Src: "/a.jpg"})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if got := string(data); got != `{"alt":"Image","src":"/a.jpg"}` {
			t.Errorf("got %s", got)
		}
	})
}
