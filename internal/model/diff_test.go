package model

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestDiff tests the run comparison helpers and document shape.
func TestDiff(t *testing.T) {
	t.Parallel()

	t.Run("new diff has no changes", func(t *testing.T) {
		t.Parallel()

		d := NewDiff("example.com")
		if d.HasChanges() {
			t.Error("expected no changes")
		}
		if d.TotalChanges() != 0 {
			t.Errorf("expected 0 total changes, got %d", d.TotalChanges())
		}
	})

	t.Run("any non-empty set counts as a change", func(t *testing.T) {
		t.Parallel()

		d := NewDiff("example.com")
		d.Changed = append(d.Changed, PageChange{URL: "https://example.com/about"})

		if !d.HasChanges() {
			t.Error("expected changes")
		}
		if d.TotalChanges() != 1 {
			t.Errorf("expected 1 total change, got %d", d.TotalChanges())
		}
	})

	t.Run("empty sets serialize as arrays not null", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(NewDiff("example.com"))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		out := string(data)
		for _, key := range []string{`"added":[]`, `"removed":[]`, `"changed":[]`} {
			if !strings.Contains(out, key) {
				t.Errorf("expected %s in %s", key, out)
			}
		}
	})

	t.Run("page change omits empty title", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(PageChange{URL: "https://example.com/"})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		if strings.Contains(string(data), "title") {
			t.Errorf("expected title to be omitted, got %s", data)
		}
	})
}
