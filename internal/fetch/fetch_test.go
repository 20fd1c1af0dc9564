package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestClientFetch tests the happy paths and failure taxonomy.
func TestClientFetch(t *testing.T) {
	t.Parallel()

	t.Run("fetches a page", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><title>Home</title></html>"))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client := NewClient(WithHTTPClient(srv.Client()))
		resp, err := client.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}

		if resp.StatusCode != http.StatusOK {
			t.Errorf("got status %d", resp.StatusCode)
		}
		if resp.ContentType != "text/html" {
			t.Errorf("got content type %q", resp.ContentType)
		}
		if !resp.IsHTML() {
			t.Error("expected HTML response")
		}
		if !strings.Contains(string(resp.Body), "<title>Home</title>") {
			t.Errorf("unexpected body %q", resp.Body)
		}
	})

	t.Run("sends user agent and extra headers", func(t *testing.T) {
		t.Parallel()

		var gotUA, gotLang string
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotLang = r.Header.Get("Accept-Language")
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client := NewClient(
			WithHTTPClient(srv.Client()),
			WithUserAgent("inventory-test/0.1"),
			WithHeaders(map[string]string{"Accept-Language": "en"}),
		)
		if _, err := client.Fetch(context.Background(), srv.URL); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}

		if gotUA != "inventory-test/0.1" {
			t.Errorf("got user agent %q", gotUA)
		}
		if gotLang != "en" {
			t.Errorf("got accept-language %q", gotLang)
		}
	})

	t.Run("error status becomes a fetch error with the status", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		srv := httptest.NewServer(mux) // no routes: 404 everywhere
		defer srv.Close()

		client := NewClient(WithHTTPClient(srv.Client()))
		_, err := client.Fetch(context.Background(), srv.URL+"/missing")
		if err == nil {
			t.Fatal("expected error")
		}

		var fetchErr *Error
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected *Error, got %T", err)
		}
		if fetchErr.StatusCode != http.StatusNotFound {
			t.Errorf("got status %d", fetchErr.StatusCode)
		}
		if fetchErr.Timeout() {
			t.Error("status failure reported as timeout")
		}
	})

	t.Run("slow server trips the per-request timeout", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client := NewClient(WithHTTPClient(srv.Client()), WithTimeout(30*time.Millisecond))
		_, err := client.Fetch(context.Background(), srv.URL)
		if err == nil {
			t.Fatal("expected timeout error")
		}

		var fetchErr *Error
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected *Error, got %T", err)
		}
		if !fetchErr.Timeout() {
			t.Errorf("expected timeout classification, got %v", err)
		}
	})

	t.Run("body is capped at the configured size", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client := NewClient(WithHTTPClient(srv.Client()), WithMaxBodySize(128))
		resp, err := client.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(resp.Body) != 128 {
			t.Errorf("got body length %d, expected 128", len(resp.Body))
		}
	})

	t.Run("legacy charset is decoded to UTF-8", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			// "café" with é as the latin-1 byte 0xE9
			_, _ = w.Write([]byte{'c', 'a', 'f', 0xE9})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client := NewClient(WithHTTPClient(srv.Client()))
		resp, err := client.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if got := string(resp.Body); got != "café" {
			t.Errorf("got %q, expected %q", got, "café")
		}
	})

	t.Run("redirects are followed to the final URL", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("arrived"))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client := NewClient(WithHTTPClient(srv.Client()))
		resp, err := client.Fetch(context.Background(), srv.URL+"/old")
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if !strings.HasSuffix(resp.URL, "/new") {
			t.Errorf("got final URL %q", resp.URL)
		}
	})

	t.Run("rejects URLs without an http scheme", func(t *testing.T) {
		t.Parallel()

		client := NewClient()
		for _, bad := range []string{"", "ftp://example.com", "example.com/path", "://broken"} {
			if _, err := client.Fetch(context.Background(), bad); !errors.Is(err, ErrInvalidURL) {
				t.Errorf("Fetch(%q) error = %v, expected ErrInvalidURL", bad, err)
			}
		}
	})
}

// TestResponseContentTypes tests the content-type helpers used by the
// crawler to gate page vs sitemap handling.
func TestResponseContentTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		isHTML      bool
		isXML       bool
	}{
		{"text/html", true, false},
		{"application/xhtml+xml", true, true},
		{"application/xml", false, true},
		{"text/xml", false, true},
		{"application/rss+xml", false, true},
		{"", true, true},
		{"image/png", false, false},
		{"application/pdf", false, false},
	}

	for _, tt := range tests {
		name := tt.contentType
		if name == "" {
			name = "missing content type"
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := &Response{ContentType: tt.contentType}
			if got := r.IsHTML(); got != tt.isHTML {
				t.Errorf("IsHTML() = %v, expected %v", got, tt.isHTML)
			}
			if got := r.IsXML(); got != tt.isXML {
				t.Errorf("IsXML() = %v, expected %v", got, tt.isXML)
			}
		})
	}
}
