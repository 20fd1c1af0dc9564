package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips every tag and drops script/style/iframe content entirely,
// leaving only the text a reader would see. Safe for concurrent Sanitize
// calls once constructed.
var strict = bluemonday.StrictPolicy()

// Fingerprint computes the content hash of an HTML fragment's normalized
// visible text. Normalization: markup and non-content nodes removed,
// entities unescaped, whitespace runs collapsed to single spaces, then
// case-folded. The hash is hex-encoded SHA-256.
//
// Cosmetically different markup with identical rendered content yields the
// same fingerprint; a fragment with no visible text yields the fingerprint
// of the empty string, so text-free pages collapse into one.
func Fingerprint(fragment string) string {
	text := strict.Sanitize(fragment)
	text = html.UnescapeString(text)
	text = strings.ToLower(strings.Join(strings.Fields(text), " "))

	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Registry is the set of fingerprints seen during one crawl.
//
// Design decision: We store the first URL alongside each fingerprint
// because:
//  1. Duplicate skips are logged with the page they duplicate
//  2. The run history can attribute duplicates for later comparison
//  3. The cost is one string per unique page
type Registry struct {
	mu   sync.Mutex
	seen map[string]string // fingerprint -> first URL registered
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		seen: make(map[string]string),
	}
}

// Seen reports whether the fingerprint was already registered.
func (r *Registry) Seen(fingerprint string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.seen[fingerprint]
	return ok
}

// Register records the fingerprint with its originating URL in one atomic
// step. It returns ("", true) when the fingerprint is new; when it was
// already present it returns the first registered URL and false, and the
// registry is left unchanged. The combined check-and-set keeps concurrent
// workers from both claiming the same content.
func (r *Registry) Register(fingerprint, url string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if first, ok := r.seen[fingerprint]; ok {
		return first, false
	}

	r.seen[fingerprint] = url
	return "", true
}

// Len returns the number of unique fingerprints registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.seen)
}
