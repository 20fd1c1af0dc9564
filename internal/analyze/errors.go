package analyze

import "errors"

// ErrNoContent reports markup so empty or broken that no inventory can be
// built from it: after non-content nodes are stripped, the document body
// carries no elements at all.
var ErrNoContent = errors.New("analyze: document has no content")
