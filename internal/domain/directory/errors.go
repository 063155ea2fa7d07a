package directory

import "errors"

// ErrNotFound is returned by single-row lookups when no employee or
// department matches.
var ErrNotFound = errors.New("not found")
