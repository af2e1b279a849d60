package ranking

import "errors"

// ErrNotCharting marks a song that exists but has no entry in the current
// edition. Detail lookups treat it as not found.
var ErrNotCharting = errors.New("song not in current edition")
