package buffer

import "errors"

// ErrNonPositiveRate indicates a channel has a non-positive rate after
// consistency checking, which should be unreachable for a validated graph.
var ErrNonPositiveRate = errors.New("buffer: channel has non-positive rate")
