package response

import "errors"

// ErrInvalidWriterState is returned when a part of the response is written
// out of order.
var ErrInvalidWriterState = errors.New("invalid writer state")

// ErrNilWriter is returned by a ResponseWriter that has nothing to write to.
var ErrNilWriter = errors.New("response writer is nil")
