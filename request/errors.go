package request

import "errors"

// ErrBodyTooLarge is returned by Body when the body exceeds the limit given
// to FromHTTP.
var ErrBodyTooLarge = errors.New("request body too large")
