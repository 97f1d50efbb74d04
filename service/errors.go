package service

import "errors"

// ErrNilFailure stands in for a nil error passed to Failure.
var ErrNilFailure = errors.New("failure without an error")

// ErrUnboxType is returned by an unboxed service whose boxed success value
// does not have the expected type.
var ErrUnboxType = errors.New("boxed value has unexpected type")
