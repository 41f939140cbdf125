package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// record does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. merge called with an empty duplicate list).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrStorage is returned when the underlying data source is unavailable or a
// write failed. Callers use it to distinguish "the database broke" from
// "zero matches". Handlers should map this to HTTP 503.
var ErrStorage = errors.New("storage failure")
