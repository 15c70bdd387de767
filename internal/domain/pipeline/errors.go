package pipeline

import "errors"

// ErrNotFound indicates a derived-view lookup with an identifier that was
// never minted. It is a client error, distinct from upstream failures.
var ErrNotFound = errors.New("request not found")

// ErrDuplicateID indicates a put with an identifier that already exists.
// Identifiers are globally unique by construction, so hitting this is a bug.
var ErrDuplicateID = errors.New("request id already exists")

// ErrInputInvalid indicates a bad document (empty text, unsupported type).
// It is rejected before any external call and is not retryable as-is.
var ErrInputInvalid = errors.New("invalid input")
