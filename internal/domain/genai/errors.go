package genai

import "errors"

// ErrThrottled indicates the generation provider returned a quota/limit error (HTTP 429 or similar).
var ErrThrottled = errors.New("generation throttled")

// ErrUnavailable covers authentication failures, timeouts and transport errors
// from the generation provider. The caller treats all of them the same way.
var ErrUnavailable = errors.New("generation unavailable")
