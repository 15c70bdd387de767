package render

import (
	"context"
	"errors"
)

// Renderer turns a finalized instruction set plus summary into a raster image.
// It is the most failure-prone stage of the pipeline and its errors must stay
// distinguishable from extraction failures.
type Renderer interface {
	Render(ctx context.Context, instructions, summary string) ([]byte, error)
}

// ErrUnavailable indicates the rendering tool is unreachable or timed out.
var ErrUnavailable = errors.New("renderer unavailable")

// ErrBadInstructions indicates the renderer rejected the instruction set.
var ErrBadInstructions = errors.New("renderer rejected instructions")
