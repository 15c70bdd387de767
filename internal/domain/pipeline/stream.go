package pipeline

import (
	"context"
	"sync"
)

// Stream is the progress channel for one in-flight render request.
// A single producer appends events, one consumer drains them in order.
// The stream enforces the event invariants: percentages never decrease,
// exactly one terminal event, nothing after it. If the consumer's context
// is done the producer's writes are dropped without blocking; upstream
// work already in flight is not aborted.
type Stream struct {
	ctx context.Context
	ch  chan ProgressEvent

	mu      sync.Mutex
	percent int
	closed  bool
}

// NewStream binds a stream to the consumer's context. The buffer lets the
// producer run a stage ahead of a slow drain loop without stalling.
func NewStream(ctx context.Context) *Stream {
	return &Stream{ctx: ctx, ch: make(chan ProgressEvent, 16)}
}

// Events is the consumer side. The channel closes after the terminal event.
func (s *Stream) Events() <-chan ProgressEvent { return s.ch }

// Info emits an informational event. pct < 0 omits the percentage.
func (s *Stream) Info(msg string, pct int) { s.emit(StatusInfo, msg, pct, nil) }

// Success marks a stage transition.
func (s *Stream) Success(msg string, pct int) { s.emit(StatusSuccess, msg, pct, nil) }

// Warn reports a degradation that does not end the stream.
func (s *Stream) Warn(msg string) { s.emit(StatusWarning, msg, -1, nil) }

// Fail emits the terminal error event and closes the stream.
func (s *Stream) Fail(msg string) { s.emit(StatusError, msg, -1, nil) }

// Complete emits the terminal event carrying the rendered artifact.
func (s *Stream) Complete(msg string, art RenderArtifact) {
	s.emit(StatusComplete, msg, 100, &art)
}

func (s *Stream) emit(status EventStatus, msg string, pct int, payload *RenderArtifact) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	ev := ProgressEvent{Message: msg, Status: status, Payload: payload}
	if pct >= 0 {
		if pct < s.percent {
			pct = s.percent
		}
		s.percent = pct
		p := pct
		ev.Percent = &p
	}
	terminal := status.Terminal()
	s.closed = terminal
	s.mu.Unlock()

	select {
	case s.ch <- ev:
	case <-s.ctx.Done():
		// consumer disconnected; drop the event
	}
	if terminal {
		close(s.ch)
	}
}
