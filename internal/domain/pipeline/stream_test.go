package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(s *Stream) []ProgressEvent {
	var out []ProgressEvent
	for ev := range s.Events() {
		out = append(out, ev)
	}
	return out
}

func TestStream_OrderAndTerminal(t *testing.T) {
	s := NewStream(context.Background())
	s.Info("received", 5)
	s.Success("extracted", 15)
	s.Info("rendering", 50)
	s.Complete("done", RenderArtifact{RequestID: "r1"})

	events := drain(s)
	require.Len(t, events, 4)
	assert.Equal(t, "received", events[0].Message)
	assert.Equal(t, StatusComplete, events[3].Status)
	require.NotNil(t, events[3].Payload)
	assert.Equal(t, RequestID("r1"), events[3].Payload.RequestID)
}

func TestStream_PercentNeverDecreases(t *testing.T) {
	s := NewStream(context.Background())
	s.Info("a", 40)
	s.Info("b", 10) // out-of-order progress must be clamped
	s.Complete("done", RenderArtifact{})

	events := drain(s)
	require.Len(t, events, 3)
	last := -1
	for _, ev := range events {
		if ev.Percent == nil {
			continue
		}
		assert.GreaterOrEqual(t, *ev.Percent, last)
		last = *ev.Percent
	}
	assert.Equal(t, 100, last)
}

func TestStream_NothingAfterTerminal(t *testing.T) {
	s := NewStream(context.Background())
	s.Fail("boom")
	s.Info("late", 90)
	s.Complete("late done", RenderArtifact{})

	events := drain(s)
	require.Len(t, events, 1)
	assert.Equal(t, StatusError, events[0].Status)
}

func TestStream_ExactlyOneTerminal(t *testing.T) {
	s := NewStream(context.Background())
	s.Info("a", 10)
	s.Warn("degraded")
	s.Complete("done", RenderArtifact{})

	terminals := 0
	for _, ev := range drain(s) {
		if ev.Status.Terminal() {
			terminals++
		}
	}
	assert.Equal(t, 1, terminals)
}

func TestStream_ConsumerGoneDoesNotBlockProducer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewStream(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// more events than the channel buffer holds, with no reader
		for i := 0; i < 100; i++ {
			s.Info("tick", i)
		}
		s.Complete("done", RenderArtifact{})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer blocked after consumer context was cancelled")
	}
}

func TestStream_WarnCarriesNoPercent(t *testing.T) {
	s := NewStream(context.Background())
	s.Warn("partial data")
	s.Complete("done", RenderArtifact{})

	events := drain(s)
	require.Len(t, events, 2)
	assert.Nil(t, events[0].Percent)
}
