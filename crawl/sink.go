package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/sitepulse"
)

var _ sitepulse.Sink = (*ChannelSink)(nil)

// DefaultSinkSize is the buffer capacity used when none is configured.
const DefaultSinkSize = 10

// ChannelSink is a bounded hand-off from many producers to one consumer.
// Producers block while the buffer is full; once the consumer calls
// Disconnect every pending and future Push returns sitepulse.ErrDisconnected.
// The events channel is never closed, since producers are not joined.
type ChannelSink struct {
	events chan sitepulse.ReportEvent
	done   chan struct{}
	once   sync.Once
}

// NewChannelSink creates a sink buffering up to size events.
func NewChannelSink(size int) *ChannelSink {
	if size <= 0 {
		size = DefaultSinkSize
	}
	return &ChannelSink{
		events: make(chan sitepulse.ReportEvent, size),
		done:   make(chan struct{}),
	}
}

// Push delivers evt to the consumer.
func (s *ChannelSink) Push(ctx context.Context, evt sitepulse.ReportEvent) error {
	// Prefer the disconnect signal over a free buffer slot.
	select {
	case <-s.done:
		return sitepulse.ErrDisconnected
	default:
	}

	select {
	case s.events <- evt:
		return nil
	case <-s.done:
		return sitepulse.ErrDisconnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events returns the channel the consumer drains.
func (s *ChannelSink) Events() <-chan sitepulse.ReportEvent {
	return s.events
}

// Done is closed once the consumer has disconnected.
func (s *ChannelSink) Done() <-chan struct{} {
	return s.done
}

// Disconnect marks the consumer as gone. It is safe to call more than once.
func (s *ChannelSink) Disconnect() {
	s.once.Do(func() {
		close(s.done)
	})
}
