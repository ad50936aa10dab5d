package broker

import (
	"context"
	"time"

	"github.com/neuralsense/fusion/internal/core/ports"
)

// MockBroker feeds a fixed, in-process sequence of messages through the
// handler, one per tick, for local testing and the -mock CLI flag.
type MockBroker struct {
	Messages []ports.RawMessage
	Interval time.Duration
}

// NewMockBroker builds a broker delivering messages at interval, looping
// once through the list and then idling until ctx is cancelled.
func NewMockBroker(messages []ports.RawMessage, interval time.Duration) *MockBroker {
	return &MockBroker{Messages: messages, Interval: interval}
}

// Run delivers each message in order, spaced by Interval, then blocks until
// ctx is cancelled.
func (m *MockBroker) Run(ctx context.Context, handler ports.MessageHandler) error {
	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if i >= len(m.Messages) {
				continue
			}
			rxTS := float64(time.Now().UnixNano()) / 1e9
			handler(ctx, m.Messages[i], rxTS)
			i++
		}
	}
}

// Close is a no-op for the mock broker.
func (m *MockBroker) Close() error { return nil }

var _ ports.Broker = (*MockBroker)(nil)
