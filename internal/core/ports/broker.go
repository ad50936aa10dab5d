package ports

import "context"

// RawMessage is one inbound RSSI observation as decoded off the wire,
// before receive-time stamping or MAC hashing.
type RawMessage struct {
	TS        float64 `json:"ts"` // publisher time, informational only
	SnifferID string  `json:"rpi_id"`
	MAC       string  `json:"mac"`
	RSSI      int     `json:"rssi"`
}

// MessageHandler is invoked serially, once per inbound message, by the
// broker's read loop. It must not block: this is the engine's single
// serialization point.
type MessageHandler func(ctx context.Context, msg RawMessage, rxTS float64)

// Broker subscribes to the external transport and delivers decoded
// messages to a handler until ctx is cancelled.
type Broker interface {
	Run(ctx context.Context, handler MessageHandler) error
	Close() error
}
