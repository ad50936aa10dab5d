// Package broker implements the ingress adapter: a persistent WebSocket
// connection to the external broker's bridge endpoint, redirected from the
// teacher's server-side ws_manager.go into client mode. One JSON text frame
// is delivered per inbound RSSI message; a dropped connection reconnects
// with backoff.
package broker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/neuralsense/fusion/internal/core/ports"
)

// Config holds the broker client's connection policy.
type Config struct {
	URL            string
	ReconnectDelay time.Duration
	MaxReconnect   time.Duration
}

// Client dials the external broker over WebSocket and delivers one decoded
// message per inbound text frame to the handler, serially.
type Client struct {
	cfg  Config
	conn *websocket.Conn
}

// NewClient builds a broker client bound to cfg. Dialing happens in Run.
func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// Run dials the broker and reads frames until ctx is cancelled, reconnecting
// with exponential backoff (capped at MaxReconnect) on any read/dial error.
// Each frame's receive callback stamps rx_ts before decoding, per the
// ingest adapter's authoritative timestamp rule.
func (c *Client) Run(ctx context.Context, handler ports.MessageHandler) error {
	backoff := c.cfg.ReconnectDelay

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, nil)
		if err != nil {
			log.Printf("broker: dial %s: %v (retrying in %s)", c.cfg.URL, err, backoff)
			if !sleepOrDone(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff, c.cfg.MaxReconnect)
			continue
		}

		c.conn = conn
		backoff = c.cfg.ReconnectDelay
		log.Printf("broker: connected to %s", c.cfg.URL)

		err = c.readLoop(ctx, conn, handler)
		conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("broker: connection lost: %v (reconnecting in %s)", err, backoff)
		if !sleepOrDone(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, c.cfg.MaxReconnect)
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, handler ports.MessageHandler) error {
	for {
		_, data, err := conn.ReadMessage()
		rxTS := float64(time.Now().UnixNano()) / 1e9
		if err != nil {
			return err
		}

		var msg ports.RawMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("broker: dropping unparseable frame: %v", err)
			continue
		}

		handler(ctx, msg, rxTS)
	}
}

// Close tears down the active connection, if any.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

var _ ports.Broker = (*Client)(nil)
