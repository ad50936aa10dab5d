// Package uploader is the engine's downstream upload sidecar: it batches
// emitted assignments and ships them to a remote store. It is the only
// permitted source of parallelism alongside the engine; it shares no
// mutable state with the engine beyond the bounded queue it reads from.
package uploader

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/neuralsense/fusion/internal/core/ports"
	"github.com/neuralsense/fusion/internal/telemetry"
)

// Config holds the sidecar's batching and retry policy.
type Config struct {
	QueueSize  int
	BatchSize  int
	Interval   time.Duration
	MaxRetries int
}

// Uploader queues assignments and flushes them in batches on its own
// goroutine, independent of the engine's hot path.
type Uploader struct {
	client ports.UploadClient
	sink   ports.EventSink
	cfg    Config

	queue   chan domain.ZoneAssignment
	enabled bool
	mu      sync.RWMutex
}

// New builds an uploader bound to client for delivery and sink for
// recording exhausted-retry batches.
func New(cfg Config, client ports.UploadClient, sink ports.EventSink) *Uploader {
	return &Uploader{
		client:  client,
		sink:    sink,
		cfg:     cfg,
		queue:   make(chan domain.ZoneAssignment, cfg.QueueSize),
		enabled: true,
	}
}

// Enqueue queues an assignment for upload. Non-blocking: a full queue
// drops the assignment rather than stalling the engine's hot path.
func (u *Uploader) Enqueue(a domain.ZoneAssignment) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if !u.enabled {
		return
	}
	select {
	case u.queue <- a:
	default:
	}
}

// SetEnabled toggles whether new assignments are accepted.
func (u *Uploader) SetEnabled(enabled bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.enabled = enabled
}

// Start launches the batch-flush loop. It drains the queue on ctx
// cancellation with one final flush before returning.
func (u *Uploader) Start(ctx context.Context) {
	ticker := time.NewTicker(u.cfg.Interval)
	buffer := make([]domain.ZoneAssignment, 0, u.cfg.BatchSize)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
			drain:
				for {
					select {
					case a := <-u.queue:
						buffer = append(buffer, a)
					default:
						break drain
					}
				}
				u.flush(context.Background(), buffer)
				return
			case a := <-u.queue:
				buffer = append(buffer, a)
				if len(buffer) >= u.cfg.BatchSize {
					u.flush(ctx, buffer)
					buffer = buffer[:0]
				}
			case <-ticker.C:
				if len(buffer) > 0 {
					u.flush(ctx, buffer)
					buffer = buffer[:0]
				}
			}
		}
	}()
}

func (u *Uploader) flush(ctx context.Context, batch []domain.ZoneAssignment) {
	if len(batch) == 0 {
		return
	}
	payload, err := json.Marshal(batch)
	if err != nil {
		log.Printf("uploader: failed to marshal batch of %d: %v", len(batch), err)
		return
	}

	backoff := time.Second
	var lastErr error
	for attempt := 0; attempt <= u.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
			}
			backoff *= 2
		}
		if err := u.client.Upload(ctx, payload); err != nil {
			lastErr = err
			continue
		}
		telemetry.UploadResults.WithLabelValues("success").Inc()
		return
	}

	telemetry.UploadResults.WithLabelValues("failed").Inc()
	log.Printf("uploader: batch of %d exhausted %d retries: %v", len(batch), u.cfg.MaxRetries, lastErr)
	if err := u.sink.WriteFailedUpload(domain.FailedUpload{
		TS:        time.Now(),
		Payload:   payload,
		LastError: lastErr.Error(),
	}); err != nil {
		log.Printf("uploader: failed to persist failed batch: %v", err)
	}
}
