// Package window maintains, per device, a bounded FIFO of recent RSSI
// samples. The engine owns one Registry and touches it only from its
// single serialized callback; see the concurrency contract in the
// engine package.
package window

import (
	"time"

	"github.com/neuralsense/fusion/internal/core/domain"
)

// Registry holds one buffer per device identifier.
type Registry struct {
	windowSec time.Duration
	buffers   map[string][]domain.RSSISample
}

// NewRegistry builds a registry that prunes entries older than windowSec.
func NewRegistry(windowSec time.Duration) *Registry {
	return &Registry{windowSec: windowSec, buffers: map[string][]domain.RSSISample{}}
}

// Append inserts a sample into its device's buffer and prunes entries
// that fell outside the window, using the sample's own rx_ts as "now".
func (r *Registry) Append(s domain.RSSISample) {
	buf := append(r.buffers[s.DeviceID], s)
	cutoff := s.RxTS.Add(-r.windowSec)
	pruned := buf[:0]
	for _, entry := range buf {
		if !entry.RxTS.Before(cutoff) {
			pruned = append(pruned, entry)
		}
	}
	r.buffers[s.DeviceID] = pruned
}

// Buffer returns the live (unpruned-until-next-append) sample slice for
// a device, or nil if unknown.
func (r *Registry) Buffer(deviceID string) []domain.RSSISample {
	return r.buffers[deviceID]
}

// Remove deletes a device's buffer entirely. Invoked by the engine's GC
// sweep for every device ID the linker reports as belonging to a
// just-removed stale session, so buffers don't outlive their session
// across MAC randomization.
func (r *Registry) Remove(deviceID string) {
	delete(r.buffers, deviceID)
}

// KnownDevices returns every device identifier with a non-empty buffer,
// surfaced by the control plane's status endpoint to catch buffer growth
// independent of tracked session count.
func (r *Registry) KnownDevices() []string {
	out := make([]string, 0, len(r.buffers))
	for id := range r.buffers {
		out = append(out, id)
	}
	return out
}
