// Package persistence implements the JSONL event sink: one append-only
// newline-delimited JSON file per output stream, grounded on
// original_source's safe_append_jsonl (write failures are logged to
// stderr and also returned; the engine logs a returned error and carries
// on with the next message).
package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/neuralsense/fusion/internal/core/ports"
)

const (
	streamRawRSSI        = "raw_rssi"
	streamZoneAssignment = "zone_assignments"
	streamUncertain      = "uncertain"
	streamTransition     = "transitions"
	streamDwell          = "dwells"
	streamRunError       = "run_errors"
	streamFailedUpload   = "failed_uploads"
)

// JSONLSink appends one JSON line per event to its stream's file.
type JSONLSink struct {
	dir   string
	mu    sync.Mutex
	files map[string]*os.File
}

// NewJSONLSink opens (creating as needed) one append-only file per stream
// under dir.
func NewJSONLSink(dir string) (*JSONLSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("persistence: create dir %s: %w", dir, err)
	}

	s := &JSONLSink{dir: dir, files: make(map[string]*os.File)}
	for _, stream := range []string{
		streamRawRSSI, streamZoneAssignment, streamUncertain,
		streamTransition, streamDwell, streamRunError, streamFailedUpload,
	} {
		f, err := os.OpenFile(filepath.Join(dir, stream+".jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("persistence: open %s: %w", stream, err)
		}
		s.files[stream] = f
	}
	return s, nil
}

func (s *JSONLSink) append(stream string, v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.files[stream]
	if _, err := f.Write(append(line, '\n')); err != nil {
		log.Printf("persistence: write %s: %v", stream, err)
		return err
	}
	return nil
}

// WriteAssignment appends a confident zone-assignment event.
func (s *JSONLSink) WriteAssignment(a domain.ZoneAssignment) error {
	return s.append(streamZoneAssignment, a)
}

// WriteUncertain appends a margin-gated uncertain event.
func (s *JSONLSink) WriteUncertain(u domain.Uncertain) error {
	return s.append(streamUncertain, u)
}

// WriteTransition appends a debounced zone transition.
func (s *JSONLSink) WriteTransition(t domain.Transition) error {
	return s.append(streamTransition, t)
}

// WriteDwell appends a completed dwell interval.
func (s *JSONLSink) WriteDwell(d domain.Dwell) error {
	return s.append(streamDwell, d)
}

// WriteError appends a structured error-stream entry.
func (s *JSONLSink) WriteError(e domain.ErrorRecord) error {
	return s.append(streamRunError, e)
}

// WriteFailedUpload appends a batch that exhausted its upload retries.
func (s *JSONLSink) WriteFailedUpload(f domain.FailedUpload) error {
	return s.append(streamFailedUpload, f)
}

// WriteRawSample appends an ingest-stage raw RSSI record. Not part of
// ports.EventSink (the engine never calls it directly); invoked by the
// ingest adapter's caller when raw-stream logging is enabled.
func (s *JSONLSink) WriteRawSample(r domain.RSSISample) error {
	return s.append(streamRawRSSI, r)
}

// Close closes every stream file.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ ports.EventSink = (*JSONLSink)(nil)
