package calibration

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/neuralsense/fusion/internal/core/ports"
)

// ErrAlreadyRunning is returned by Start when a collection is already
// in progress for another zone.
var ErrAlreadyRunning = errors.New("calibration: session already running")

// ErrNotRunning is returned by Stop when no collection is in progress.
var ErrNotRunning = errors.New("calibration: no session running")

// Session wraps one zone's Collector lifecycle for the control plane's
// start/stop endpoints, matching original_source's calibrate_interactive
// one-zone-at-a-time flow but driven by HTTP instead of a terminal loop.
type Session struct {
	cfg   Config
	store ports.FingerprintStore

	mu        sync.Mutex
	collector *Collector
}

// NewSession builds a calibration session persisting completed runs
// through store.
func NewSession(cfg Config, store ports.FingerprintStore) *Session {
	return &Session{cfg: cfg, store: store}
}

// Start begins collecting samples for zoneID at geometry (x,y).
func (s *Session) Start(zoneID int, x, y float64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collector != nil {
		return ErrAlreadyRunning
	}
	s.collector = NewCollector(s.cfg, domain.NewCalibrationJob(zoneID, x, y, now))
	return nil
}

// Active reports whether a collection is currently in progress.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collector != nil
}

// Observe feeds one raw sniffer reading to the active collector, if any,
// and auto-finalizes the run once the collector reports Done.
func (s *Session) Observe(ctx context.Context, sniffer string, rssi int, rxTS time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collector == nil {
		return
	}
	s.collector.Observe(sniffer, rssi, rxTS)
	if s.collector.Done(rxTS) {
		s.finalizeLocked(ctx, rxTS)
	}
}

// Stop finalizes the active collection on demand, persisting whatever
// vectors were collected so far.
func (s *Session) Stop(ctx context.Context, now time.Time) (domain.CalibrationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collector == nil {
		return domain.CalibrationRecord{}, ErrNotRunning
	}
	return s.finalizeLocked(ctx, now)
}

func (s *Session) finalizeLocked(ctx context.Context, now time.Time) (domain.CalibrationRecord, error) {
	rec := s.collector.Record(float64(now.Unix()))
	s.collector = nil
	if err := s.store.SaveCalibration(ctx, rec); err != nil {
		return rec, err
	}
	return rec, nil
}
