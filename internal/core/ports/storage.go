package ports

import (
	"context"

	"github.com/neuralsense/fusion/internal/core/domain"
)

// FingerprintStore is the calibration database: append-only persistence
// of fingerprint records plus a startup load.
type FingerprintStore interface {
	SaveCalibration(ctx context.Context, rec domain.CalibrationRecord) error
	// LoadFingerprints returns one Fingerprint per zone_id, keeping only
	// the most recently created record when duplicates exist.
	LoadFingerprints(ctx context.Context) ([]domain.Fingerprint, error)
	Close() error
}

// ZoneStore provides the static zone geometry table (zone_id,x,y).
type ZoneStore interface {
	LoadZones(ctx context.Context) ([]domain.Zone, error)
}

// EventSink is an append-only output stream for one category of engine
// event. Implementations must never block the engine path; a write
// failure is logged and returned, and the engine logs it and continues
// rather than aborting.
type EventSink interface {
	WriteAssignment(a domain.ZoneAssignment) error
	WriteUncertain(u domain.Uncertain) error
	WriteTransition(t domain.Transition) error
	WriteDwell(d domain.Dwell) error
	WriteError(e domain.ErrorRecord) error
	WriteFailedUpload(f domain.FailedUpload) error
	Close() error
}
