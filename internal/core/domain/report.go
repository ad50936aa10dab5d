package domain

import "time"

// CalibrationSummary aggregates one zone's fingerprint stats for the
// calibration PDF report.
type CalibrationSummary struct {
	GeneratedAt time.Time
	GeneratedBy string
	Zones       []ZoneSummary
}

// ZoneSummary is one zone's row in the calibration report.
type ZoneSummary struct {
	ZoneID        int
	X, Y          float64
	VectorCount   int
	SnifferWeight map[string]float64
	SnifferStdDev map[string]float64
}
