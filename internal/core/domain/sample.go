package domain

import "time"

// RSSISample is one observation of a device's signal strength at a sniffer.
// Immutable once created: appended to a window, expired by age, never mutated.
type RSSISample struct {
	RxTS      time.Time
	SnifferID string
	DeviceID  string
	RSSI      int
}

// Fresh reports whether s was received within maxAge of now.
func (s RSSISample) Fresh(now time.Time, maxAge time.Duration) bool {
	return !s.RxTS.Before(now.Add(-maxAge))
}
