package domain

import (
	"encoding/json"
	"time"
)

// kst is the timezone the original collection laptop logged wall-clock
// timestamps in; carried into ts_kst/enter_ts_kst/exit_ts_kst so the
// JSONL streams stay directly comparable to the original run's output.
var kst = time.FixedZone("KST", 9*60*60)

func tsSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func tsKST(t time.Time) string {
	return t.In(kst).Format("2006-01-02 15:04:05.000") + " KST"
}

// ZoneAssignment is the boundary output of a confident prediction.
type ZoneAssignment struct {
	TS               time.Time
	DeviceID         string
	SessionID        string
	ZoneID           int
	X, Y             float64
	Confidence       float64
	SecondZoneID     int
	SecondConfidence float64
	Margin           float64
	Sources          []string
	Vector           LiveVector
}

// MarshalJSON emits the assignment-stream wire schema (spec.md §6):
// float-seconds ts plus ts_kst and the rx_time_laptop timebase marker,
// phone_id instead of the Go field's DeviceID.
func (a ZoneAssignment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TS               float64    `json:"ts"`
		TSKST            string     `json:"ts_kst"`
		PhoneID          string     `json:"phone_id"`
		SessionID        string     `json:"session_id"`
		ZoneID           int        `json:"zone_id"`
		X                float64    `json:"x"`
		Y                float64    `json:"y"`
		Confidence       float64    `json:"confidence"`
		SecondZoneID     int        `json:"second_zone_id"`
		SecondConfidence float64    `json:"second_confidence"`
		Margin           float64    `json:"margin"`
		Sources          []string   `json:"sources"`
		Vector           LiveVector `json:"vector"`
		Timebase         string     `json:"timebase"`
	}{
		TS:               tsSeconds(a.TS),
		TSKST:            tsKST(a.TS),
		PhoneID:          a.DeviceID,
		SessionID:        a.SessionID,
		ZoneID:           a.ZoneID,
		X:                a.X,
		Y:                a.Y,
		Confidence:       a.Confidence,
		SecondZoneID:     a.SecondZoneID,
		SecondConfidence: a.SecondConfidence,
		Margin:           a.Margin,
		Sources:          a.Sources,
		Vector:           a.Vector,
		Timebase:         "rx_time_laptop",
	})
}

// Uncertain has the same shape as a ZoneAssignment but is emitted when the
// margin gate rejects a prediction (margin < MARGIN_GATE); it never
// advances transition state.
type Uncertain ZoneAssignment

// MarshalJSON reuses ZoneAssignment's wire schema: the uncertain stream
// is schema-identical to the assignment stream, just a separate file.
func (u Uncertain) MarshalJSON() ([]byte, error) {
	return ZoneAssignment(u).MarshalJSON()
}

// Transition records a confirmed zone change for a session. FromZone is
// nil for the very first confirmation (INITIAL -> STABLE).
type Transition struct {
	TS         time.Time
	DeviceID   string
	SessionID  string
	FromZone   *int
	ToZone     int
	Confidence float64
}

// MarshalJSON emits the transition-stream wire schema (spec.md §6).
func (t Transition) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TS         float64 `json:"ts"`
		TSKST      string  `json:"ts_kst"`
		PhoneID    string  `json:"phone_id"`
		SessionID  string  `json:"session_id"`
		FromZone   *int    `json:"from_zone"`
		ToZone     int     `json:"to_zone"`
		Confidence float64 `json:"confidence"`
	}{
		TS:         tsSeconds(t.TS),
		TSKST:      tsKST(t.TS),
		PhoneID:    t.DeviceID,
		SessionID:  t.SessionID,
		FromZone:   t.FromZone,
		ToZone:     t.ToZone,
		Confidence: t.Confidence,
	})
}

// Dwell records a closed interval a session spent in one zone.
type Dwell struct {
	SessionID string
	DeviceID  string
	ZoneID    int
	EnterTS   time.Time
	ExitTS    time.Time
}

// DwellSeconds returns the closed interval's length in seconds.
func (d Dwell) DwellSeconds() float64 {
	return d.ExitTS.Sub(d.EnterTS).Seconds()
}

// MarshalJSON emits the dwell-stream wire schema (spec.md §6), including
// dwell_sec (DwellSeconds is a derived method, not a struct field) and
// the enter/exit ts_kst pair original_source's run_live.py also logs.
func (d Dwell) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		PhoneID    string  `json:"phone_id"`
		SessionID  string  `json:"session_id"`
		ZoneID     int     `json:"zone_id"`
		EnterTS    float64 `json:"enter_ts"`
		EnterTSKST string  `json:"enter_ts_kst"`
		ExitTS     float64 `json:"exit_ts"`
		ExitTSKST  string  `json:"exit_ts_kst"`
		DwellSec   float64 `json:"dwell_sec"`
	}{
		PhoneID:    d.DeviceID,
		SessionID:  d.SessionID,
		ZoneID:     d.ZoneID,
		EnterTS:    tsSeconds(d.EnterTS),
		EnterTSKST: tsKST(d.EnterTS),
		ExitTS:     tsSeconds(d.ExitTS),
		ExitTSKST:  tsKST(d.ExitTS),
		DwellSec:   d.DwellSeconds(),
	})
}

// ErrorRecord is the structured shape written to the run's error stream.
type ErrorRecord struct {
	TS    time.Time
	Where string
	Error string
	Extra map[string]any
}

// MarshalJSON emits the run_errors wire schema (spec.md §7 / SPEC_FULL §3).
func (e ErrorRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TS    float64        `json:"ts"`
		TSKST string         `json:"ts_kst"`
		Where string         `json:"where"`
		Error string         `json:"error"`
		Extra map[string]any `json:"extra,omitempty"`
	}{
		TS:    tsSeconds(e.TS),
		TSKST: tsKST(e.TS),
		Where: e.Where,
		Error: e.Error,
		Extra: e.Extra,
	})
}

// FailedUpload is a batch that exhausted its upload retries, persisted
// for offline reprocessing.
type FailedUpload struct {
	TS        time.Time
	Endpoint  string
	Payload   []byte
	LastError string
}

// MarshalJSON emits the failed_uploads wire schema; Payload is already a
// JSON-encoded batch, so it's embedded as a raw JSON value rather than a
// base64 string.
func (f FailedUpload) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TS        float64         `json:"ts"`
		TSKST     string          `json:"ts_kst"`
		Endpoint  string          `json:"endpoint"`
		Payload   json.RawMessage `json:"payload"`
		LastError string          `json:"last_error"`
	}{
		TS:        tsSeconds(f.TS),
		TSKST:     tsKST(f.TS),
		Endpoint:  f.Endpoint,
		Payload:   json.RawMessage(f.Payload),
		LastError: f.LastError,
	})
}
