package domain

import "time"

// Session is a stable identity that may span multiple observed device
// identifiers after MAC-randomization linking. Exactly one active
// session exists per currently-visible device.
type Session struct {
	ID            string
	LastSeen      time.Time
	LastNormVec   NormalizedVector
	DeviceIDs     map[string]struct{}
}

// NewSession allocates a session around its first device identifier.
func NewSession(id, deviceID string, seen time.Time, vec NormalizedVector) *Session {
	return &Session{
		ID:          id,
		LastSeen:    seen,
		LastNormVec: vec,
		DeviceIDs:   map[string]struct{}{deviceID: {}},
	}
}

// TransitionPhase names the debouncer's state-machine phase for a session.
type TransitionPhase int

const (
	PhaseInitial TransitionPhase = iota
	PhaseStable
	PhasePending
)

// TransitionState is the debouncer's per-session state:
// (confirmed_zone, enter_ts, pending_candidate?, pending_count?, pending_first_ts?).
// Invariant: PendingCount < confirm threshold; once reached, a transition
// fires and the state collapses back to Stable.
type TransitionState struct {
	Phase            TransitionPhase
	ConfirmedZone    int
	EnterTS          time.Time
	PendingCandidate int
	PendingCount     int
	PendingFirstTS   time.Time
}
