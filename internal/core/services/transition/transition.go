// Package transition implements the per-session debounce state machine:
// a zone change is only confirmed after N consecutive confident
// predictions of the new zone. Uncertain ticks never drive the machine.
package transition

import (
	"time"

	"github.com/neuralsense/fusion/internal/core/domain"
)

// Debouncer holds one TransitionState per session.
type Debouncer struct {
	confirmCount int
	states       map[string]*domain.TransitionState
}

// NewDebouncer requires confirmCount consecutive confident predictions of
// a candidate zone before firing a transition.
func NewDebouncer(confirmCount int) *Debouncer {
	return &Debouncer{confirmCount: confirmCount, states: map[string]*domain.TransitionState{}}
}

// Outcome reports what, if anything, the debouncer fired for this tick.
type Outcome struct {
	Transition *domain.Transition
	Dwell      *domain.Dwell
}

// Advance feeds one confident prediction zone for sessionID at ts through
// the state machine described in the component design's transition
// table. The PENDING-cleared-unconditionally behavior on a revisit to the
// stable zone is preserved deliberately: a revisit to the stable zone is
// itself evidence against the pending transition, even one tick away
// from confirming, so it resets the counter rather than ignoring it.
func (d *Debouncer) Advance(sessionID, deviceID string, zone int, confidence float64, ts time.Time) Outcome {
	st, ok := d.states[sessionID]
	if !ok {
		st = &domain.TransitionState{Phase: domain.PhaseInitial}
		d.states[sessionID] = st
	}

	switch st.Phase {
	case domain.PhaseInitial:
		*st = domain.TransitionState{Phase: domain.PhaseStable, ConfirmedZone: zone, EnterTS: ts}
		return Outcome{Transition: &domain.Transition{
			TS: ts, DeviceID: deviceID, SessionID: sessionID,
			FromZone: nil, ToZone: zone, Confidence: confidence,
		}}

	case domain.PhaseStable:
		if zone == st.ConfirmedZone {
			return Outcome{}
		}
		*st = domain.TransitionState{
			Phase: domain.PhasePending, ConfirmedZone: st.ConfirmedZone,
			PendingCandidate: zone, PendingCount: 1, PendingFirstTS: ts,
			EnterTS: st.EnterTS,
		}
		return Outcome{}

	case domain.PhasePending:
		switch {
		case zone == st.ConfirmedZone:
			// Spike resolved: clear pending unconditionally, even if the
			// candidate was one confirmation away from firing.
			stableZone, enterTS := st.ConfirmedZone, st.EnterTS
			*st = domain.TransitionState{Phase: domain.PhaseStable, ConfirmedZone: stableZone, EnterTS: enterTS}
			return Outcome{}

		case zone == st.PendingCandidate:
			if st.PendingCount+1 < d.confirmCount {
				st.PendingCount++
				return Outcome{}
			}
			fromZone := st.ConfirmedZone
			dwell := &domain.Dwell{
				SessionID: sessionID, DeviceID: deviceID, ZoneID: fromZone,
				EnterTS: st.EnterTS, ExitTS: st.PendingFirstTS,
			}
			candidate, firstTS := st.PendingCandidate, st.PendingFirstTS
			*st = domain.TransitionState{Phase: domain.PhaseStable, ConfirmedZone: candidate, EnterTS: firstTS}
			return Outcome{
				Transition: &domain.Transition{
					TS: firstTS, DeviceID: deviceID, SessionID: sessionID,
					FromZone: &fromZone, ToZone: candidate, Confidence: confidence,
				},
				Dwell: dwell,
			}

		default:
			*st = domain.TransitionState{
				Phase: domain.PhasePending, ConfirmedZone: st.ConfirmedZone,
				PendingCandidate: zone, PendingCount: 1, PendingFirstTS: ts,
				EnterTS: st.EnterTS,
			}
			return Outcome{}
		}
	}

	return Outcome{}
}

// State returns the current transition state for a session, if any.
func (d *Debouncer) State(sessionID string) (domain.TransitionState, bool) {
	st, ok := d.states[sessionID]
	if !ok {
		return domain.TransitionState{}, false
	}
	return *st, true
}

// Remove deletes a session's transition state, invoked by session cleanup.
func (d *Debouncer) Remove(sessionID string) {
	delete(d.states, sessionID)
}
