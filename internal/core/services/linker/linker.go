// Package linker maps raw device identifiers to stable session IDs,
// re-identifying a device across MAC randomization using rank-order
// similarity against recently-stale sessions.
package linker

import (
	"fmt"
	"sort"
	"time"

	"github.com/neuralsense/fusion/internal/core/domain"
)

// Config holds the linker's tunable thresholds.
type Config struct {
	StaleDeviceAge      time.Duration
	SessionRankThreshold float64
	SessionMaxAge        time.Duration
	CleanupInterval      int
}

// Linker owns the session registry and the device-to-session index.
type Linker struct {
	cfg        Config
	sessions   map[string]*domain.Session
	deviceToID map[string]string
	counter    int
	sinceGC    int
}

// NewLinker builds an empty linker.
func NewLinker(cfg Config) *Linker {
	return &Linker{
		cfg:        cfg,
		sessions:   map[string]*domain.Session{},
		deviceToID: map[string]string{},
	}
}

// LinkResult reports the session a device resolved to and whether it was
// newly linked to a previously-stale session (for audit logging).
type LinkResult struct {
	SessionID string
	Linked    bool
}

// Resolve maps deviceID to a session, refreshing its last-seen/last-vector
// on a known device (case 1), or attempting rank-order re-identification
// against stale sessions before allocating a fresh session (case 2).
func (l *Linker) Resolve(deviceID string, now time.Time, normVec domain.NormalizedVector) LinkResult {
	if sessionID, ok := l.deviceToID[deviceID]; ok {
		s := l.sessions[sessionID]
		s.LastSeen = now
		s.LastNormVec = normVec
		return LinkResult{SessionID: sessionID}
	}

	liveRanks := domain.Ranks(normVec)
	bestID := ""
	bestRD := 0.0
	staleCutoff := now.Add(-l.cfg.StaleDeviceAge)
	ids := make([]string, 0, len(l.sessions))
	for id := range l.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s := l.sessions[id]
		if s.LastSeen.After(staleCutoff) {
			continue // not stale yet, not eligible for re-linking
		}
		rd := domain.RankDistance(liveRanks, domain.Ranks(s.LastNormVec))
		if bestID == "" || rd < bestRD {
			bestID, bestRD = id, rd
		}
	}

	if bestID != "" && bestRD <= l.cfg.SessionRankThreshold {
		s := l.sessions[bestID]
		s.DeviceIDs[deviceID] = struct{}{}
		s.LastSeen = now
		s.LastNormVec = normVec
		l.deviceToID[deviceID] = bestID
		return LinkResult{SessionID: bestID, Linked: true}
	}

	l.counter++
	newID := fmt.Sprintf("S%04d", l.counter)
	l.sessions[newID] = domain.NewSession(newID, deviceID, now, normVec)
	l.deviceToID[deviceID] = newID
	return LinkResult{SessionID: newID}
}

// CleanupResult reports what a GC sweep removed, so the caller can also
// drop the window buffers and transition state tied to it.
type CleanupResult struct {
	SessionIDs []string
	DeviceIDs  []string
}

// MaybeCleanup increments the assignment counter and, every
// SESSION_CLEANUP_INTERVAL assignments, removes sessions whose last-seen
// exceeds SESSION_MAX_AGE_SEC, along with every device ID that had
// resolved to them. Returns nil if no sweep ran this call.
func (l *Linker) MaybeCleanup(now time.Time) *CleanupResult {
	l.sinceGC++
	if l.sinceGC < l.cfg.CleanupInterval {
		return nil
	}
	l.sinceGC = 0

	cutoff := now.Add(-l.cfg.SessionMaxAge)
	var result CleanupResult
	for id, s := range l.sessions {
		if s.LastSeen.Before(cutoff) {
			result.SessionIDs = append(result.SessionIDs, id)
			for dev := range s.DeviceIDs {
				result.DeviceIDs = append(result.DeviceIDs, dev)
			}
			delete(l.sessions, id)
			for dev, sid := range l.deviceToID {
				if sid == id {
					delete(l.deviceToID, dev)
				}
			}
		}
	}
	return &result
}

// Session returns the session state for a session ID, if present.
func (l *Linker) Session(id string) (*domain.Session, bool) {
	s, ok := l.sessions[id]
	return s, ok
}

// Sessions returns every currently tracked session, sorted by ID for
// deterministic status output.
func (l *Linker) Sessions() []*domain.Session {
	ids := make([]string, 0, len(l.sessions))
	for id := range l.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.sessions[id])
	}
	return out
}
