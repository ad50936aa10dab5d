package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/neuralsense/fusion/internal/core/services/engine"
)

// sessionLister is the minimal surface StatusHandler needs from the
// engine, declared as an interface so tests can substitute a fake.
type sessionLister interface {
	Sessions() []engine.SessionStatus
	TrackedDevices() []string
}

// StatusHandler reports the running engine's liveness and a snapshot of
// its tracked sessions.
type StatusHandler struct {
	engine sessionLister
}

// NewStatusHandler builds a status handler bound to the running engine.
func NewStatusHandler(eng sessionLister) *StatusHandler {
	return &StatusHandler{engine: eng}
}

// HandleStatus reports overall liveness plus a session count.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	sessions := h.engine.Sessions()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":          "ok",
		"active_sessions": len(sessions),
		"tracked_devices": len(h.engine.TrackedDevices()),
	})
}

// HandleSessions returns the full session snapshot.
func (h *StatusHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.engine.Sessions()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

// ZonesHandler serves the static zone geometry table.
type ZonesHandler struct {
	zones []domain.Zone
}

// NewZonesHandler builds a zones handler around a fixed, read-only list
// loaded at startup.
func NewZonesHandler(zones []domain.Zone) *ZonesHandler {
	return &ZonesHandler{zones: zones}
}

// HandleZones returns the configured zones.
func (h *ZonesHandler) HandleZones(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.zones)
}
