package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/neuralsense/fusion/internal/adapters/web/middleware"
	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/neuralsense/fusion/internal/core/ports"
	"github.com/neuralsense/fusion/internal/core/services/calibration"
)

// CalibrationHandler exposes the operator-triggered calibration session
// as two HTTP endpoints, grounded on the same one-zone-at-a-time flow as
// the interactive CLI.
type CalibrationHandler struct {
	session *calibration.Session
	zones   map[int]domain.Zone
	audit   ports.AuditService
}

// NewCalibrationHandler builds a calibration handler bound to session,
// resolving zone geometry from zones by ID. audit may be nil, in which
// case start/stop events are not recorded.
func NewCalibrationHandler(session *calibration.Session, zones []domain.Zone, audit ports.AuditService) *CalibrationHandler {
	byID := make(map[int]domain.Zone, len(zones))
	for _, z := range zones {
		byID[z.ID] = z
	}
	return &CalibrationHandler{session: session, zones: byID, audit: audit}
}

func (h *CalibrationHandler) logAction(r *http.Request, action domain.AuditAction, target string) {
	if h.audit == nil {
		return
	}
	username := "system"
	if user, ok := r.Context().Value(middleware.UserContextKey).(*domain.User); ok && user != nil {
		username = user.Username
	}
	h.audit.Log(r.Context(), action, target, username)
}

type startCalibrationRequest struct {
	ZoneID int `json:"zone_id"`
}

// HandleStart begins a collection run for the requested zone.
func (h *CalibrationHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req startCalibrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	zone, ok := h.zones[req.ZoneID]
	if !ok {
		http.Error(w, "unknown zone_id", http.StatusBadRequest)
		return
	}

	if err := h.session.Start(zone.ID, zone.X, zone.Y, time.Now()); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	h.logAction(r, domain.ActionCalibrationStart, fmt.Sprintf("zone_id=%d", zone.ID))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"status": "started", "zone_id": zone.ID})
}

// HandleStop finalizes the active collection run, persisting whatever
// vectors were collected.
func (h *CalibrationHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	rec, err := h.session.Stop(r.Context(), time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	h.logAction(r, domain.ActionCalibrationStop, fmt.Sprintf("zone_id=%d", rec.ZoneID))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":            "stopped",
		"zone_id":           rec.ZoneID,
		"vectors_collected": rec.VectorsCollected,
	})
}
