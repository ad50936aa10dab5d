package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/neuralsense/fusion/internal/core/ports"
)

// AuditHandler serves the operator action log: logins, logouts, and
// calibration start/stop events.
type AuditHandler struct {
	audit ports.AuditService
}

// NewAuditHandler builds an audit handler bound to audit.
func NewAuditHandler(audit ports.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

const defaultAuditLimit = 100

// HandleLogs returns the most recent audit log entries, newest first.
// An optional ?limit= query parameter overrides the default page size.
func (h *AuditHandler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	logs, err := h.audit.GetLogs(r.Context(), limit)
	if err != nil {
		http.Error(w, "failed to load audit logs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}
