package server

import (
	"net/http"
	"time"

	"github.com/neuralsense/fusion/internal/adapters/web/middleware"
	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes wires every control-plane endpoint onto a fresh mux. No
// route here takes a path parameter, so the standard library's mux is
// sufficient without reaching for a router package.
func SetupRoutes(s *Server) http.Handler {
	mux := http.NewServeMux()

	loginLimiter := middleware.NewRateLimiter(5, 1*time.Minute)

	// Public API (rate limited)
	mux.Handle("/api/login", middleware.RateLimitMiddleware(loginLimiter)(http.HandlerFunc(s.AuthHandler.HandleLogin)))
	mux.HandleFunc("/api/logout", s.AuthHandler.HandleLogout)

	auth := middleware.AuthMiddleware(s.AuthService)
	protect := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	requireOperator := middleware.RoleMiddleware(domain.RoleOperator)
	protectOp := func(h http.HandlerFunc) http.Handler {
		return auth(requireOperator(h))
	}

	mux.Handle("/api/me", protect(s.AuthHandler.HandleMe))
	mux.Handle("/api/status", protect(s.StatusHandler.HandleStatus))
	mux.Handle("/api/sessions", protect(s.StatusHandler.HandleSessions))
	mux.Handle("/api/zones", protect(s.ZonesHandler.HandleZones))

	mux.Handle("/api/calibration/start", protectOp(s.CalibrationHandler.HandleStart))
	mux.Handle("/api/calibration/stop", protectOp(s.CalibrationHandler.HandleStop))

	mux.Handle("/api/reports/calibration.pdf", protectOp(s.ReportHandler.HandleReport))
	mux.Handle("/api/audit-logs", protectOp(s.AuditHandler.HandleLogs))

	// WebSocket live feed (protected)
	mux.Handle("/ws", protect(s.WSManager.HandleWebSocket))

	// Metrics (protected - requires authentication)
	mux.Handle("/metrics", protect(func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	}))

	return mux
}
