package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/neuralsense/fusion/internal/adapters/reporting"
	"github.com/neuralsense/fusion/internal/adapters/web"
	"github.com/neuralsense/fusion/internal/adapters/web/handlers"
	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/neuralsense/fusion/internal/core/ports"
	"github.com/neuralsense/fusion/internal/core/services/calibration"
	"github.com/neuralsense/fusion/internal/core/services/engine"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server is the operator control plane: login/session endpoints, a
// read-only status/sessions/zones surface, calibration start/stop, the
// calibration PDF report, metrics, and the live WebSocket feed.
type Server struct {
	Addr string

	AuthService  ports.AuthService
	AuditService ports.AuditService

	AuthHandler        *handlers.AuthHandler
	StatusHandler      *handlers.StatusHandler
	ZonesHandler       *handlers.ZonesHandler
	CalibrationHandler *handlers.CalibrationHandler
	ReportHandler      *handlers.ReportHandler
	AuditHandler       *handlers.AuditHandler
	WSManager          *web.WSManager

	srv *http.Server
}

// NewServer wires the control plane's handlers around a running engine,
// its fingerprint store, and the configured zone table.
func NewServer(
	addr string,
	authService ports.AuthService,
	auditService ports.AuditService,
	eng *engine.Engine,
	zones []domain.Zone,
	calibSession *calibration.Session,
	fingerprintStore ports.FingerprintStore,
	pdfExporter *reporting.PDFExporter,
) *Server {
	wsManager := web.NewWSManager()
	eng.SetBroadcaster(wsManager)

	return &Server{
		Addr:               addr,
		AuthService:        authService,
		AuditService:       auditService,
		AuthHandler:        handlers.NewAuthHandler(authService, auditService),
		StatusHandler:      handlers.NewStatusHandler(eng),
		ZonesHandler:       handlers.NewZonesHandler(zones),
		CalibrationHandler: handlers.NewCalibrationHandler(calibSession, zones, auditService),
		ReportHandler:      handlers.NewReportHandler(fingerprintStore, pdfExporter),
		AuditHandler:       handlers.NewAuditHandler(auditService),
		WSManager:          wsManager,
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	handler := SetupRoutes(s)
	instrumentedHandler := otelhttp.NewHandler(handler, "neuralsense-control-plane")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumentedHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("control plane shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("control plane shutdown error: %v", err)
		}
	}()

	log.Printf("control plane listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
