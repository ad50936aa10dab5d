package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/neuralsense/fusion/internal/adapters/reporting"
	"github.com/neuralsense/fusion/internal/adapters/web/middleware"
	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/neuralsense/fusion/internal/core/ports"
)

// ReportHandler renders the current fingerprint database as a
// calibration summary PDF.
type ReportHandler struct {
	store    ports.FingerprintStore
	exporter *reporting.PDFExporter
}

// NewReportHandler builds a report handler reading fingerprints from
// store and rendering them with exporter.
func NewReportHandler(store ports.FingerprintStore, exporter *reporting.PDFExporter) *ReportHandler {
	return &ReportHandler{store: store, exporter: exporter}
}

// HandleReport loads every calibrated zone and streams back a PDF.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	fingerprints, err := h.store.LoadFingerprints(r.Context())
	if err != nil {
		http.Error(w, "failed to load fingerprints", http.StatusInternalServerError)
		return
	}

	summary := buildSummary(r.Context(), fingerprints)
	data, err := h.exporter.ExportCalibrationSummary(summary)
	if err != nil {
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=calibration.pdf")
	w.Write(data)
}

func buildSummary(ctx context.Context, fingerprints []domain.Fingerprint) *domain.CalibrationSummary {
	generatedBy := "system"
	if user, ok := ctx.Value(middleware.UserContextKey).(*domain.User); ok && user != nil {
		generatedBy = user.Username
	}

	zones := make([]domain.ZoneSummary, 0, len(fingerprints))
	for _, f := range fingerprints {
		weights := domain.ComputeWeights(f)
		stddev := domain.ComputeStdDev(f)
		zones = append(zones, domain.ZoneSummary{
			ZoneID:        f.ZoneID,
			X:             f.X,
			Y:             f.Y,
			VectorCount:   len(f.Vectors),
			SnifferWeight: weights,
			SnifferStdDev: stddev,
		})
	}

	return &domain.CalibrationSummary{
		GeneratedAt: time.Now(),
		GeneratedBy: generatedBy,
		Zones:       zones,
	}
}
