package reporting

import (
	"bytes"
	"testing"
	"time"

	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func sampleSummary() *domain.CalibrationSummary {
	return &domain.CalibrationSummary{
		GeneratedAt: time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC),
		GeneratedBy: "operator1",
		Zones: []domain.ZoneSummary{
			{
				ZoneID:        1,
				X:             0.5,
				Y:             1.2,
				VectorCount:   42,
				SnifferWeight: map[string]float64{"s1": 1.0, "s2": 0.8},
				SnifferStdDev: map[string]float64{"s1": 2.1, "s2": 3.4},
			},
			{
				ZoneID:        2,
				X:             3.0,
				Y:             1.2,
				VectorCount:   17,
				SnifferWeight: map[string]float64{"s1": 0.6},
				SnifferStdDev: map[string]float64{"s1": 4.0},
			},
		},
	}
}

func TestExportCalibrationSummary_ProducesValidPDF(t *testing.T) {
	e := NewPDFExporter()
	data, err := e.ExportCalibrationSummary(sampleSummary())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	require.Greater(t, len(data), 500)
}

func TestExportCalibrationSummary_EmptyZonesStillProducesPDF(t *testing.T) {
	e := NewPDFExporter()
	summary := &domain.CalibrationSummary{
		GeneratedAt: time.Now(),
		GeneratedBy: "operator1",
		Zones:       nil,
	}
	data, err := e.ExportCalibrationSummary(summary)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestExportCalibrationSummary_ManyZonesSpansMultiplePages(t *testing.T) {
	e := NewPDFExporter()
	zones := make([]domain.ZoneSummary, 0, 20)
	for i := 0; i < 20; i++ {
		zones = append(zones, domain.ZoneSummary{
			ZoneID:        i,
			X:             float64(i),
			Y:             float64(i),
			VectorCount:   i * 3,
			SnifferWeight: map[string]float64{"s1": 1.0},
			SnifferStdDev: map[string]float64{"s1": 1.5},
		})
	}
	summary := &domain.CalibrationSummary{GeneratedAt: time.Now(), GeneratedBy: "operator1", Zones: zones}
	data, err := e.ExportCalibrationSummary(summary)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
