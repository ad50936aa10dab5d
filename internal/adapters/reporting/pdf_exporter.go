package reporting

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/jung-kurt/gofpdf"
	"github.com/neuralsense/fusion/internal/core/domain"
)

// PDFExporter exports calibration summaries to PDF format.
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportCalibrationSummary renders one section per zone (vector count,
// per-sniffer weight table, std-dev). Sections follow one another on the
// same page; a new page starts only when the current one is nearly full.
func (e *PDFExporter) ExportCalibrationSummary(report *domain.CalibrationSummary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, report)

	if len(report.Zones) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No calibrated zones", "", 1, "L", false, 0, "")
	}

	for i, zone := range report.Zones {
		if i > 0 && pdf.GetY() > 230 {
			pdf.AddPage()
		}
		e.addZoneSection(pdf, zone)
	}

	e.addFooter(pdf, report)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report *domain.CalibrationSummary) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 15, "Calibration Summary", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	if report.GeneratedBy != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Generated by: %s", report.GeneratedBy), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addZoneSection(pdf *gofpdf.Fpdf, zone domain.ZoneSummary) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, fmt.Sprintf("Zone %d  (%.1f, %.1f)", zone.ZoneID, zone.X, zone.Y), "", 1, "L", false, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 6, fmt.Sprintf("Vectors collected: %d", zone.VectorCount), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	sniffers := make([]string, 0, len(zone.SnifferWeight))
	for s := range zone.SnifferWeight {
		sniffers = append(sniffers, s)
	}
	sort.Strings(sniffers)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 8, "Sniffer", "1", 0, "L", true, 0, "")
	pdf.CellFormat(55, 8, "Weight", "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 8, "Std Dev (dBm)", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, s := range sniffers {
		pdf.CellFormat(60, 7, s, "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 7, fmt.Sprintf("%.2f", zone.SnifferWeight[s]), "1", 0, "C", false, 0, "")
		pdf.CellFormat(55, 7, fmt.Sprintf("%.2f", zone.SnifferStdDev[s]), "1", 1, "C", false, 0, "")
	}

	pdf.Ln(8)
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, report *domain.CalibrationSummary) {
	pdf.SetY(-20)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated by %s", report.GeneratedBy), "", 1, "C", false, 0, "")
}
