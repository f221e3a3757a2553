package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jung-kurt/gofpdf"

	alerts "github.com/G-OrdiaD/GreenhouseSolution/internal/alerts/domain"
)

// ReportHandler renders the open-alert list as a PDF report.
type ReportHandler struct {
	store Store
}

// NewReportHandler constructs a report handler.
func NewReportHandler(store Store) (*ReportHandler, error) {
	if store == nil {
		return nil, errors.New("alert report: nil store")
	}
	return &ReportHandler{store: store}, nil
}

// ServeHTTP handles GET /api/v1/exports/alerts.pdf.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	list, err := h.store.ListOpen(r.Context(), 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data, err := buildAlertPDF(list)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="alerts.pdf"`)
	_, _ = w.Write(data)
}

func buildAlertPDF(list []alerts.Alert) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Open Alerts Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Open alerts: %d", len(list)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(35, 6, "Parameter", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Value", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Bound", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Reading Time", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Message", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, alert := range list {
		pdf.CellFormat(35, 6, alert.Parameter, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%v", alert.ObservedValue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%s %v", alert.BoundKind, alert.BoundValue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, alert.ReadingAt.Format(time.RFC3339), "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, alert.Message, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
