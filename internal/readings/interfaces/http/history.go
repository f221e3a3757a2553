package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	readings "github.com/G-OrdiaD/GreenhouseSolution/internal/readings/domain"
)

const dateLayout = "2006-01-02"

// HistoryReader answers daily-average queries.
type HistoryReader interface {
	DailyAverages(ctx context.Context, start, end time.Time) ([]readings.DailyAverage, error)
}

// HistoryHandler serves per-day parameter averages over a date window.
type HistoryHandler struct {
	query HistoryReader
}

// NewHistoryHandler constructs a history handler.
func NewHistoryHandler(query HistoryReader) (*HistoryHandler, error) {
	if query == nil {
		return nil, errors.New("history handler: nil query")
	}
	return &HistoryHandler{query: query}, nil
}

// ServeHTTP handles GET /api/v1/history.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start, end, err := parseWindow(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := h.query.DailyAverages(r.Context(), start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

// HistoryExportHandler renders the same window as an XLSX workbook.
type HistoryExportHandler struct {
	query HistoryReader
}

// NewHistoryExportHandler constructs an export handler.
func NewHistoryExportHandler(query HistoryReader) (*HistoryExportHandler, error) {
	if query == nil {
		return nil, errors.New("history export: nil query")
	}
	return &HistoryExportHandler{query: query}, nil
}

// ServeHTTP handles GET /api/v1/exports/history.xlsx.
func (h *HistoryExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start, end, err := parseWindow(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := h.query.DailyAverages(r.Context(), start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data, err := buildHistoryXLSX(rows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="history.xlsx"`)
	_, _ = w.Write(data)
}

func buildHistoryXLSX(rows []readings.DailyAverage) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "daily averages"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "Date")
	for i, param := range readings.Parameters {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		_ = f.SetCellValue(sheet, cell, param)
	}
	for rowIdx, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		_ = f.SetCellValue(sheet, cell, row.Date.Format(dateLayout))
		for colIdx, param := range readings.Parameters {
			average, ok := row.Averages[param]
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(colIdx+2, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, average)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	startRaw := r.URL.Query().Get("start")
	endRaw := r.URL.Query().Get("end")
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -7)
	end := now
	if startRaw != "" {
		parsed, err := parseDateOrTime(startRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %w", err)
		}
		start = parsed
	}
	if endRaw != "" {
		parsed, err := parseDateOrTime(endRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %w", err)
		}
		// A bare date means the whole day, inclusive.
		if len(endRaw) == len(dateLayout) {
			parsed = parsed.Add(24*time.Hour - time.Nanosecond)
		}
		end = parsed
	}
	return start, end, nil
}

func parseDateOrTime(value string) (time.Time, error) {
	if parsed, err := time.Parse(dateLayout, value); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}
