package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/G-OrdiaD/GreenhouseSolution/internal/observability/metrics"
	"github.com/G-OrdiaD/GreenhouseSolution/internal/pipeline"
	"github.com/G-OrdiaD/GreenhouseSolution/internal/readings/application"
	readings "github.com/G-OrdiaD/GreenhouseSolution/internal/readings/domain"
)

// IngestHandler receives sensor readings from upstream reporting clients.
type IngestHandler struct {
	service *application.Service
	logger  *log.Logger
}

// NewIngestHandler constructs an ingest handler.
func NewIngestHandler(service *application.Service, logger *log.Logger) (*IngestHandler, error) {
	if service == nil {
		return nil, errors.New("ingest handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &IngestHandler{service: service, logger: logger}, nil
}

// ServeHTTP ingests one reading.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.IngestResultSuccess
	defer func() {
		metrics.ObserveIngest(result, time.Since(start))
	}()

	if r.Method != http.MethodPost {
		result = metrics.IngestResultError
		metrics.IncIngestError("method_not_allowed")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Printf("reading ingest: read body error: %v", err)
		result = metrics.IngestResultError
		metrics.IncIngestError("read_body")
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	sub, err := parseSubmission(body)
	if err != nil {
		h.logger.Printf("reading ingest: invalid payload: %v", err)
		result = metrics.IngestResultError
		metrics.IncIngestError("invalid_payload")
		respondError(w, err)
		return
	}

	ingestResult, err := h.service.Ingest(r.Context(), sub)
	if err != nil {
		h.logger.Printf("reading ingest: %v", err)
		result = metrics.IngestResultError
		if _, ok := pipeline.AsValidation(err); ok {
			metrics.IncIngestError("validation")
		} else {
			metrics.IncIngestError("storage")
		}
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ingestResult)
}

// parseSubmission decodes a flat reading payload: a timestamp, an optional
// zone tag, and any subset of the monitored parameters. Unknown keys are
// ignored; a non-numeric value for a known parameter is a validation error.
func parseSubmission(body []byte) (application.Submission, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return application.Submission{}, pipeline.NewValidationError(pipeline.KindNotNumeric, "", "invalid json")
	}

	var sub application.Submission
	if ts, ok := raw["timestamp"]; ok {
		var text string
		if err := json.Unmarshal(ts, &text); err != nil {
			return application.Submission{}, pipeline.NewValidationError(pipeline.KindMissingTimestamp, "timestamp", "timestamp must be an RFC3339 string")
		}
		parsed, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return application.Submission{}, pipeline.NewValidationError(pipeline.KindMissingTimestamp, "timestamp", "timestamp must be RFC3339")
		}
		sub.Timestamp = parsed.UTC()
	}
	if zone, ok := raw["zone"]; ok {
		var text string
		if err := json.Unmarshal(zone, &text); err == nil {
			sub.Zone = text
		}
	}

	sub.Values = make(map[string]float64)
	for _, param := range readings.Parameters {
		value, ok := raw[param]
		if !ok {
			continue
		}
		var number float64
		if err := json.Unmarshal(value, &number); err != nil {
			return application.Submission{}, pipeline.NewValidationError(pipeline.KindNotNumeric, param, "value is not numeric")
		}
		sub.Values[param] = number
	}
	return sub, nil
}

func respondError(w http.ResponseWriter, err error) {
	if verr, ok := pipeline.AsValidation(err); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": verr.Error(),
			"kind":  verr.Kind,
			"field": verr.Field,
		})
		return
	}
	if serr, ok := pipeline.AsStorage(err); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": serr.Error(),
			"kind":  "storage",
		})
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
