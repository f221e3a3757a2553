package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/G-OrdiaD/GreenhouseSolution/internal/pipeline"
	ranges "github.com/G-OrdiaD/GreenhouseSolution/internal/ranges/domain"
)

// Registry is the range store behind the settings boundary.
type Registry interface {
	List(ctx context.Context) (map[string]ranges.Range, error)
	Apply(ctx context.Context, entries []ranges.Range) error
}

// Handler serves the operator settings boundary: read current ranges, apply
// `{parameter}_min` / `{parameter}_max` updates.
type Handler struct {
	registry Registry
}

// NewHandler constructs a handler.
func NewHandler(registry Registry) (*Handler, error) {
	if registry == nil {
		return nil, errors.New("ranges handler: nil registry")
	}
	return &Handler{registry: registry}, nil
}

// ServeHTTP handles /api/v1/ranges.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPut, http.MethodPost:
		h.handleUpdate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.registry.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snapshot)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	form := make(map[string]string, len(raw))
	for key, value := range raw {
		var text string
		if err := json.Unmarshal(value, &text); err == nil {
			form[key] = text
			continue
		}
		var number float64
		if err := json.Unmarshal(value, &number); err == nil {
			form[key] = fmt.Sprintf("%v", number)
			continue
		}
		form[key] = string(value)
	}

	update, err := ranges.ParseSettings(form)
	if err != nil {
		respondValidation(w, err)
		return
	}
	applied := make([]string, 0, len(update.Ranges))
	if len(update.Ranges) > 0 {
		// A form carries only the bounds the operator changed; fill the rest
		// from the stored range so a min-only update keeps the max.
		snapshot, err := h.registry.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		merged := make([]ranges.Range, 0, len(update.Ranges))
		for _, entry := range update.Ranges {
			entry = entry.MergedWith(snapshot[entry.Parameter])
			if err := entry.Validate(); err != nil {
				respondValidation(w, err)
				return
			}
			merged = append(merged, entry)
			applied = append(applied, entry.Parameter)
		}
		if err := h.registry.Apply(r.Context(), merged); err != nil {
			respondValidation(w, err)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"updated":  applied,
		"warnings": update.Warnings,
	})
}

func respondValidation(w http.ResponseWriter, err error) {
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
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
