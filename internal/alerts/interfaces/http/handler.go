package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	alerts "github.com/G-OrdiaD/GreenhouseSolution/internal/alerts/domain"
	"github.com/G-OrdiaD/GreenhouseSolution/internal/auth"
	"github.com/G-OrdiaD/GreenhouseSolution/internal/observability/metrics"
)

const defaultListLimit = 100

// Store is the alert store behind the HTTP boundary.
type Store interface {
	ListOpen(ctx context.Context, limit int) ([]alerts.Alert, error)
	Resolve(ctx context.Context, id, resolvedBy string, resolvedAt time.Time) error
}

// Handler provides alert HTTP endpoints.
type Handler struct {
	store Store
}

// NewHandler constructs a handler.
func NewHandler(store Store) (*Handler, error) {
	if store == nil {
		return nil, errors.New("alerts handler: nil store")
	}
	return &Handler{store: store}, nil
}

// ServeHTTP handles /api/v1/alerts and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/alerts":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleList(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/alerts/"):
		h.handleAction(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	list, err := h.store.ListOpen(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []alerts.Alert{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/alerts/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != "resolve" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := parts[0]
	resolvedBy := auth.SubjectFromContext(r.Context())
	if err := h.store.Resolve(r.Context(), id, resolvedBy, time.Now().UTC()); err != nil {
		if errors.Is(err, alerts.ErrNotFound) {
			http.Error(w, "alert not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.IncAlertEvent("resolved")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id, "status": alerts.StatusResolved})
}
