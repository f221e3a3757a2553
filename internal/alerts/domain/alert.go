package alerts

import (
	"errors"
	"time"
)

// Alert lifecycle statuses. Alerts are never deleted; Resolved is reached
// only through an explicit operator action.
const (
	StatusOpen     = "Open"
	StatusResolved = "Resolved"
)

// Violated bound kinds.
const (
	BoundMin = "min"
	BoundMax = "max"
)

// ErrNotFound indicates a missing alert record.
var ErrNotFound = errors.New("alert: not found")

// Alert is a persisted record of one threshold violation.
type Alert struct {
	ID            string    `json:"id"`
	Parameter     string    `json:"parameter"`
	ObservedValue float64   `json:"observed_value"`
	BoundKind     string    `json:"bound_kind"`
	BoundValue    float64   `json:"bound_value"`
	Message       string    `json:"message"`
	ReadingAt     time.Time `json:"reading_at"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	ResolvedAt    time.Time `json:"resolved_at,omitempty"`
	ResolvedBy    string    `json:"resolved_by,omitempty"`
	ReadingID     string    `json:"reading_id,omitempty"`
	ReadingZone   string    `json:"reading_zone,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}
