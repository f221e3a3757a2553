package application

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	alerts "github.com/G-OrdiaD/GreenhouseSolution/internal/alerts/domain"
	"github.com/G-OrdiaD/GreenhouseSolution/internal/alerts/evaluator"
	alertrepo "github.com/G-OrdiaD/GreenhouseSolution/internal/alerts/infrastructure/postgres"
	"github.com/G-OrdiaD/GreenhouseSolution/internal/observability/metrics"
	"github.com/G-OrdiaD/GreenhouseSolution/internal/pipeline"
	ranges "github.com/G-OrdiaD/GreenhouseSolution/internal/ranges/domain"
	readings "github.com/G-OrdiaD/GreenhouseSolution/internal/readings/domain"
	readingrepo "github.com/G-OrdiaD/GreenhouseSolution/internal/readings/infrastructure/postgres"
)

// RangeReader provides the current range snapshot for evaluation.
type RangeReader interface {
	List(ctx context.Context) (map[string]ranges.Range, error)
}

// AlertNotifier delivers notifications for newly created alerts. It is
// invoked only after the ingestion transaction commits.
type AlertNotifier interface {
	Notify(ctx context.Context, alert alerts.Alert)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Submission is one ingestion call: a timestamp plus whichever monitored
// parameters the sensor reported. Unknown keys were already dropped at the
// boundary.
type Submission struct {
	Timestamp time.Time
	Zone      string
	Values    map[string]float64
}

// IngestResult reports what one accepted submission produced.
type IngestResult struct {
	Reading    readings.Reading `json:"reading"`
	Recognized []string         `json:"recognized"`
	Alerts     []alerts.Alert   `json:"alerts"`
}

// Service is the ingestion gateway: it owns the transaction spanning the
// reading write and all alert writes, and triggers notification dispatch
// after commit.
type Service struct {
	db       *sql.DB
	readings *readingrepo.ReadingRepository
	alerts   *alertrepo.AlertRepository
	ranges   RangeReader
	notifier AlertNotifier
	clock    Clock
	logger   *log.Logger
}

// ServiceOption customizes the ingest service.
type ServiceOption func(*Service)

// WithNotifier assigns a notifier.
func WithNotifier(notifier AlertNotifier) ServiceOption {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService constructs an ingest service.
func NewService(db *sql.DB, readingRepo *readingrepo.ReadingRepository, alertRepo *alertrepo.AlertRepository, rangeReader RangeReader, logger *log.Logger, opts ...ServiceOption) (*Service, error) {
	if db == nil {
		return nil, errors.New("ingest: nil db")
	}
	if readingRepo == nil || alertRepo == nil {
		return nil, errors.New("ingest: nil repository")
	}
	if rangeReader == nil {
		return nil, errors.New("ingest: nil range reader")
	}
	if logger == nil {
		logger = log.Default()
	}
	service := &Service{
		db:       db,
		readings: readingRepo,
		alerts:   alertRepo,
		ranges:   rangeReader,
		logger:   logger,
		clock:    systemClock{},
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Ingest validates a submission, persists the reading together with any
// threshold-violation alerts in one transaction, and triggers notification
// dispatch once the transaction has committed. A storage failure rolls the
// whole unit back: a reading is never recorded without its alerts.
func (s *Service) Ingest(ctx context.Context, sub Submission) (*IngestResult, error) {
	if s == nil {
		return nil, errors.New("ingest: nil service")
	}
	if sub.Timestamp.IsZero() {
		return nil, pipeline.NewValidationError(pipeline.KindMissingTimestamp, "timestamp", "timestamp is required")
	}

	values := make(map[string]float64, len(sub.Values))
	for key, value := range sub.Values {
		if readings.KnownParameter(key) {
			values[key] = value
		}
	}

	reading := readings.Reading{
		ID:        uuid.NewString(),
		Timestamp: sub.Timestamp.UTC(),
		Zone:      sub.Zone,
		Values:    values,
		CreatedAt: s.clock.Now().UTC(),
	}

	snapshot, err := s.ranges.List(ctx)
	if err != nil {
		return nil, pipeline.NewStorageError("load ranges", err)
	}
	violations := evaluator.Evaluate(reading, snapshot)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, pipeline.NewStorageError("begin transaction", err)
	}
	if err := s.readings.Insert(ctx, tx, &reading); err != nil {
		_ = tx.Rollback()
		return nil, pipeline.NewStorageError("insert reading", err)
	}

	created := make([]alerts.Alert, 0, len(violations))
	for _, violation := range violations {
		alert := alerts.Alert{
			ID:            uuid.NewString(),
			Parameter:     violation.Parameter,
			ObservedValue: violation.ObservedValue,
			BoundKind:     violation.BoundKind,
			BoundValue:    violation.BoundValue,
			Message:       violation.Message,
			ReadingAt:     violation.ReadingAt,
			ReadingID:     reading.ID,
			ReadingZone:   reading.Zone,
			Status:        alerts.StatusOpen,
			CreatedAt:     s.clock.Now().UTC(),
			UpdatedAt:     s.clock.Now().UTC(),
		}
		if err := s.alerts.Create(ctx, tx, &alert); err != nil {
			_ = tx.Rollback()
			return nil, pipeline.NewStorageError("insert alert", err)
		}
		created = append(created, alert)
	}
	if err := tx.Commit(); err != nil {
		return nil, pipeline.NewStorageError("commit", err)
	}

	for _, alert := range created {
		metrics.IncAlertEvent("created")
		s.dispatchAsync(alert)
	}

	return &IngestResult{
		Reading:    reading,
		Recognized: reading.RecognizedParameters(),
		Alerts:     created,
	}, nil
}

// dispatchAsync hands an alert to the notifier on its own goroutine with a
// fresh context, so a slow or failing gateway cannot reach back into the
// ingestion path.
func (s *Service) dispatchAsync(alert alerts.Alert) {
	if s.notifier == nil {
		return
	}
	go s.notifier.Notify(context.Background(), alert)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
