package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	readings "github.com/G-OrdiaD/GreenhouseSolution/internal/readings/domain"
)

const defaultReadingsTable = "sensor_readings"

// Execer is the subset of database/sql needed for writes. Both *sql.DB and
// *sql.Tx satisfy it, so the ingest service can run reading and alert writes
// inside one transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ReadingRepository is a Postgres repository for the append-only reading log.
type ReadingRepository struct {
	db    *sql.DB
	table string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*ReadingRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(repo *ReadingRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewReadingRepository constructs a repository with the default table name.
func NewReadingRepository(db *sql.DB, opts ...RepositoryOption) *ReadingRepository {
	repo := &ReadingRepository{db: db, table: defaultReadingsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Insert appends one reading. Readings are immutable; there is no update
// path. exec may be a transaction owned by the caller.
func (r *ReadingRepository) Insert(ctx context.Context, exec Execer, reading *readings.Reading) error {
	if r == nil {
		return errors.New("reading repo: nil repository")
	}
	if exec == nil {
		exec = r.db
	}
	if exec == nil || r.db == nil {
		return errors.New("reading repo: nil db")
	}
	if reading == nil {
		return errors.New("reading repo: nil reading")
	}
	if reading.ID == "" || reading.Timestamp.IsZero() {
		return errors.New("reading repo: missing id or timestamp")
	}
	if reading.CreatedAt.IsZero() {
		reading.CreatedAt = time.Now().UTC()
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id, ts, zone, temperature, humidity, light_intensity, pressure,
	air_quality, ph, moisture, created_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7,
	$8, $9, $10, $11
)`, r.table)
	_, err := exec.ExecContext(ctx, query,
		reading.ID,
		reading.Timestamp.UTC(),
		nullableString(reading.Zone),
		nullableValue(reading, readings.ParamTemperature),
		nullableValue(reading, readings.ParamHumidity),
		nullableValue(reading, readings.ParamLightIntensity),
		nullableValue(reading, readings.ParamPressure),
		nullableValue(reading, readings.ParamAirQuality),
		nullableValue(reading, readings.ParamPH),
		nullableValue(reading, readings.ParamMoisture),
		reading.CreatedAt,
	)
	return err
}

// GetByID fetches one reading, mainly for tests and reconciliation checks.
func (r *ReadingRepository) GetByID(ctx context.Context, id string) (*readings.Reading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	if id == "" {
		return nil, errors.New("reading repo: empty id")
	}
	query := fmt.Sprintf(`
SELECT id, ts, zone, temperature, humidity, light_intensity, pressure,
	air_quality, ph, moisture, created_at
FROM %s
WHERE id = $1`, r.table)
	row := r.db.QueryRowContext(ctx, query, id)

	var reading readings.Reading
	var zone sql.NullString
	values := make([]sql.NullFloat64, len(readings.Parameters))
	dest := []any{&reading.ID, &reading.Timestamp, &zone}
	for i := range values {
		dest = append(dest, &values[i])
	}
	dest = append(dest, &reading.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if zone.Valid {
		reading.Zone = zone.String
	}
	reading.Values = make(map[string]float64)
	for i, param := range readings.Parameters {
		if values[i].Valid {
			reading.Values[param] = values[i].Float64
		}
	}
	reading.Timestamp = reading.Timestamp.UTC()
	reading.CreatedAt = reading.CreatedAt.UTC()
	return &reading, nil
}

func nullableValue(reading *readings.Reading, param string) sql.NullFloat64 {
	if value, ok := reading.Value(param); ok {
		return sql.NullFloat64{Float64: value, Valid: true}
	}
	return sql.NullFloat64{}
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
