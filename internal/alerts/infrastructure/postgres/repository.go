package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	alerts "github.com/G-OrdiaD/GreenhouseSolution/internal/alerts/domain"
)

// Execer is satisfied by *sql.DB and *sql.Tx so alert inserts can share the
// ingesting transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AlertRepository is a Postgres repository for alert records.
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository constructs a repository.
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts a new alert. exec may be a transaction owned by the caller.
func (r *AlertRepository) Create(ctx context.Context, exec Execer, alert *alerts.Alert) error {
	if r == nil {
		return errors.New("alert repo: nil repository")
	}
	if exec == nil {
		exec = r.db
	}
	if exec == nil || r.db == nil {
		return errors.New("alert repo: nil db")
	}
	if alert == nil {
		return errors.New("alert repo: nil alert")
	}
	if alert.ID == "" || alert.Parameter == "" || alert.Message == "" {
		return errors.New("alert repo: missing fields")
	}
	if alert.Status == "" {
		alert.Status = alerts.StatusOpen
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	if alert.UpdatedAt.IsZero() {
		alert.UpdatedAt = alert.CreatedAt
	}
	_, err := exec.ExecContext(ctx, `
INSERT INTO alerts (
	id, parameter, observed_value, bound_kind, bound_value, message,
	reading_at, reading_id, reading_zone, status, resolved_at, resolved_by, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6,
	$7, $8, $9, $10, $11, $12, $13, $14
)`,
		alert.ID,
		alert.Parameter,
		alert.ObservedValue,
		alert.BoundKind,
		alert.BoundValue,
		alert.Message,
		alert.ReadingAt.UTC(),
		nullableID(alert.ReadingID),
		nullableID(alert.ReadingZone),
		alert.Status,
		nullableTime(alert.ResolvedAt),
		nullableID(alert.ResolvedBy),
		alert.CreatedAt,
		alert.UpdatedAt,
	)
	return err
}

// GetByID fetches an alert by id.
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*alerts.Alert, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alert repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, parameter, observed_value, bound_kind, bound_value, message,
	reading_at, reading_id, reading_zone, status, resolved_at, resolved_by, created_at, updated_at
FROM alerts
WHERE id = $1`, id)
	return scanAlert(row)
}

// ListOpen returns open alerts, most recent first.
func (r *AlertRepository) ListOpen(ctx context.Context, limit int) ([]alerts.Alert, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alert repo: nil db")
	}
	query := `
SELECT id, parameter, observed_value, bound_kind, bound_value, message,
	reading_at, reading_id, reading_zone, status, resolved_at, resolved_by, created_at, updated_at
FROM alerts
WHERE status = $1
ORDER BY reading_at DESC, created_at DESC`
	args := []any{alerts.StatusOpen}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []alerts.Alert
	for rows.Next() {
		alert, err := scanAlertRows(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *alert)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// Resolve transitions an alert from Open to Resolved. Resolving an already
// resolved alert is a no-op; an unknown id yields alerts.ErrNotFound.
func (r *AlertRepository) Resolve(ctx context.Context, id, resolvedBy string, resolvedAt time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("alert repo: nil db")
	}
	if id == "" {
		return errors.New("alert repo: empty id")
	}
	if resolvedAt.IsZero() {
		resolvedAt = time.Now().UTC()
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE alerts
SET status = $1, resolved_at = $2, resolved_by = $3, updated_at = $2
WHERE id = $4 AND status = $5`,
		alerts.StatusResolved, resolvedAt.UTC(), nullableID(resolvedBy), id, alerts.StatusOpen)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return alerts.ErrNotFound
		}
		// Already resolved; keep the transition idempotent.
	}
	return nil
}

func scanAlert(row *sql.Row) (*alerts.Alert, error) {
	var alert alerts.Alert
	var readingID, readingZone, resolvedBy sql.NullString
	var resolvedAt sql.NullTime
	if err := row.Scan(
		&alert.ID,
		&alert.Parameter,
		&alert.ObservedValue,
		&alert.BoundKind,
		&alert.BoundValue,
		&alert.Message,
		&alert.ReadingAt,
		&readingID,
		&readingZone,
		&alert.Status,
		&resolvedAt,
		&resolvedBy,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	applyNullables(&alert, readingID, readingZone, resolvedBy, resolvedAt)
	return &alert, nil
}

func scanAlertRows(rows *sql.Rows) (*alerts.Alert, error) {
	var alert alerts.Alert
	var readingID, readingZone, resolvedBy sql.NullString
	var resolvedAt sql.NullTime
	if err := rows.Scan(
		&alert.ID,
		&alert.Parameter,
		&alert.ObservedValue,
		&alert.BoundKind,
		&alert.BoundValue,
		&alert.Message,
		&alert.ReadingAt,
		&readingID,
		&readingZone,
		&alert.Status,
		&resolvedAt,
		&resolvedBy,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	); err != nil {
		return nil, err
	}
	applyNullables(&alert, readingID, readingZone, resolvedBy, resolvedAt)
	return &alert, nil
}

func applyNullables(alert *alerts.Alert, readingID, readingZone, resolvedBy sql.NullString, resolvedAt sql.NullTime) {
	if readingID.Valid {
		alert.ReadingID = readingID.String
	}
	if readingZone.Valid {
		alert.ReadingZone = readingZone.String
	}
	if resolvedBy.Valid {
		alert.ResolvedBy = resolvedBy.String
	}
	if resolvedAt.Valid {
		alert.ResolvedAt = resolvedAt.Time.UTC()
	}
	alert.ReadingAt = alert.ReadingAt.UTC()
	alert.CreatedAt = alert.CreatedAt.UTC()
	alert.UpdatedAt = alert.UpdatedAt.UTC()
}

func nullableTime(value time.Time) sql.NullTime {
	if value.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: value.UTC(), Valid: true}
}

func nullableID(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
