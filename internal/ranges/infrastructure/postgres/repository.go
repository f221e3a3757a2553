package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	ranges "github.com/G-OrdiaD/GreenhouseSolution/internal/ranges/domain"
)

// RangeRepository is a Postgres registry of per-parameter acceptable ranges.
// Each parameter is one row replaced atomically on update, so concurrent
// readers never observe a torn range.
type RangeRepository struct {
	db *sql.DB
}

// NewRangeRepository constructs a repository.
func NewRangeRepository(db *sql.DB) *RangeRepository {
	return &RangeRepository{db: db}
}

// List returns the current range per parameter. Reads reflect the latest
// committed write; there is no cache layer in front of this store.
func (r *RangeRepository) List(ctx context.Context) (map[string]ranges.Range, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("range repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT parameter, min_value, max_value, updated_at
FROM optimal_ranges`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshot := make(map[string]ranges.Range)
	for rows.Next() {
		var entry ranges.Range
		var min, max sql.NullFloat64
		if err := rows.Scan(&entry.Parameter, &min, &max, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		if min.Valid {
			value := min.Float64
			entry.Min = &value
		}
		if max.Valid {
			value := max.Float64
			entry.Max = &value
		}
		entry.UpdatedAt = entry.UpdatedAt.UTC()
		snapshot[entry.Parameter] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

const upsertRangeQuery = `
INSERT INTO optimal_ranges (parameter, min_value, max_value, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (parameter) DO UPDATE
SET min_value = EXCLUDED.min_value,
	max_value = EXCLUDED.max_value,
	updated_at = EXCLUDED.updated_at`

// Set replaces the range for one parameter, inserting the row when absent.
func (r *RangeRepository) Set(ctx context.Context, entry ranges.Range) error {
	if r == nil || r.db == nil {
		return errors.New("range repo: nil db")
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, upsertRangeQuery,
		entry.Parameter, nullableFloat(entry.Min), nullableFloat(entry.Max), time.Now().UTC())
	return err
}

// Apply replaces the ranges for several parameters in one transaction. A
// failure on any row leaves every stored range untouched, so a settings form
// is never half applied.
func (r *RangeRepository) Apply(ctx context.Context, entries []ranges.Range) error {
	if r == nil || r.db == nil {
		return errors.New("range repo: nil db")
	}
	if len(entries) == 0 {
		return nil
	}
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return err
		}
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, upsertRangeQuery,
			entry.Parameter, nullableFloat(entry.Min), nullableFloat(entry.Max), now); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// EnsureDefaults inserts factory ranges for parameters that have no row yet.
// Existing operator-configured rows are left untouched.
func (r *RangeRepository) EnsureDefaults(ctx context.Context, defaults []ranges.Range) error {
	if r == nil || r.db == nil {
		return errors.New("range repo: nil db")
	}
	for _, entry := range defaults {
		if err := entry.Validate(); err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, `
INSERT INTO optimal_ranges (parameter, min_value, max_value, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (parameter) DO NOTHING`,
			entry.Parameter, nullableFloat(entry.Min), nullableFloat(entry.Max), time.Now().UTC()); err != nil {
			return err
		}
	}
	return nil
}

func nullableFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}
