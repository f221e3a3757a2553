package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	readings "github.com/G-OrdiaD/GreenhouseSolution/internal/readings/domain"
)

// ReadingQuery answers historical queries over the reading log.
type ReadingQuery struct {
	db    *sql.DB
	table string
}

// QueryOption configures the reading query.
type QueryOption func(*ReadingQuery)

// WithQueryTable overrides the default table name for queries.
func WithQueryTable(table string) QueryOption {
	return func(query *ReadingQuery) {
		if query != nil && table != "" {
			query.table = table
		}
	}
}

// NewReadingQuery constructs a query with the default table name.
func NewReadingQuery(db *sql.DB, opts ...QueryOption) *ReadingQuery {
	query := &ReadingQuery{db: db, table: defaultReadingsTable}
	for _, opt := range opts {
		opt(query)
	}
	return query
}

// DailyAverages returns per-calendar-date averages of every parameter within
// [start, end], most recent date first. Bounds are inclusive; start after end
// yields an empty result. Dates with no readings are absent, not zero-filled.
func (q *ReadingQuery) DailyAverages(ctx context.Context, start, end time.Time) ([]readings.DailyAverage, error) {
	if q == nil || q.db == nil {
		return nil, errors.New("reading query: nil db")
	}
	if start.IsZero() || end.IsZero() {
		return nil, errors.New("reading query: invalid arguments")
	}
	if start.After(end) {
		return []readings.DailyAverage{}, nil
	}

	query := fmt.Sprintf(`
SELECT DATE(ts) AS day,
	AVG(temperature),
	AVG(humidity),
	AVG(light_intensity),
	AVG(pressure),
	AVG(air_quality),
	AVG(ph),
	AVG(moisture)
FROM %s
WHERE ts >= $1 AND ts <= $2
GROUP BY DATE(ts)
ORDER BY day DESC`, q.table)
	rows, err := q.db.QueryContext(ctx, query, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]readings.DailyAverage, 0)
	for rows.Next() {
		var day time.Time
		averages := make([]sql.NullFloat64, len(readings.Parameters))
		dest := []any{&day}
		for i := range averages {
			dest = append(dest, &averages[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		entry := readings.DailyAverage{Date: day.UTC(), Averages: make(map[string]float64)}
		for i, param := range readings.Parameters {
			if averages[i].Valid {
				entry.Averages[param] = averages[i].Float64
			}
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
