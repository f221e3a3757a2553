package evaluator

import (
	"fmt"
	"time"

	ranges "github.com/G-OrdiaD/GreenhouseSolution/internal/ranges/domain"
	readings "github.com/G-OrdiaD/GreenhouseSolution/internal/readings/domain"
)

// Violation is one parameter value falling outside its configured range on
// one reading.
type Violation struct {
	Parameter     string
	ObservedValue float64
	BoundKind     string
	BoundValue    float64
	Message       string
	ReadingAt     time.Time
}

// Evaluate maps a reading and a range snapshot to zero or more violations.
// Parameters are checked in canonical order; the min bound is checked first
// and min/max are mutually exclusive, so a parameter yields at most one
// violation per reading. Bounds are inclusive-safe: only strict < / >
// trigger. Parameters absent from the reading or from the range snapshot are
// skipped.
func Evaluate(reading readings.Reading, snapshot map[string]ranges.Range) []Violation {
	var violations []Violation
	for _, param := range readings.Parameters {
		value, ok := reading.Value(param)
		if !ok {
			continue
		}
		band, ok := snapshot[param]
		if !ok {
			continue
		}
		switch {
		case band.Min != nil && value < *band.Min:
			violations = append(violations, Violation{
				Parameter:     param,
				ObservedValue: value,
				BoundKind:     "min",
				BoundValue:    *band.Min,
				Message:       fmt.Sprintf("%s too low (%v < %v)", param, value, *band.Min),
				ReadingAt:     reading.Timestamp,
			})
		case band.Max != nil && value > *band.Max:
			violations = append(violations, Violation{
				Parameter:     param,
				ObservedValue: value,
				BoundKind:     "max",
				BoundValue:    *band.Max,
				Message:       fmt.Sprintf("%s too high (%v > %v)", param, value, *band.Max),
				ReadingAt:     reading.Timestamp,
			})
		}
	}
	return violations
}
