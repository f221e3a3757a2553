package ranges

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/G-OrdiaD/GreenhouseSolution/internal/pipeline"
	readings "github.com/G-OrdiaD/GreenhouseSolution/internal/readings/domain"
)

// Range is the operator-configured acceptable band for one parameter. A nil
// bound means unbounded on that side.
type Range struct {
	Parameter string    `json:"parameter"`
	Min       *float64  `json:"min,omitempty"`
	Max       *float64  `json:"max,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks range invariants.
func (r Range) Validate() error {
	if !readings.KnownParameter(r.Parameter) {
		return pipeline.NewValidationError(pipeline.KindInvalidRange, r.Parameter, "unknown parameter")
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return pipeline.NewValidationError(pipeline.KindInvalidRange, r.Parameter,
			fmt.Sprintf("min %v exceeds max %v", *r.Min, *r.Max))
	}
	return nil
}

// MergedWith fills bounds absent from an update with the currently stored
// ones, so a form carrying only one bound does not clear the other.
func (r Range) MergedWith(current Range) Range {
	if r.Min == nil {
		r.Min = current.Min
	}
	if r.Max == nil {
		r.Max = current.Max
	}
	return r
}

// SettingsUpdate is the result of parsing a settings form submission.
type SettingsUpdate struct {
	Ranges   []Range
	Warnings []string
}

// ParseSettings parses `{parameter}_min` / `{parameter}_max` key-value pairs
// into range updates. Keys that don't name a known parameter are skipped and
// reported as warnings instead of failing the whole update.
func ParseSettings(form map[string]string) (SettingsUpdate, error) {
	byParam := make(map[string]*Range)
	for _, param := range readings.Parameters {
		for _, suffix := range []string{"_min", "_max"} {
			raw, ok := form[param+suffix]
			if !ok {
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return SettingsUpdate{}, pipeline.NewValidationError(pipeline.KindNotNumeric, param+suffix, "value is not numeric")
			}
			entry := byParam[param]
			if entry == nil {
				entry = &Range{Parameter: param}
				byParam[param] = entry
			}
			if suffix == "_min" {
				entry.Min = &value
			} else {
				entry.Max = &value
			}
		}
	}

	var update SettingsUpdate
	for _, param := range readings.Parameters {
		if entry, ok := byParam[param]; ok {
			if err := entry.Validate(); err != nil {
				return SettingsUpdate{}, err
			}
			update.Ranges = append(update.Ranges, *entry)
		}
	}
	for key := range form {
		if !recognizedSettingsKey(key) {
			update.Warnings = append(update.Warnings, "unknown settings key: "+key)
		}
	}
	sort.Strings(update.Warnings)
	return update, nil
}

func recognizedSettingsKey(key string) bool {
	param, ok := strings.CutSuffix(key, "_min")
	if !ok {
		param, ok = strings.CutSuffix(key, "_max")
	}
	return ok && readings.KnownParameter(param)
}

// Defaults returns the factory range set for all monitored parameters, used
// to seed the registry on first start.
func Defaults() []Range {
	return []Range{
		bounded(readings.ParamTemperature, 18, 40),
		bounded(readings.ParamHumidity, 30, 80),
		bounded(readings.ParamLightIntensity, 150, 1800),
		bounded(readings.ParamPressure, 985, 1040),
		bounded(readings.ParamAirQuality, 0, 100),
		bounded(readings.ParamPH, 6.0, 7.5),
		bounded(readings.ParamMoisture, 15, 55),
	}
}

func bounded(param string, min, max float64) Range {
	return Range{Parameter: param, Min: &min, Max: &max}
}
