package readings

import "time"

// Parameter names accepted from sensors, in canonical evaluation order.
const (
	ParamTemperature    = "temperature"
	ParamHumidity       = "humidity"
	ParamLightIntensity = "light_intensity"
	ParamPressure       = "pressure"
	ParamAirQuality     = "air_quality"
	ParamPH             = "pH"
	ParamMoisture       = "moisture"
)

// Parameters lists every monitored parameter in canonical order. Evaluation
// and query results follow this order so output stays stable.
var Parameters = []string{
	ParamTemperature,
	ParamHumidity,
	ParamLightIntensity,
	ParamPressure,
	ParamAirQuality,
	ParamPH,
	ParamMoisture,
}

// KnownParameter reports whether name is a monitored parameter.
func KnownParameter(name string) bool {
	for _, param := range Parameters {
		if param == name {
			return true
		}
	}
	return false
}

// Reading is one timestamped set of sensor parameter values. Readings are
// immutable once stored.
type Reading struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Zone      string             `json:"zone,omitempty"`
	Values    map[string]float64 `json:"values"`
	CreatedAt time.Time          `json:"created_at"`
}

// Value returns the reading's value for a parameter, if present.
func (r Reading) Value(param string) (float64, bool) {
	value, ok := r.Values[param]
	return value, ok
}

// RecognizedParameters returns the reading's parameter names in canonical
// order.
func (r Reading) RecognizedParameters() []string {
	recognized := make([]string, 0, len(r.Values))
	for _, param := range Parameters {
		if _, ok := r.Values[param]; ok {
			recognized = append(recognized, param)
		}
	}
	return recognized
}

// DailyAverage holds per-parameter averages for one calendar date. Parameters
// with no samples on that date are absent from Averages.
type DailyAverage struct {
	Date     time.Time          `json:"date"`
	Averages map[string]float64 `json:"averages"`
}
