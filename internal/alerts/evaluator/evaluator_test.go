package evaluator

import (
	"testing"
	"time"

	ranges "github.com/G-OrdiaD/GreenhouseSolution/internal/ranges/domain"
	readings "github.com/G-OrdiaD/GreenhouseSolution/internal/readings/domain"
)

func f(v float64) *float64 { return &v }

func snapshot(entries ...ranges.Range) map[string]ranges.Range {
	m := make(map[string]ranges.Range, len(entries))
	for _, e := range entries {
		m[e.Parameter] = e
	}
	return m
}

func reading(values map[string]float64) readings.Reading {
	return readings.Reading{
		ID:        "r-1",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Values:    values,
	}
}

func TestEvaluateInRangeProducesNothing(t *testing.T) {
	snap := snapshot(
		ranges.Range{Parameter: readings.ParamTemperature, Min: f(18), Max: f(40)},
		ranges.Range{Parameter: readings.ParamHumidity, Min: f(30), Max: f(80)},
	)
	got := Evaluate(reading(map[string]float64{
		readings.ParamTemperature: 25,
		readings.ParamHumidity:    55,
	}), snap)
	if len(got) != 0 {
		t.Fatalf("expected no violations, got %d", len(got))
	}
}

func TestEvaluateBoundsAreInclusive(t *testing.T) {
	snap := snapshot(ranges.Range{Parameter: readings.ParamTemperature, Min: f(18), Max: f(40)})

	for _, value := range []float64{18, 40} {
		got := Evaluate(reading(map[string]float64{readings.ParamTemperature: value}), snap)
		if len(got) != 0 {
			t.Errorf("value %v exactly on bound should not violate, got %+v", value, got)
		}
	}
}

func TestEvaluateBelowMin(t *testing.T) {
	snap := snapshot(ranges.Range{Parameter: readings.ParamTemperature, Min: f(18), Max: f(40)})
	got := Evaluate(reading(map[string]float64{readings.ParamTemperature: 12.5}), snap)
	if len(got) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(got))
	}
	v := got[0]
	if v.BoundKind != "min" || v.BoundValue != 18 || v.ObservedValue != 12.5 {
		t.Fatalf("unexpected violation: %+v", v)
	}
	if v.Message != "temperature too low (12.5 < 18)" {
		t.Fatalf("unexpected message: %q", v.Message)
	}
}

func TestEvaluateAboveMax(t *testing.T) {
	snap := snapshot(ranges.Range{Parameter: readings.ParamHumidity, Min: f(30), Max: f(80)})
	got := Evaluate(reading(map[string]float64{readings.ParamHumidity: 91}), snap)
	if len(got) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(got))
	}
	v := got[0]
	if v.BoundKind != "max" || v.BoundValue != 80 {
		t.Fatalf("unexpected violation: %+v", v)
	}
	if v.Message != "humidity too high (91 > 80)" {
		t.Fatalf("unexpected message: %q", v.Message)
	}
}

func TestEvaluateMinCheckedBeforeMax(t *testing.T) {
	// Min below max is impossible on a valid range, but an inverted range in
	// storage must still yield at most one violation, the min one.
	snap := snapshot(ranges.Range{Parameter: readings.ParamPH, Min: f(8), Max: f(6)})
	got := Evaluate(reading(map[string]float64{readings.ParamPH: 7}), snap)
	if len(got) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(got))
	}
	if got[0].BoundKind != "min" {
		t.Fatalf("expected min violation first, got %q", got[0].BoundKind)
	}
}

func TestEvaluateSkipsParametersWithoutRange(t *testing.T) {
	snap := snapshot(ranges.Range{Parameter: readings.ParamTemperature, Min: f(18), Max: f(40)})
	got := Evaluate(reading(map[string]float64{
		readings.ParamTemperature: 25,
		readings.ParamMoisture:    2, // no configured range
	}), snap)
	if len(got) != 0 {
		t.Fatalf("expected no violations, got %+v", got)
	}
}

func TestEvaluateSkipsAbsentParameters(t *testing.T) {
	snap := snapshot(
		ranges.Range{Parameter: readings.ParamTemperature, Min: f(18), Max: f(40)},
		ranges.Range{Parameter: readings.ParamHumidity, Min: f(30), Max: f(80)},
	)
	got := Evaluate(reading(map[string]float64{readings.ParamTemperature: 25}), snap)
	if len(got) != 0 {
		t.Fatalf("expected no violations, got %+v", got)
	}
}

func TestEvaluateOpenEndedBounds(t *testing.T) {
	snap := snapshot(ranges.Range{Parameter: readings.ParamLightIntensity, Min: f(150)})
	got := Evaluate(reading(map[string]float64{readings.ParamLightIntensity: 99999}), snap)
	if len(got) != 0 {
		t.Fatalf("missing max bound must not trigger, got %+v", got)
	}

	got = Evaluate(reading(map[string]float64{readings.ParamLightIntensity: 10}), snap)
	if len(got) != 1 || got[0].BoundKind != "min" {
		t.Fatalf("expected min violation, got %+v", got)
	}
}

func TestEvaluateCanonicalOrder(t *testing.T) {
	var defaults []ranges.Range
	for _, d := range ranges.Defaults() {
		defaults = append(defaults, d)
	}
	snap := snapshot(defaults...)
	got := Evaluate(reading(map[string]float64{
		readings.ParamMoisture:    1,   // below min
		readings.ParamTemperature: 99,  // above max
		readings.ParamHumidity:    5,   // below min
		readings.ParamPressure:    999, // in range
	}), snap)
	if len(got) != 3 {
		t.Fatalf("expected 3 violations, got %d", len(got))
	}
	order := []string{readings.ParamTemperature, readings.ParamHumidity, readings.ParamMoisture}
	for i, param := range order {
		if got[i].Parameter != param {
			t.Fatalf("violation %d: expected %s, got %s", i, param, got[i].Parameter)
		}
	}
}

func TestEvaluateCarriesReadingTimestamp(t *testing.T) {
	snap := snapshot(ranges.Range{Parameter: readings.ParamTemperature, Min: f(18), Max: f(40)})
	r := reading(map[string]float64{readings.ParamTemperature: 5})
	got := Evaluate(r, snap)
	if len(got) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(got))
	}
	if !got[0].ReadingAt.Equal(r.Timestamp) {
		t.Fatalf("expected reading timestamp %v, got %v", r.Timestamp, got[0].ReadingAt)
	}
}
