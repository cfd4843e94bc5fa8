package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ──────────────────────────────────────────────
// Feature validation
// ──────────────────────────────────────────────

// featureRange declares the inclusive valid domain of one input field.
type featureRange struct {
	Field string
	Min   float64
	Max   float64
	Unit  string
}

// featureDomains is the fixed evaluation order: missing-field checks run
// over this list first, then range checks, so the first violating field
// in this order is always the one reported.
var featureDomains = []featureRange{
	{"N", 0, 200, ""},
	{"P", 0, 200, ""},
	{"K", 0, 200, ""},
	{"temperature", 0, 50, "°C"},
	{"humidity", 0, 100, "%"},
	{"ph", 0, 14, ""},
	{"rainfall", 0, 500, "mm"},
}

// validateFeatures checks a raw input map and builds a FeatureVector.
// It fails on the first missing/non-numeric field, then on the first
// out-of-range field, and has no side effects.
func validateFeatures(raw map[string]any) (FeatureVector, error) {
	values := make(map[string]float64, len(featureDomains))

	for _, d := range featureDomains {
		v, ok := raw[d.Field]
		if !ok {
			return FeatureVector{}, &ValidationError{Field: d.Field, Reason: "missing required field"}
		}
		f, err := toFloat(v)
		if err != nil {
			return FeatureVector{}, &ValidationError{Field: d.Field, Reason: "not a number"}
		}
		values[d.Field] = f
	}

	for _, d := range featureDomains {
		f := values[d.Field]
		if f < d.Min || f > d.Max {
			return FeatureVector{}, &ValidationError{
				Field:  d.Field,
				Reason: fmt.Sprintf("should be between %g-%g%s", d.Min, d.Max, d.Unit),
			}
		}
	}

	return FeatureVector{
		N:           values["N"],
		P:           values["P"],
		K:           values["K"],
		Temperature: values["temperature"],
		Humidity:    values["humidity"],
		PH:          values["ph"],
		Rainfall:    values["rainfall"],
	}, nil
}

// toFloat accepts the value shapes a decoded JSON body can carry.
// NaN and infinities are rejected: they slip past interval checks
// (every comparison against NaN is false) and must never reach an
// engine.
func toFloat(v any) (float64, error) {
	var f float64
	var err error
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		f, err = t.Float64()
	case string:
		f, err = strconv.ParseFloat(t, 64)
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return f, nil
}

// asMap exposes a FeatureVector in raw-map form, the inverse of
// validateFeatures for chat-extracted values.
func (fv FeatureVector) asMap() map[string]any {
	return map[string]any{
		"N":           fv.N,
		"P":           fv.P,
		"K":           fv.K,
		"temperature": fv.Temperature,
		"humidity":    fv.Humidity,
		"ph":          fv.PH,
		"rainfall":    fv.Rainfall,
	}
}
