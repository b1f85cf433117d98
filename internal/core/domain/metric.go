package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	MetricTypeNumberInput = "number_input"
	MetricTypeSlider      = "slider_1_10"
	MetricTypeTextArea    = "text_area"

	legacyMetricNumeric = "numeric"
	legacyMetricText    = "text"

	SliderDefault = 5
)

// DataType is the phase of a challenge in which a metric value is collected.
type DataType string

const (
	DataInitial DataType = "initial"
	DataDaily   DataType = "daily"
	DataFinal   DataType = "final"
)

var defaultFrequency = []string{string(DataInitial), string(DataFinal)}

func ParseDataType(raw string) (DataType, bool) {
	switch DataType(strings.ToLower(strings.TrimSpace(raw))) {
	case DataInitial:
		return DataInitial, true
	case DataDaily:
		return DataDaily, true
	case DataFinal:
		return DataFinal, true
	}
	return "", false
}

// MetricKind is the closed set of input kinds a metric can have.
// Use ParseMetricKind to obtain one and a type switch to branch on it.
type MetricKind interface {
	fmt.Stringer
	// Default is the pre-filled value for a fresh form, nil when there is none.
	Default() any
	coerce(raw any) (MetricValue, *FieldError)
}

type NumberInput struct{}

type Slider struct {
	Min float64
	Max float64
}

type TextArea struct{}

// UnknownKind keeps metrics with a type this service does not recognise usable.
type UnknownKind struct {
	Raw string
}

var DefaultSlider = Slider{Min: 1, Max: 10}

func ParseMetricKind(raw string) MetricKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case MetricTypeNumberInput, legacyMetricNumeric:
		return NumberInput{}
	case MetricTypeSlider:
		return DefaultSlider
	case MetricTypeTextArea, legacyMetricText:
		return TextArea{}
	}
	return UnknownKind{Raw: raw}
}

func IsKnownMetricType(raw string) bool {
	_, unknown := ParseMetricKind(raw).(UnknownKind)
	return !unknown
}

func (NumberInput) String() string { return MetricTypeNumberInput }
func (Slider) String() string { return MetricTypeSlider }
func (TextArea) String() string { return MetricTypeTextArea }
func (k UnknownKind) String() string { return k.Raw }

func (NumberInput) Default() any { return float64(0) }
func (Slider) Default() any { return float64(SliderDefault) }
func (TextArea) Default() any { return "" }
func (UnknownKind) Default() any { return nil }

func (NumberInput) coerce(raw any) (MetricValue, *FieldError) {
	n, code := coerceNumber(raw)
	if code != "" {
		return MetricValue{}, &FieldError{Code: code}
	}
	return NumberValue(n), nil
}

func (k Slider) coerce(raw any) (MetricValue, *FieldError) {
	n, code := coerceNumber(raw)
	if code != "" {
		return MetricValue{}, &FieldError{Code: code}
	}
	if n < k.Min {
		return MetricValue{}, &FieldError{Code: CodeMin, Param: formatFloat(k.Min)}
	}
	if n > k.Max {
		return MetricValue{}, &FieldError{Code: CodeMax, Param: formatFloat(k.Max)}
	}
	return NumberValue(n), nil
}

func (TextArea) coerce(raw any) (MetricValue, *FieldError) {
	switch v := raw.(type) {
	case nil:
		return MetricValue{}, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return MetricValue{}, nil
		}
		return TextValue(v), nil
	}
	return MetricValue{}, &FieldError{Code: CodeString}
}

func (UnknownKind) coerce(raw any) (MetricValue, *FieldError) {
	switch v := raw.(type) {
	case nil:
		return MetricValue{}, nil
	case string:
		return TextValue(v), nil
	case bool:
		return TextValue(strconv.FormatBool(v)), nil
	}
	if n, code := coerceNumber(raw); code == "" {
		return NumberValue(n), nil
	}
	return TextValue(fmt.Sprint(raw)), nil
}

func coerceNumber(raw any) (float64, string) {
	var n float64
	switch v := raw.(type) {
	case nil:
		return 0, CodeRequired
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, CodeNumber
		}
		n = f
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, CodeRequired
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, CodeNumber
		}
		n = f
	default:
		return 0, CodeNumber
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, CodeNumber
	}
	return n, ""
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MetricValue holds at most one of a numeric or a textual reading.
type MetricValue struct {
	Number *float64 `json:"value_number"`
	Text   *string  `json:"value_text"`
}

func NumberValue(n float64) MetricValue { return MetricValue{Number: &n} }
func TextValue(s string) MetricValue { return MetricValue{Text: &s} }

func (v MetricValue) IsEmpty() bool {
	return v.Number == nil && v.Text == nil
}

type ChallengeMetric struct {
	ID                  string    `json:"id" db:"id"`
	ChallengeID         string    `json:"challenge_id" db:"challenge_id"`
	MetricName          string    `json:"metric_name" db:"metric_name"`
	MetricType          string    `json:"metric_type" db:"metric_type"`
	Description         string    `json:"description,omitempty" db:"description"`
	CollectionFrequency []string  `json:"collection_frequency" db:"-"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

func (m ChallengeMetric) Kind() MetricKind {
	return ParseMetricKind(m.MetricType)
}

func (m ChallengeMetric) CollectedAt(phase DataType) bool {
	for _, f := range m.CollectionFrequency {
		if DataType(f) == phase {
			return true
		}
	}
	return false
}

// normalizeFrequency lowercases, de-duplicates and defaults an empty set.
func normalizeFrequency(freq []string) []string {
	if len(freq) == 0 {
		return append([]string(nil), defaultFrequency...)
	}
	seen := make(map[string]bool, len(freq))
	out := make([]string, 0, len(freq))
	for _, f := range freq {
		f = strings.ToLower(strings.TrimSpace(f))
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
