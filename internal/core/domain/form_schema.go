package domain

// FormField describes one input of a metric form.
type FormField struct {
	MetricID    string   `json:"metric_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Default     any      `json:"default,omitempty"`

	kind MetricKind
}

type FormSchema struct {
	Phase  DataType    `json:"phase"`
	Fields []FormField `json:"fields"`
}

// RecordedValue is a validated reading ready to be stored.
type RecordedValue struct {
	MetricID string
	Value    MetricValue
}

// BuildFormSchema derives the form for a phase from the metric definitions,
// keeping only metrics collected in that phase, in definition order.
func BuildFormSchema(metrics []ChallengeMetric, phase DataType) FormSchema {
	schema := FormSchema{Phase: phase, Fields: make([]FormField, 0, len(metrics))}

	for _, m := range metrics {
		if !m.CollectedAt(phase) {
			continue
		}

		kind := m.Kind()
		field := FormField{
			MetricID:    m.ID,
			Name:        m.MetricName,
			Description: m.Description,
			Type:        kind.String(),
			Default:     kind.Default(),
			kind:        kind,
		}

		switch k := kind.(type) {
		case NumberInput:
			field.Required = true
		case Slider:
			field.Required = true
			lo, hi := k.Min, k.Max
			field.Min, field.Max = &lo, &hi
		case TextArea, UnknownKind:
		}

		schema.Fields = append(schema.Fields, field)
	}

	return schema
}

func (s FormSchema) IsEmpty() bool {
	return len(s.Fields) == 0
}

// Defaults returns the initial form values keyed by metric id.
func (s FormSchema) Defaults() map[string]any {
	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		if f.Default != nil {
			out[f.MetricID] = f.Default
		}
	}
	return out
}

// Validate coerces the submitted values field by field. It returns FieldErrors
// when any field fails. Omitted optional fields and values for metrics outside
// the schema produce no RecordedValue.
func (s FormSchema) Validate(values map[string]any) ([]RecordedValue, error) {
	var errs FieldErrors
	out := make([]RecordedValue, 0, len(s.Fields))

	for _, f := range s.Fields {
		kind := f.kind
		if kind == nil {
			kind = ParseMetricKind(f.Type)
		}

		v, fe := kind.coerce(values[f.MetricID])
		if fe != nil {
			fe.Field = f.MetricID
			errs = append(errs, *fe)
			continue
		}
		if v.IsEmpty() {
			continue
		}
		out = append(out, RecordedValue{MetricID: f.MetricID, Value: v})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}
