package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetricKind(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.MetricKind
	}{
		{"number_input", domain.NumberInput{}},
		{"numeric", domain.NumberInput{}},
		{"slider_1_10", domain.Slider{Min: 1, Max: 10}},
		{"text_area", domain.TextArea{}},
		{"TEXT", domain.TextArea{}},
		{"boolean", domain.UnknownKind{Raw: "boolean"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ParseMetricKind(tt.raw))
		})
	}

	assert.True(t, domain.IsKnownMetricType("numeric"))
	assert.False(t, domain.IsKnownMetricType("boolean"))
	assert.False(t, domain.IsKnownMetricType(""))
}

func sampleMetrics() []domain.ChallengeMetric {
	return []domain.ChallengeMetric{
		{ID: "weight", MetricName: "Weight", MetricType: "number_input", CollectionFrequency: []string{"initial", "final"}},
		{ID: "mood", MetricName: "Mood", MetricType: "slider_1_10", CollectionFrequency: []string{"initial", "daily", "final"}},
		{ID: "notes", MetricName: "Notes", MetricType: "text", CollectionFrequency: []string{"daily"}},
		{ID: "legacy", MetricName: "Done", MetricType: "boolean", CollectionFrequency: []string{"daily"}},
	}
}

func TestBuildFormSchema(t *testing.T) {
	t.Run("Keeps only metrics collected in the phase, in order", func(t *testing.T) {
		schema := domain.BuildFormSchema(sampleMetrics(), domain.DataDaily)

		require.Len(t, schema.Fields, 3)
		assert.Equal(t, "mood", schema.Fields[0].MetricID)
		assert.Equal(t, "notes", schema.Fields[1].MetricID)
		assert.Equal(t, "legacy", schema.Fields[2].MetricID)
		assert.Equal(t, domain.DataDaily, schema.Phase)
	})

	t.Run("Carries rules and defaults per kind", func(t *testing.T) {
		schema := domain.BuildFormSchema(sampleMetrics(), domain.DataDaily)

		mood := schema.Fields[0]
		assert.True(t, mood.Required)
		require.NotNil(t, mood.Min)
		assert.Equal(t, 1.0, *mood.Min)
		assert.Equal(t, 10.0, *mood.Max)

		notes := schema.Fields[1]
		assert.False(t, notes.Required)
		assert.Equal(t, "text_area", notes.Type)

		defaults := schema.Defaults()
		assert.Equal(t, 5.0, defaults["mood"])
		assert.Equal(t, "", defaults["notes"])
		_, hasLegacy := defaults["legacy"]
		assert.False(t, hasLegacy, "unknown kinds have no default")
	})

	t.Run("Number input defaults to zero", func(t *testing.T) {
		schema := domain.BuildFormSchema(sampleMetrics(), domain.DataInitial)
		assert.Equal(t, 0.0, schema.Defaults()["weight"])
	})

	t.Run("No matching metrics gives an empty schema", func(t *testing.T) {
		metrics := []domain.ChallengeMetric{{ID: "x", MetricType: "number_input", CollectionFrequency: []string{"initial"}}}
		assert.True(t, domain.BuildFormSchema(metrics, domain.DataFinal).IsEmpty())
	})
}

func TestFormSchemaValidate(t *testing.T) {
	schema := domain.BuildFormSchema(sampleMetrics(), domain.DataInitial)

	t.Run("Coerces numeric strings", func(t *testing.T) {
		values, err := schema.Validate(map[string]any{"weight": " 72.5 ", "mood": json.Number("7")})
		require.NoError(t, err)
		require.Len(t, values, 2)
		assert.Equal(t, 72.5, *values[0].Value.Number)
		assert.Equal(t, 7.0, *values[1].Value.Number)
	})

	t.Run("Empty numeric input is required", func(t *testing.T) {
		_, err := schema.Validate(map[string]any{"weight": "", "mood": 5})

		var fe domain.FieldErrors
		require.ErrorAs(t, err, &fe)
		assert.ErrorIs(t, err, domain.ErrValidation)
		require.Len(t, fe, 1)
		assert.Equal(t, "weight", fe[0].Field)
		assert.Equal(t, domain.CodeRequired, fe[0].Code)
	})

	t.Run("Slider outside the range is rejected", func(t *testing.T) {
		_, err := schema.Validate(map[string]any{"weight": 70, "mood": 11})

		var fe domain.FieldErrors
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "mood", fe[0].Field)
		assert.Equal(t, domain.CodeMax, fe[0].Code)
		assert.Equal(t, "10", fe[0].Param)
	})

	t.Run("Non numeric value is rejected", func(t *testing.T) {
		_, err := schema.Validate(map[string]any{"weight": "heavy", "mood": 0})

		var fe domain.FieldErrors
		require.ErrorAs(t, err, &fe)
		require.Len(t, fe, 2)
		assert.Equal(t, domain.CodeNumber, fe[0].Code)
		assert.Equal(t, domain.CodeMin, fe[1].Code)
	})

	t.Run("Text is optional and unknown kinds accept anything", func(t *testing.T) {
		daily := domain.BuildFormSchema(sampleMetrics(), domain.DataDaily)

		values, err := daily.Validate(map[string]any{"mood": 4, "legacy": true})
		require.NoError(t, err)
		require.Len(t, values, 2)
		assert.Equal(t, "mood", values[0].MetricID)
		assert.Equal(t, "legacy", values[1].MetricID)
		require.NotNil(t, values[1].Value.Text)
		assert.Equal(t, "true", *values[1].Value.Text)
	})

	t.Run("Blank text counts as omitted", func(t *testing.T) {
		daily := domain.BuildFormSchema(sampleMetrics(), domain.DataDaily)

		values, err := daily.Validate(map[string]any{"mood": 4, "notes": "   "})
		require.NoError(t, err)
		require.Len(t, values, 1)
		assert.Equal(t, "mood", values[0].MetricID)
	})
}
