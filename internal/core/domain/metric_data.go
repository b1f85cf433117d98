package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserMetricData struct {
	ID              string    `json:"id" db:"id"`
	UserChallengeID string    `json:"user_challenge_id" db:"user_challenge_id"`
	MetricID        string    `json:"metric_id" db:"metric_id"`
	DataType        DataType  `json:"data_type" db:"data_type"`
	ValueNumber     *float64  `json:"value_number" db:"value_number"`
	ValueText       *string   `json:"value_text" db:"value_text"`
	RecordedAt      time.Time `json:"recorded_at" db:"recorded_at"`
}

// MetricReading is a stored value joined with its metric definition.
type MetricReading struct {
	UserMetricData
	MetricName string `json:"metric_name" db:"metric_name"`
	MetricType string `json:"metric_type" db:"metric_type"`
}

func NewMetricRows(userChallengeID string, phase DataType, values []RecordedValue) []UserMetricData {
	now := time.Now().UTC()
	rows := make([]UserMetricData, 0, len(values))
	for _, v := range values {
		rows = append(rows, UserMetricData{
			ID:              uuid.NewString(),
			UserChallengeID: userChallengeID,
			MetricID:        v.MetricID,
			DataType:        phase,
			ValueNumber:     v.Value.Number,
			ValueText:       v.Value.Text,
			RecordedAt:      now,
		})
	}
	return rows
}

func (d UserMetricData) Value() MetricValue {
	return MetricValue{Number: d.ValueNumber, Text: d.ValueText}
}
