package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultChallengeImage       = "https://images.unsplash.com/photo-1544367567-0f2fcb009e0b?w=400&h=300&fit=crop&crop=center"
	DefaultChallengeDescription = "No description available."
	DefaultHostName             = "Anonymous Host"
	DefaultChallengeType        = "General"
)

// ChallengeSummary is one row of a challenge listing as the store returns it.
// ParticipantCount is left untyped because drivers and caches disagree on the aggregate type.
type ChallengeSummary struct {
	ID               string     `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	Description      *string    `json:"description" db:"description"`
	ImageURL         *string    `json:"image_url" db:"image_url"`
	ChallengeType    *string    `json:"challenge_type" db:"challenge_type"`
	HostName         *string    `json:"host_name" db:"host_name"`
	ParticipantCount any        `json:"participant_count" db:"participant_count"`
	DurationDays     int        `json:"duration_days" db:"duration_days"`
	StartDate        *time.Time `json:"start_date" db:"start_date"`
	Featured         bool       `json:"featured" db:"featured"`
}

type MyChallengeSummary struct {
	ChallengeSummary
	UserChallengeID string              `json:"user_challenge_id" db:"user_challenge_id"`
	CurrentDay      int                 `json:"current_day" db:"current_day"`
	ChallengeStatus UserChallengeStatus `json:"challenge_status" db:"challenge_status"`
}

type ChallengeCard struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Image            string `json:"image"`
	HostName         string `json:"host_name"`
	ChallengeType    string `json:"challenge_type"`
	ParticipantCount int    `json:"participant_count"`
	DurationDays     int    `json:"duration_days"`
	DaysRemaining    int    `json:"days_remaining"`
	Featured         bool   `json:"featured"`
}

type MyChallengeCard struct {
	ChallengeCard
	UserChallengeID string              `json:"user_challenge_id"`
	CurrentDay      int                 `json:"current_day"`
	ChallengeStatus UserChallengeStatus `json:"challenge_status"`
	ProgressPercent int                 `json:"progress_percent"`
}

type PublicChallenges struct {
	Featured []ChallengeCard `json:"featured"`
	Trending []ChallengeCard `json:"trending"`
}

func NewChallengeCard(s ChallengeSummary, now time.Time) ChallengeCard {
	return ChallengeCard{
		ID:               s.ID,
		Name:             s.Name,
		Description:      orDefault(s.Description, DefaultChallengeDescription),
		Image:            orDefault(s.ImageURL, DefaultChallengeImage),
		HostName:         orDefault(s.HostName, DefaultHostName),
		ChallengeType:    orDefault(s.ChallengeType, DefaultChallengeType),
		ParticipantCount: ParticipantCount(s.ParticipantCount),
		DurationDays:     s.DurationDays,
		DaysRemaining:    DaysRemaining(s.StartDate, now),
		Featured:         s.Featured,
	}
}

func NewMyChallengeCard(s MyChallengeSummary, now time.Time) MyChallengeCard {
	return MyChallengeCard{
		ChallengeCard:   NewChallengeCard(s.ChallengeSummary, now),
		UserChallengeID: s.UserChallengeID,
		CurrentDay:      s.CurrentDay,
		ChallengeStatus: s.ChallengeStatus,
		ProgressPercent: ProgressPercent(s.CurrentDay, s.DurationDays, s.ChallengeStatus),
	}
}

// SplitFeatured partitions cards into featured and trending, keeping order.
func SplitFeatured(summaries []ChallengeSummary, now time.Time) PublicChallenges {
	out := PublicChallenges{Featured: []ChallengeCard{}, Trending: []ChallengeCard{}}
	for _, s := range summaries {
		card := NewChallengeCard(s, now)
		if card.Featured {
			out.Featured = append(out.Featured, card)
		} else {
			out.Trending = append(out.Trending, card)
		}
	}
	return out
}

// DaysRemaining is the number of calendar days from now until start, never negative.
func DaysRemaining(start *time.Time, now time.Time) int {
	if start == nil {
		return 0
	}
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	days := int(math.Round(s.Sub(n).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// ParticipantCount normalizes an aggregate of unknown type to a non-negative int.
func ParticipantCount(raw any) int {
	var n float64
	switch v := raw.(type) {
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case float32:
		n = float64(v)
	case float64:
		n = v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		n = f
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			return 0
		}
		n = f
	default:
		return 0
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0
	}
	return int(n)
}

func ProgressPercent(currentDay, durationDays int, status UserChallengeStatus) int {
	if status == UserChallengeCompleted {
		return 100
	}
	if durationDays <= 0 {
		return 0
	}
	done := currentDay - 1
	if done < 0 {
		done = 0
	}
	if done > durationDays {
		done = durationDays
	}
	return done * 100 / durationDays
}

type ChallengeDetail struct {
	Challenge
	HostName      string            `json:"host_name"`
	HostPicture   *string           `json:"host_picture,omitempty"`
	Tasks         []DailyTask       `json:"tasks"`
	Metrics       []ChallengeMetric `json:"metrics"`
	DaysRemaining int               `json:"days_remaining"`
}

type JoinForm struct {
	ChallengeID string         `json:"challenge_id"`
	Schema      FormSchema     `json:"schema"`
	Defaults    map[string]any `json:"defaults"`
}

type Dashboard struct {
	UserChallenge   UserChallenge  `json:"user_challenge"`
	ChallengeName   string         `json:"challenge_name"`
	ChallengeImage  string         `json:"challenge_image"`
	DurationDays    int            `json:"duration_days"`
	ProgressPercent int            `json:"progress_percent"`
	CurrentTask     *DailyTask     `json:"current_task"`
	DailyForm       FormSchema     `json:"daily_form"`
	DailyDefaults   map[string]any `json:"daily_defaults"`
}

type MetricPoint struct {
	DataType    DataType  `json:"data_type"`
	ValueNumber *float64  `json:"value_number"`
	ValueText   *string   `json:"value_text"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type MetricSeries struct {
	MetricID   string        `json:"metric_id"`
	MetricName string        `json:"metric_name"`
	MetricType string        `json:"metric_type"`
	Points     []MetricPoint `json:"points"`
}

// GroupMetricSeries groups readings by metric id. Series appear in the order
// their metric is first seen and points keep the input order.
func GroupMetricSeries(rows []MetricReading) []MetricSeries {
	index := make(map[string]int)
	series := make([]MetricSeries, 0)

	for _, r := range rows {
		if r.Value().IsEmpty() {
			continue
		}
		i, ok := index[r.MetricID]
		if !ok {
			i = len(series)
			index[r.MetricID] = i
			series = append(series, MetricSeries{
				MetricID:   r.MetricID,
				MetricName: r.MetricName,
				MetricType: r.MetricType,
			})
		}
		series[i].Points = append(series[i].Points, MetricPoint{
			DataType:    r.DataType,
			ValueNumber: r.ValueNumber,
			ValueText:   r.ValueText,
			RecordedAt:  r.RecordedAt,
		})
	}
	return series
}

type ReportEntry struct {
	MetricID   string       `json:"metric_id"`
	MetricName string       `json:"metric_name"`
	MetricType string       `json:"metric_type"`
	Initial    *MetricValue `json:"initial"`
	Final      *MetricValue `json:"final"`
	Change     *float64     `json:"change"`
}

type Report struct {
	UserChallengeID string              `json:"user_challenge_id"`
	ChallengeStatus UserChallengeStatus `json:"challenge_status"`
	Entries         []ReportEntry       `json:"entries"`
	FinalPending    bool                `json:"final_pending"`
	FinalForm       *FormSchema         `json:"final_form,omitempty"`
}

// BuildReport compares initial and final readings of every final-phase metric.
// The final form is attached only once the participation is completed and some
// final value is still missing.
func BuildReport(uc UserChallenge, metrics []ChallengeMetric, readings []UserMetricData) Report {
	initial := make(map[string]MetricValue)
	final := make(map[string]MetricValue)
	for _, r := range readings {
		if r.Value().IsEmpty() {
			continue
		}
		switch r.DataType {
		case DataInitial:
			initial[r.MetricID] = r.Value()
		case DataFinal:
			final[r.MetricID] = r.Value()
		}
	}

	report := Report{
		UserChallengeID: uc.ID,
		ChallengeStatus: uc.ChallengeStatus,
		Entries:         []ReportEntry{},
	}

	for _, m := range metrics {
		if !m.CollectedAt(DataFinal) {
			continue
		}

		entry := ReportEntry{MetricID: m.ID, MetricName: m.MetricName, MetricType: m.Kind().String()}
		if v, ok := initial[m.ID]; ok {
			entry.Initial = &v
		}
		if v, ok := final[m.ID]; ok {
			entry.Final = &v
		} else {
			report.FinalPending = true
		}
		if entry.Initial != nil && entry.Final != nil && entry.Initial.Number != nil && entry.Final.Number != nil {
			change := *entry.Final.Number - *entry.Initial.Number
			entry.Change = &change
		}
		report.Entries = append(report.Entries, entry)
	}

	if report.FinalPending && uc.IsCompleted() {
		schema := BuildFormSchema(metrics, DataFinal)
		report.FinalForm = &schema
	}
	return report
}

func orDefault(s *string, def string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return def
	}
	return *s
}
