package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ChallengeStatus string

const (
	ChallengePending   ChallengeStatus = "pending"
	ChallengePublished ChallengeStatus = "published"
	ChallengeArchived  ChallengeStatus = "archived"

	DefaultDurationDays = 30
	slugMaxLen          = 80
)

type Challenge struct {
	ID            string          `json:"id" db:"id"`
	HostID        string          `json:"host_id" db:"host_id"`
	Name          string          `json:"name" db:"name"`
	Slug          string          `json:"slug" db:"slug"`
	Description   string          `json:"description" db:"description"`
	DurationDays  int             `json:"duration_days" db:"duration_days"`
	ImageURL      *string         `json:"image_url,omitempty" db:"image_url"`
	ChallengeType *string         `json:"challenge_type,omitempty" db:"challenge_type"`
	StartDate     *time.Time      `json:"start_date,omitempty" db:"start_date"`
	Status        ChallengeStatus `json:"status" db:"status"`
	Featured      bool            `json:"featured" db:"featured"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

type DailyTask struct {
	ID          string    `json:"id" db:"id"`
	ChallengeID string    `json:"challenge_id" db:"challenge_id"`
	DayNumber   int       `json:"day_number" db:"day_number"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	VideoURL    *string   `json:"video_url,omitempty" db:"video_url"`
	ResourceURL *string   `json:"resource_url,omitempty" db:"resource_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// FullChallenge is a challenge with its tasks and metrics, created as one unit.
type FullChallenge struct {
	Challenge Challenge         `json:"challenge"`
	Tasks     []DailyTask       `json:"tasks"`
	Metrics   []ChallengeMetric `json:"metrics"`
}

func (c *Challenge) IsJoinable() bool {
	return c.Status == ChallengePublished
}

// TransitionTo moves the challenge along pending -> published -> archived.
func (c *Challenge) TransitionTo(next ChallengeStatus) error {
	allowed := false
	switch c.Status {
	case ChallengePending:
		allowed = next == ChallengePublished || next == ChallengeArchived
	case ChallengePublished:
		allowed = next == ChallengeArchived
	}
	if !allowed {
		return ErrInvalidStatusChange
	}

	c.Status = next
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// ApplyBasicInfo overwrites the editable header fields. The info must already be validated.
func (c *Challenge) ApplyBasicInfo(info BasicInfo) {
	c.Name = info.Name
	c.Description = info.Description
	c.DurationDays = info.DurationDays
	c.ImageURL = optionalString(info.ImageURL)
	c.ChallengeType = optionalString(info.ChallengeType)
	c.StartDate = parseStartDate(info.StartDate)
	c.UpdatedAt = time.Now().UTC()
}

// MakeSlug derives a URL slug from the name, suffixed with part of the id
// so two challenges with the same name never collide.
func MakeSlug(name, id string) string {
	base := slug.Make(name)
	if len(base) > slugMaxLen {
		base = strings.Trim(base[:slugMaxLen], "-")
	}
	suffix := strings.ReplaceAll(id, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

// BuildFullChallenge turns a validated form into the records to persist.
func (f ChallengeForm) BuildFullChallenge(hostID string) *FullChallenge {
	now := time.Now().UTC()
	f = f.Normalize()
	id := uuid.NewString()

	full := &FullChallenge{
		Challenge: Challenge{
			ID:        id,
			HostID:    hostID,
			Slug:      MakeSlug(f.Name, id),
			Status:    ChallengePending,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Tasks:   make([]DailyTask, 0, len(f.Tasks)),
		Metrics: make([]ChallengeMetric, 0, len(f.Metrics)),
	}
	full.Challenge.ApplyBasicInfo(f.BasicInfo)
	full.Challenge.UpdatedAt = now

	for _, t := range f.Tasks {
		full.Tasks = append(full.Tasks, DailyTask{
			ID:          uuid.NewString(),
			ChallengeID: id,
			DayNumber:   t.DayNumber,
			Title:       t.Title,
			Description: t.Description,
			VideoURL:    optionalString(t.VideoURL),
			ResourceURL: optionalString(t.ResourceURL),
			CreatedAt:   now,
		})
	}

	for _, m := range f.Metrics {
		full.Metrics = append(full.Metrics, ChallengeMetric{
			ID:                  uuid.NewString(),
			ChallengeID:         id,
			MetricName:          m.MetricName,
			MetricType:          ParseMetricKind(m.MetricType).String(),
			Description:         m.Description,
			CollectionFrequency: normalizeFrequency(m.CollectionFrequency),
			CreatedAt:           now,
		})
	}

	return full
}

// TaskForDay returns the task scheduled for the given day, if any.
func TaskForDay(tasks []DailyTask, day int) *DailyTask {
	for i := range tasks {
		if tasks[i].DayNumber == day {
			return &tasks[i]
		}
	}
	return nil
}

// MissingTaskDays lists the days in 1..duration that have no task scheduled.
func MissingTaskDays(tasks []DailyTask, duration int) []int {
	var missing []int
	for day := 1; day <= duration; day++ {
		if TaskForDay(tasks, day) == nil {
			missing = append(missing, day)
		}
	}
	return missing
}

// TaskCoverageError reports a schedule with gaps, or nil when every day has a task.
func TaskCoverageError(field string, tasks []DailyTask, duration int) error {
	missing := MissingTaskDays(tasks, duration)
	if len(missing) == 0 {
		return nil
	}
	days := make([]string, len(missing))
	for i, d := range missing {
		days[i] = strconv.Itoa(d)
	}
	return FieldErrors{{Field: field, Code: CodeMissingDays, Param: strings.Join(days, ", ")}}
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseStartDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
