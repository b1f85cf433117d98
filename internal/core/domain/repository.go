package domain

import (
	"context"
	"time"
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type PublicChallengeFilter struct {
	Search string
	Type   string
}

type ChallengeRepository interface {
	// CreateFull persists a challenge with its tasks and metrics in one transaction.
	CreateFull(ctx context.Context, full *FullChallenge) error

	GetByID(ctx context.Context, id string) (*Challenge, error)

	// GetDetail loads a challenge with its host name, tasks ordered by day and metrics.
	GetDetail(ctx context.Context, id string) (*ChallengeDetail, error)

	// ListPublic returns published challenges matching the filter, with participant counts.
	ListPublic(ctx context.Context, filter PublicChallengeFilter) ([]ChallengeSummary, error)

	ListTasks(ctx context.Context, challengeID string) ([]DailyTask, error)

	ListMetrics(ctx context.Context, challengeID string) ([]ChallengeMetric, error)

	Update(ctx context.Context, challenge *Challenge) error
}

type ParticipationRepository interface {
	// Join inserts the participation and its initial readings atomically.
	// A second join of the same challenge fails with *AlreadyJoinedError.
	Join(ctx context.Context, uc *UserChallenge, initial []UserMetricData) error

	GetByID(ctx context.Context, id string) (*UserChallenge, error)

	ListByUser(ctx context.Context, userID string) ([]MyChallengeSummary, error)

	// CompleteDay stores the progress row and the advanced state only if the
	// stored current day still equals progress.DayNumber; otherwise ErrDayAlreadyCompleted.
	CompleteDay(ctx context.Context, uc *UserChallenge, progress UserChallengeProgress) error

	InsertMetricData(ctx context.Context, rows []UserMetricData) error

	// UpsertMetricData replaces existing rows with the same participation, metric and data type.
	UpsertMetricData(ctx context.Context, rows []UserMetricData) error

	// ListReadings returns readings joined with their metric, ordered by recorded time.
	ListReadings(ctx context.Context, userChallengeID string, types ...DataType) ([]MetricReading, error)

	Touch(ctx context.Context, id string, at time.Time) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

// DraftStore keeps wizard drafts between requests.
type DraftStore interface {
	Save(ctx context.Context, draft *ChallengeDraft) error
	Get(ctx context.Context, hostID, id string) (*ChallengeDraft, error)
	Delete(ctx context.Context, hostID, id string) error
}

// TokenRevocationStore remembers logged-out token ids until they expire.
type TokenRevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
