package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserChallengeStatus string

const (
	UserChallengeActive    UserChallengeStatus = "active"
	UserChallengeCompleted UserChallengeStatus = "completed"
)

type UserChallenge struct {
	ID              string              `json:"id" db:"id"`
	UserID          string              `json:"user_id" db:"user_id"`
	ChallengeID     string              `json:"challenge_id" db:"challenge_id"`
	CurrentDay      int                 `json:"current_day" db:"current_day"`
	ChallengeStatus UserChallengeStatus `json:"challenge_status" db:"challenge_status"`
	JoinedAt        time.Time           `json:"joined_at" db:"joined_at"`
	LastAccessedAt  *time.Time          `json:"last_accessed_at,omitempty" db:"last_accessed_at"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty" db:"completed_at"`
}

type UserChallengeProgress struct {
	ID              string    `json:"id" db:"id"`
	UserChallengeID string    `json:"user_challenge_id" db:"user_challenge_id"`
	TaskID          string    `json:"task_id" db:"task_id"`
	DayNumber       int       `json:"day_number" db:"day_number"`
	CompletedAt     time.Time `json:"completed_at" db:"completed_at"`
}

func NewUserChallenge(userID, challengeID string) *UserChallenge {
	return &UserChallenge{
		ID:              uuid.NewString(),
		UserID:          userID,
		ChallengeID:     challengeID,
		CurrentDay:      1,
		ChallengeStatus: UserChallengeActive,
		JoinedAt:        time.Now().UTC(),
	}
}

func (uc *UserChallenge) IsCompleted() bool {
	return uc.ChallengeStatus == UserChallengeCompleted
}

// CompleteDay marks the current day's task done and advances the day.
// finished is true only on the call that moves the participation to completed.
func (uc *UserChallenge) CompleteDay(task *DailyTask, durationDays int) (progress UserChallengeProgress, finished bool, err error) {
	if uc.ChallengeStatus != UserChallengeActive {
		return UserChallengeProgress{}, false, ErrChallengeNotActive
	}
	if task == nil || task.DayNumber != uc.CurrentDay {
		return UserChallengeProgress{}, false, ErrNoTaskForDay
	}

	now := time.Now().UTC()
	progress = UserChallengeProgress{
		ID:              uuid.NewString(),
		UserChallengeID: uc.ID,
		TaskID:          task.ID,
		DayNumber:       uc.CurrentDay,
		CompletedAt:     now,
	}

	uc.CurrentDay++
	if uc.CurrentDay > durationDays {
		uc.ChallengeStatus = UserChallengeCompleted
		uc.CompletedAt = &now
		finished = true
	}
	return progress, finished, nil
}
