package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotificationParticipantJoined  NotificationKind = "participant_joined"
	NotificationChallengeCompleted NotificationKind = "challenge_completed"
)

type Notification struct {
	ID          string           `json:"id" db:"id"`
	UserID      string           `json:"user_id" db:"user_id"`
	ChallengeID *string          `json:"challenge_id,omitempty" db:"challenge_id"`
	Title       string           `json:"title" db:"title"`
	Content     string           `json:"content" db:"content"`
	MessageType NotificationKind `json:"message_type" db:"message_type"`
	ReadStatus  bool             `json:"read_status" db:"read_status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

// ParticipationEvent is emitted by participation changes for background fan-out.
type ParticipationEvent struct {
	Kind            NotificationKind
	ChallengeID     string
	UserChallengeID string
	ParticipantID   string
}

func NewNotification(userID, challengeID string, kind NotificationKind, title, content string) *Notification {
	n := &Notification{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Content:     content,
		MessageType: kind,
		CreatedAt:   time.Now().UTC(),
	}
	if challengeID != "" {
		n.ChallengeID = &challengeID
	}
	return n
}
