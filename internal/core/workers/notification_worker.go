package workers

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"go.uber.org/zap"
)

type ChallengeRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Challenge, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
}

const queueSize = 100

// NotificationWorker turns participation events into stored notifications
// off the request path.
type NotificationWorker struct {
	challengeRepo    ChallengeRepository
	userRepo         UserRepository
	notificationRepo NotificationRepository
	jobs             chan domain.ParticipationEvent
	logger           *zap.Logger
}

func NewNotificationWorker(cRepo ChallengeRepository, uRepo UserRepository, nRepo NotificationRepository, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		challengeRepo:    cRepo,
		userRepo:         uRepo,
		notificationRepo: nRepo,
		jobs:             make(chan domain.ParticipationEvent, queueSize),
		logger:           logger.Named("notification_worker"),
	}
}

func (w *NotificationWorker) Start(ctx context.Context) {
	go func() {
		w.logger.Info("Notification worker started")
		for {
			select {
			case evt := <-w.jobs:
				if err := w.processJob(ctx, evt); err != nil {
					w.logger.Error("Failed to process participation event",
						zap.String("kind", string(evt.Kind)),
						zap.String("user_challenge_id", evt.UserChallengeID),
						zap.Error(err),
					)
				}
			case <-ctx.Done():
				w.logger.Info("Notification worker shutting down")
				return
			}
		}
	}()
}

func (w *NotificationWorker) Enqueue(evt domain.ParticipationEvent) {
	select {
	case w.jobs <- evt:
	default:
		w.logger.Warn("Notification queue full, dropping event",
			zap.String("kind", string(evt.Kind)),
			zap.String("user_challenge_id", evt.UserChallengeID),
		)
	}
}

func (w *NotificationWorker) processJob(ctx context.Context, evt domain.ParticipationEvent) error {
	challenge, err := w.challengeRepo.GetByID(ctx, evt.ChallengeID)
	if err != nil {
		return fmt.Errorf("fetching challenge %s: %w", evt.ChallengeID, err)
	}

	participant := "A participant"
	if user, err := w.userRepo.GetByID(ctx, evt.ParticipantID); err == nil {
		participant = user.DisplayName()
	} else {
		w.logger.Warn("Participant lookup failed", zap.String("user_id", evt.ParticipantID), zap.Error(err))
	}

	var batch []*domain.Notification
	switch evt.Kind {
	case domain.NotificationParticipantJoined:
		if challenge.HostID != evt.ParticipantID {
			batch = append(batch, domain.NewNotification(challenge.HostID, challenge.ID, evt.Kind,
				"New participant",
				fmt.Sprintf("%s joined %s.", participant, challenge.Name)))
		}
	case domain.NotificationChallengeCompleted:
		batch = append(batch, domain.NewNotification(evt.ParticipantID, challenge.ID, evt.Kind,
			"Challenge completed",
			fmt.Sprintf("You completed %s. Record your final results to see your progress.", challenge.Name)))
		if challenge.HostID != evt.ParticipantID {
			batch = append(batch, domain.NewNotification(challenge.HostID, challenge.ID, evt.Kind,
				"Participant finished",
				fmt.Sprintf("%s completed %s.", participant, challenge.Name)))
		}
	default:
		return fmt.Errorf("unknown event kind %q", evt.Kind)
	}

	for _, n := range batch {
		if err := w.notificationRepo.Create(ctx, n); err != nil {
			return fmt.Errorf("storing notification for %s: %w", n.UserID, err)
		}
	}

	w.logger.Debug("Notifications recorded", zap.String("kind", string(evt.Kind)), zap.Int("count", len(batch)))
	return nil
}
