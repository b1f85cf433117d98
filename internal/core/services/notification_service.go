package services

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
)

const notificationPageSize = 50

type NotificationService struct {
	repo domain.NotificationRepository
}

func NewNotificationService(repo domain.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) List(ctx context.Context, session domain.Session) ([]*domain.Notification, error) {
	list, err := s.repo.ListByUser(ctx, session.UserID, notificationPageSize)
	if err != nil {
		return nil, fmt.Errorf("notification service: failed to list notifications: %w", err)
	}
	return list, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, session domain.Session, id string) error {
	return s.repo.MarkRead(ctx, id, session.UserID)
}
