package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.NotificationRepository = (*PostgresNotificationRepository)(nil)

type PostgresNotificationRepository struct {
	db *sqlx.DB
}

func NewPostgresNotificationRepository(db *sqlx.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO app_notifications (id, user_id, challenge_id, title, content, message_type, read_status, created_at)
		VALUES (:id, :user_id, :challenge_id, :title, :content, :message_type, :read_status, :created_at)`, n)
	if err != nil {
		return fmt.Errorf("repository: insert notification: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	out := []*domain.Notification{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, user_id, challenge_id, title, content, message_type, read_status, created_at
		FROM app_notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		if isInvalidID(err) {
			return out, nil
		}
		return nil, fmt.Errorf("repository: list notifications: %w", err)
	}
	return out, nil
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE app_notifications SET read_status = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if isInvalidID(err) {
			return domain.ErrNotificationNotFound
		}
		return fmt.Errorf("repository: mark notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: mark notification read: %w", err)
	}
	if n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
