package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	userChallengeColumns = `id, user_id, challenge_id, current_day, challenge_status, joined_at, last_accessed_at, completed_at`
	participationTimeout = 5 * time.Second
)

var _ domain.ParticipationRepository = (*PostgresParticipationRepository)(nil)

type PostgresParticipationRepository struct {
	db *sqlx.DB
}

func NewPostgresParticipationRepository(db *sqlx.DB) *PostgresParticipationRepository {
	return &PostgresParticipationRepository{db: db}
}

func (r *PostgresParticipationRepository) Join(ctx context.Context, uc *domain.UserChallenge, initial []domain.UserMetricData) error {
	ctx, cancel := context.WithTimeout(ctx, participationTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin join: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO user_challenges (id, user_id, challenge_id, current_day, challenge_status, joined_at, last_accessed_at, completed_at)
		VALUES (:id, :user_id, :challenge_id, :current_day, :challenge_status, :joined_at, :last_accessed_at, :completed_at)`, uc)
	if err != nil {
		if isUniqueViolation(err) {
			tx.Rollback()
			return r.existingParticipation(ctx, uc.UserID, uc.ChallengeID)
		}
		if isForeignKeyViolation(err) {
			return domain.ErrChallengeNotFound
		}
		return fmt.Errorf("repository: insert participation: %w", err)
	}

	if err := insertMetricRows(ctx, tx, initial); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: commit join: %w", err)
	}
	return nil
}

func (r *PostgresParticipationRepository) existingParticipation(ctx context.Context, userID, challengeID string) error {
	var id string
	err := r.db.GetContext(ctx, &id,
		`SELECT id FROM user_challenges WHERE user_id = $1 AND challenge_id = $2`, userID, challengeID)
	if err != nil {
		return fmt.Errorf("repository: lookup existing participation: %w", err)
	}
	return &domain.AlreadyJoinedError{UserChallengeID: id}
}

func (r *PostgresParticipationRepository) GetByID(ctx context.Context, id string) (*domain.UserChallenge, error) {
	ctx, cancel := context.WithTimeout(ctx, participationTimeout)
	defer cancel()

	var uc domain.UserChallenge
	err := r.db.GetContext(ctx, &uc, `SELECT `+userChallengeColumns+` FROM user_challenges WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, domain.ErrUserChallengeNotFound
		}
		return nil, fmt.Errorf("repository: get participation: %w", err)
	}
	return &uc, nil
}

func (r *PostgresParticipationRepository) ListByUser(ctx context.Context, userID string) ([]domain.MyChallengeSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, participationTimeout)
	defer cancel()

	rows := []domain.MyChallengeSummary{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT c.id, c.name, NULLIF(c.description, '') AS description, c.image_url, c.challenge_type,
		       NULLIF(u.name, '') AS host_name,
		       (SELECT COUNT(*) FROM user_challenges p WHERE p.challenge_id = c.id) AS participant_count,
		       c.duration_days, c.start_date, c.featured,
		       uc.id AS user_challenge_id, uc.current_day, uc.challenge_status
		FROM user_challenges uc
		JOIN challenges c ON c.id = uc.challenge_id
		LEFT JOIN users u ON u.id = c.host_id
		WHERE uc.user_id = $1
		ORDER BY COALESCE(uc.last_accessed_at, uc.joined_at) DESC`, userID)
	if err != nil {
		if isInvalidID(err) {
			return rows, nil
		}
		return nil, fmt.Errorf("repository: list participations: %w", err)
	}
	return rows, nil
}

func (r *PostgresParticipationRepository) CompleteDay(ctx context.Context, uc *domain.UserChallenge, progress domain.UserChallengeProgress) error {
	ctx, cancel := context.WithTimeout(ctx, participationTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin complete day: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE user_challenges
		SET current_day = $1, challenge_status = $2, completed_at = $3
		WHERE id = $4 AND current_day = $5 AND challenge_status = 'active'`,
		uc.CurrentDay, uc.ChallengeStatus, uc.CompletedAt, uc.ID, progress.DayNumber,
	)
	if err != nil {
		return fmt.Errorf("repository: advance participation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: advance participation: %w", err)
	}
	if affected == 0 {
		return domain.ErrDayAlreadyCompleted
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO user_challenge_progress (id, user_challenge_id, task_id, day_number, completed_at)
		VALUES (:id, :user_challenge_id, :task_id, :day_number, :completed_at)`, progress)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDayAlreadyCompleted
		}
		return fmt.Errorf("repository: insert progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: commit complete day: %w", err)
	}
	return nil
}

func (r *PostgresParticipationRepository) InsertMetricData(ctx context.Context, rows []domain.UserMetricData) error {
	if len(rows) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, participationTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin insert metric data: %w", err)
	}
	defer tx.Rollback()

	if err := insertMetricRows(ctx, tx, rows); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PostgresParticipationRepository) UpsertMetricData(ctx context.Context, rows []domain.UserMetricData) error {
	if len(rows) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, participationTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin upsert metric data: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO user_metric_data (id, user_challenge_id, metric_id, data_type, value_number, value_text, recorded_at)
			VALUES (:id, :user_challenge_id, :metric_id, :data_type, :value_number, :value_text, :recorded_at)
			ON CONFLICT (user_challenge_id, metric_id, data_type) WHERE data_type IN ('initial', 'final')
			DO UPDATE SET value_number = EXCLUDED.value_number,
			              value_text   = EXCLUDED.value_text,
			              recorded_at  = EXCLUDED.recorded_at`, row)
		if err != nil {
			return fmt.Errorf("repository: upsert metric %s: %w", row.MetricID, err)
		}
	}
	return tx.Commit()
}

func insertMetricRows(ctx context.Context, tx *sqlx.Tx, rows []domain.UserMetricData) error {
	for _, row := range rows {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO user_metric_data (id, user_challenge_id, metric_id, data_type, value_number, value_text, recorded_at)
			VALUES (:id, :user_challenge_id, :metric_id, :data_type, :value_number, :value_text, :recorded_at)`, row)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.FieldErrors{{Field: row.MetricID, Code: domain.CodeInvalid}}
			}
			if isUniqueViolation(err) {
				return domain.FieldErrors{{Field: row.MetricID, Code: domain.CodeUnique}}
			}
			return fmt.Errorf("repository: insert metric %s: %w", row.MetricID, err)
		}
	}
	return nil
}

func (r *PostgresParticipationRepository) ListReadings(ctx context.Context, userChallengeID string, types ...domain.DataType) ([]domain.MetricReading, error) {
	ctx, cancel := context.WithTimeout(ctx, participationTimeout)
	defer cancel()

	query := `
		SELECT d.id, d.user_challenge_id, d.metric_id, d.data_type, d.value_number, d.value_text, d.recorded_at,
		       m.metric_name, m.metric_type
		FROM user_metric_data d
		JOIN challenge_metrics m ON m.id = d.metric_id
		WHERE d.user_challenge_id = $1`
	args := []any{userChallengeID}

	if len(types) > 0 {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		query += ` AND d.data_type = ANY($2)`
		args = append(args, pq.Array(names))
	}
	query += ` ORDER BY d.recorded_at, d.id`

	readings := []domain.MetricReading{}
	if err := r.db.SelectContext(ctx, &readings, query, args...); err != nil {
		if isInvalidID(err) {
			return readings, nil
		}
		return nil, fmt.Errorf("repository: list readings: %w", err)
	}
	return readings, nil
}

func (r *PostgresParticipationRepository) Touch(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, participationTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `UPDATE user_challenges SET last_accessed_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("repository: touch participation: %w", err)
	}
	return nil
}
