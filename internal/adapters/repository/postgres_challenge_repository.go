package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	challengeColumns = `c.id, c.host_id, c.name, c.slug, c.description, c.duration_days, c.image_url, c.challenge_type, c.start_date, c.status, c.featured, c.created_at, c.updated_at`
	publicListLimit  = 100
	challengeTimeout = 5 * time.Second
)

var _ domain.ChallengeRepository = (*PostgresChallengeRepository)(nil)

type PostgresChallengeRepository struct {
	db *sqlx.DB
}

func NewPostgresChallengeRepository(db *sqlx.DB) *PostgresChallengeRepository {
	return &PostgresChallengeRepository{db: db}
}

// metricRow bridges the text[] column to the domain slice.
type metricRow struct {
	domain.ChallengeMetric
	Frequency pq.StringArray `db:"collection_frequency"`
}

func (m metricRow) toDomain() domain.ChallengeMetric {
	out := m.ChallengeMetric
	out.CollectionFrequency = []string(m.Frequency)
	return out
}

type detailRow struct {
	domain.Challenge
	HostName    sql.NullString `db:"host_name"`
	HostPicture *string        `db:"host_picture"`
}

func (r *PostgresChallengeRepository) CreateFull(ctx context.Context, full *domain.FullChallenge) error {
	ctx, cancel := context.WithTimeout(ctx, challengeTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin create challenge: %w", err)
	}
	defer tx.Rollback()

	c := full.Challenge
	_, err = tx.ExecContext(ctx, `
		INSERT INTO challenges (id, host_id, name, slug, description, duration_days, image_url, challenge_type, start_date, status, featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.HostID, c.Name, c.Slug, c.Description, c.DurationDays, c.ImageURL, c.ChallengeType, c.StartDate, c.Status, c.Featured, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("repository: insert challenge: %w", err)
	}

	for _, t := range full.Tasks {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO daily_tasks (id, challenge_id, day_number, title, description, video_url, resource_url, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.ID, t.ChallengeID, t.DayNumber, t.Title, t.Description, t.VideoURL, t.ResourceURL, t.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.FieldErrors{{Field: "tasks", Code: domain.CodeUnique, Param: fmt.Sprint(t.DayNumber)}}
			}
			return fmt.Errorf("repository: insert task day %d: %w", t.DayNumber, err)
		}
	}

	for i, m := range full.Metrics {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO challenge_metrics (id, challenge_id, metric_name, metric_type, description, collection_frequency, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.ID, m.ChallengeID, m.MetricName, m.MetricType, m.Description, pq.StringArray(m.CollectionFrequency), i, m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: insert metric %q: %w", m.MetricName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: commit create challenge: %w", err)
	}
	return nil
}

func (r *PostgresChallengeRepository) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	ctx, cancel := context.WithTimeout(ctx, challengeTimeout)
	defer cancel()

	var c domain.Challenge
	err := r.db.GetContext(ctx, &c, `SELECT `+challengeColumns+` FROM challenges c WHERE c.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, domain.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("repository: get challenge: %w", err)
	}
	return &c, nil
}

func (r *PostgresChallengeRepository) GetDetail(ctx context.Context, id string) (*domain.ChallengeDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, challengeTimeout)
	defer cancel()

	var row detailRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+challengeColumns+`, NULLIF(u.name, '') AS host_name, u.profile_picture AS host_picture
		FROM challenges c
		LEFT JOIN users u ON u.id = c.host_id
		WHERE c.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, domain.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("repository: get challenge detail: %w", err)
	}

	tasks, err := r.ListTasks(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics, err := r.ListMetrics(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.ChallengeDetail{
		Challenge:   row.Challenge,
		HostName:    row.HostName.String,
		HostPicture: row.HostPicture,
		Tasks:       tasks,
		Metrics:     metrics,
	}, nil
}

func (r *PostgresChallengeRepository) ListPublic(ctx context.Context, filter domain.PublicChallengeFilter) ([]domain.ChallengeSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, challengeTimeout)
	defer cancel()

	conditions := []string{"c.status = $1"}
	args := []any{domain.ChallengePublished}

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(c.name ILIKE $%d OR c.description ILIKE $%d)", n, n))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("c.challenge_type = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.name, NULLIF(c.description, '') AS description, c.image_url, c.challenge_type,
		       NULLIF(u.name, '') AS host_name, COUNT(uc.id) AS participant_count,
		       c.duration_days, c.start_date, c.featured
		FROM challenges c
		LEFT JOIN users u ON u.id = c.host_id
		LEFT JOIN user_challenges uc ON uc.challenge_id = c.id
		WHERE %s
		GROUP BY c.id, u.name
		ORDER BY c.featured DESC, participant_count DESC, c.created_at DESC
		LIMIT %d`, strings.Join(conditions, " AND "), publicListLimit)

	summaries := []domain.ChallengeSummary{}
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, fmt.Errorf("repository: list public challenges: %w", err)
	}
	return summaries, nil
}

func (r *PostgresChallengeRepository) ListTasks(ctx context.Context, challengeID string) ([]domain.DailyTask, error) {
	tasks := []domain.DailyTask{}
	err := r.db.SelectContext(ctx, &tasks, `
		SELECT id, challenge_id, day_number, title, description, video_url, resource_url, created_at
		FROM daily_tasks
		WHERE challenge_id = $1
		ORDER BY day_number`, challengeID)
	if err != nil {
		if isInvalidID(err) {
			return tasks, nil
		}
		return nil, fmt.Errorf("repository: list tasks: %w", err)
	}
	return tasks, nil
}

func (r *PostgresChallengeRepository) ListMetrics(ctx context.Context, challengeID string) ([]domain.ChallengeMetric, error) {
	var rows []metricRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, challenge_id, metric_name, metric_type, description, collection_frequency, created_at
		FROM challenge_metrics
		WHERE challenge_id = $1
		ORDER BY position, created_at`, challengeID)
	if err != nil && !isInvalidID(err) {
		return nil, fmt.Errorf("repository: list metrics: %w", err)
	}

	metrics := make([]domain.ChallengeMetric, 0, len(rows))
	for _, m := range rows {
		metrics = append(metrics, m.toDomain())
	}
	return metrics, nil
}

func (r *PostgresChallengeRepository) Update(ctx context.Context, c *domain.Challenge) error {
	ctx, cancel := context.WithTimeout(ctx, challengeTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE challenges SET
			name = $1, description = $2, duration_days = $3, image_url = $4,
			challenge_type = $5, start_date = $6, status = $7, featured = $8, updated_at = $9
		WHERE id = $10`,
		c.Name, c.Description, c.DurationDays, c.ImageURL,
		c.ChallengeType, c.StartDate, c.Status, c.Featured, c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: update challenge: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: update challenge: %w", err)
	}
	if affected == 0 {
		return domain.ErrChallengeNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
