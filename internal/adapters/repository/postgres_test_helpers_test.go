package repository

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// setupTestDB connects to the integration database and applies the schema.
// Tests are skipped when no database is reachable.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envOr("DB_USER", "thirtyday"),
		envOr("DB_PASSWORD", "secret"),
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_NAME", "thirtyday"),
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}

	schema, err := os.ReadFile("../../../migrations/001_init.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err, "Failed to apply schema")

	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sqlx.DB, role domain.Role) *domain.User {
	t.Helper()

	user, err := domain.NewUser(uuid.NewString(), fmt.Sprintf("user_%s@example.com", uuid.NewString()), "Tester", role)
	require.NoError(t, err)
	require.NoError(t, user.SetPassword("passwordStrong123"))
	require.NoError(t, NewPostgresUserRepository(db).Create(context.Background(), user))
	return user
}

func testChallengeForm() domain.ChallengeForm {
	form := domain.NewChallengeForm()
	form.Name = "Morning Pages " + uuid.NewString()[:8]
	form.Description = "Write three pages every single morning."
	form.DurationDays = 2
	form.ChallengeType = "Mindfulness"
	form.Tasks = []domain.TaskInput{
		{DayNumber: 2, Title: "Second page"},
		{DayNumber: 1, Title: "First page"},
	}
	form.Metrics = []domain.MetricInput{
		{MetricName: "Mood", MetricType: domain.MetricTypeSlider, CollectionFrequency: []string{"initial", "daily", "final"}},
		{MetricName: "Notes", MetricType: domain.MetricTypeTextArea},
	}
	return form
}
