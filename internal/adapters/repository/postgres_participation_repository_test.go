package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresParticipationRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	challenges := NewPostgresChallengeRepository(db)
	repo := NewPostgresParticipationRepository(db)
	ctx := context.Background()

	host := createTestUser(t, db, domain.RoleHost)
	participant := createTestUser(t, db, domain.RoleParticipant)

	full := testChallengeForm().BuildFullChallenge(host.ID)
	full.Challenge.Status = domain.ChallengePublished
	require.NoError(t, challenges.CreateFull(ctx, full))
	mood := full.Metrics[0]

	uc := domain.NewUserChallenge(participant.ID, full.Challenge.ID)
	initial := domain.NewMetricRows(uc.ID, domain.DataInitial, []domain.RecordedValue{
		{MetricID: mood.ID, Value: domain.NumberValue(4)},
	})

	t.Run("Join stores initial readings", func(t *testing.T) {
		require.NoError(t, repo.Join(ctx, uc, initial))

		readings, err := repo.ListReadings(ctx, uc.ID, domain.DataInitial)
		require.NoError(t, err)
		require.Len(t, readings, 1)
		assert.Equal(t, "Mood", readings[0].MetricName)
		assert.Equal(t, 4.0, *readings[0].ValueNumber)
	})

	t.Run("Second join reports the existing participation", func(t *testing.T) {
		again := domain.NewUserChallenge(participant.ID, full.Challenge.ID)
		err := repo.Join(ctx, again, nil)

		var joined *domain.AlreadyJoinedError
		require.True(t, errors.As(err, &joined))
		assert.Equal(t, uc.ID, joined.UserChallengeID)
		assert.ErrorIs(t, err, domain.ErrAlreadyJoined)
	})

	t.Run("CompleteDay advances once per day", func(t *testing.T) {
		stored, err := repo.GetByID(ctx, uc.ID)
		require.NoError(t, err)

		progress, _, err := stored.CompleteDay(domain.TaskForDay(full.Tasks, 1), full.Challenge.DurationDays)
		require.NoError(t, err)
		require.NoError(t, repo.CompleteDay(ctx, stored, progress))

		assert.ErrorIs(t, repo.CompleteDay(ctx, stored, progress), domain.ErrDayAlreadyCompleted)

		reloaded, err := repo.GetByID(ctx, uc.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, reloaded.CurrentDay)
	})

	t.Run("Final values are replaced, daily values accumulate", func(t *testing.T) {
		daily := domain.NewMetricRows(uc.ID, domain.DataDaily, []domain.RecordedValue{{MetricID: mood.ID, Value: domain.NumberValue(6)}})
		require.NoError(t, repo.InsertMetricData(ctx, daily))
		require.NoError(t, repo.InsertMetricData(ctx, daily[:0]))

		first := domain.NewMetricRows(uc.ID, domain.DataFinal, []domain.RecordedValue{{MetricID: mood.ID, Value: domain.NumberValue(7)}})
		require.NoError(t, repo.UpsertMetricData(ctx, first))
		second := domain.NewMetricRows(uc.ID, domain.DataFinal, []domain.RecordedValue{{MetricID: mood.ID, Value: domain.NumberValue(9)}})
		require.NoError(t, repo.UpsertMetricData(ctx, second))

		finals, err := repo.ListReadings(ctx, uc.ID, domain.DataFinal)
		require.NoError(t, err)
		require.Len(t, finals, 1)
		assert.Equal(t, 9.0, *finals[0].ValueNumber)

		all, err := repo.ListReadings(ctx, uc.ID)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("ListByUser and Touch", func(t *testing.T) {
		require.NoError(t, repo.Touch(ctx, uc.ID, time.Now().UTC()))

		mine, err := repo.ListByUser(ctx, participant.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, uc.ID, mine[0].UserChallengeID)
		assert.Equal(t, 1, domain.ParticipantCount(mine[0].ParticipantCount))

		stored, err := repo.GetByID(ctx, uc.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.LastAccessedAt)
	})

	t.Run("Unknown participation", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrUserChallengeNotFound)
	})
}
