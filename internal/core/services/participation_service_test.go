package services

import (
	"context"
	"testing"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type participationFixture struct {
	svc           *ParticipationService
	challenges    *MockChallengeRepository
	participation *MockParticipationRepository
	notifier      *MockNotifier
	listCache     *MockListInvalidator
}

func newParticipationFixture() *participationFixture {
	f := &participationFixture{
		challenges:    new(MockChallengeRepository),
		participation: new(MockParticipationRepository),
		notifier:      new(MockNotifier),
		listCache:     new(MockListInvalidator),
	}
	f.svc = NewParticipationService(f.challenges, f.participation, f.notifier, f.listCache)
	return f
}

var challengeMetrics = []domain.ChallengeMetric{
	{ID: "weight", MetricName: "Weight", MetricType: "number_input", CollectionFrequency: []string{"initial", "final"}},
	{ID: "mood", MetricName: "Mood", MetricType: "slider_1_10", CollectionFrequency: []string{"daily"}},
	{ID: "notes", MetricName: "Notes", MetricType: "text_area", CollectionFrequency: []string{"initial"}},
}

var challengeTasks = []domain.DailyTask{
	{ID: "t1", DayNumber: 1, Title: "Day one"},
	{ID: "t2", DayNumber: 2, Title: "Day two"},
}

func publishedChallenge() *domain.Challenge {
	return &domain.Challenge{ID: "c1", HostID: "host-1", Name: "Two Days", DurationDays: 2, Status: domain.ChallengePublished}
}

func TestParticipationService_Join(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: stores participation with initial readings", func(t *testing.T) {
		f := newParticipationFixture()
		f.challenges.On("GetByID", ctx, "c1").Return(publishedChallenge(), nil)
		f.challenges.On("ListMetrics", ctx, "c1").Return(challengeMetrics, nil)
		f.participation.On("Join", ctx, mock.AnythingOfType("*domain.UserChallenge"), mock.MatchedBy(func(rows []domain.UserMetricData) bool {
			return len(rows) == 1 && rows[0].MetricID == "weight" && *rows[0].ValueNumber == 81.2 && rows[0].DataType == domain.DataInitial
		})).Return(nil)
		f.listCache.On("InvalidatePublicList", ctx).Return(nil)
		f.notifier.On("Enqueue", mock.MatchedBy(func(evt domain.ParticipationEvent) bool {
			return evt.Kind == domain.NotificationParticipantJoined && evt.ParticipantID == "user-1"
		})).Return()

		uc, err := f.svc.Join(ctx, participantSession, "c1", map[string]any{"weight": "81.2"})
		require.NoError(t, err)
		assert.Equal(t, 1, uc.CurrentDay)
		assert.Equal(t, domain.UserChallengeActive, uc.ChallengeStatus)

		f.participation.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
		f.listCache.AssertExpectations(t)
	})

	t.Run("Duplicate join reports the existing participation", func(t *testing.T) {
		f := newParticipationFixture()
		f.challenges.On("GetByID", ctx, "c1").Return(publishedChallenge(), nil)
		f.challenges.On("ListMetrics", ctx, "c1").Return(challengeMetrics, nil)
		f.participation.On("Join", ctx, mock.Anything, mock.Anything).Return(&domain.AlreadyJoinedError{UserChallengeID: "uc-old"})

		_, err := f.svc.Join(ctx, participantSession, "c1", map[string]any{"weight": 80})

		var joined *domain.AlreadyJoinedError
		require.ErrorAs(t, err, &joined)
		assert.Equal(t, "uc-old", joined.UserChallengeID)
		f.notifier.AssertNotCalled(t, "Enqueue", mock.Anything)
	})

	t.Run("Invalid initial values block the join", func(t *testing.T) {
		f := newParticipationFixture()
		f.challenges.On("GetByID", ctx, "c1").Return(publishedChallenge(), nil)
		f.challenges.On("ListMetrics", ctx, "c1").Return(challengeMetrics, nil)

		_, err := f.svc.Join(ctx, participantSession, "c1", map[string]any{"weight": ""})
		assert.ErrorIs(t, err, domain.ErrValidation)
		f.participation.AssertNotCalled(t, "Join", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unpublished challenges cannot be joined", func(t *testing.T) {
		f := newParticipationFixture()
		c := publishedChallenge()
		c.Status = domain.ChallengePending
		f.challenges.On("GetByID", ctx, "c1").Return(c, nil)

		_, err := f.svc.Join(ctx, participantSession, "c1", nil)
		assert.ErrorIs(t, err, domain.ErrChallengeNotOpen)
	})
}

func TestParticipationService_CompleteTask(t *testing.T) {
	ctx := context.Background()

	t.Run("Advances and re-reads the stored row", func(t *testing.T) {
		f := newParticipationFixture()
		uc := &domain.UserChallenge{ID: "uc1", UserID: "user-1", ChallengeID: "c1", CurrentDay: 1, ChallengeStatus: domain.UserChallengeActive}
		stored := &domain.UserChallenge{ID: "uc1", UserID: "user-1", ChallengeID: "c1", CurrentDay: 2, ChallengeStatus: domain.UserChallengeActive}

		f.participation.On("GetByID", ctx, "uc1").Return(uc, nil).Once()
		f.participation.On("GetByID", ctx, "uc1").Return(stored, nil).Once()
		f.challenges.On("GetByID", ctx, "c1").Return(publishedChallenge(), nil)
		f.challenges.On("ListTasks", ctx, "c1").Return(challengeTasks, nil)
		f.participation.On("CompleteDay", ctx, uc, mock.MatchedBy(func(p domain.UserChallengeProgress) bool {
			return p.DayNumber == 1 && p.TaskID == "t1"
		})).Return(nil)

		got, err := f.svc.CompleteTask(ctx, participantSession, "uc1")
		require.NoError(t, err)
		assert.Equal(t, 2, got.CurrentDay)
		f.notifier.AssertNotCalled(t, "Enqueue", mock.Anything)
	})

	t.Run("Last day completes and notifies once", func(t *testing.T) {
		f := newParticipationFixture()
		uc := &domain.UserChallenge{ID: "uc1", UserID: "user-1", ChallengeID: "c1", CurrentDay: 2, ChallengeStatus: domain.UserChallengeActive}

		f.participation.On("GetByID", ctx, "uc1").Return(uc, nil)
		f.challenges.On("GetByID", ctx, "c1").Return(publishedChallenge(), nil)
		f.challenges.On("ListTasks", ctx, "c1").Return(challengeTasks, nil)
		f.participation.On("CompleteDay", ctx, uc, mock.Anything).Return(nil)
		f.notifier.On("Enqueue", mock.MatchedBy(func(evt domain.ParticipationEvent) bool {
			return evt.Kind == domain.NotificationChallengeCompleted
		})).Return().Once()

		got, err := f.svc.CompleteTask(ctx, participantSession, "uc1")
		require.NoError(t, err)
		assert.Equal(t, domain.UserChallengeCompleted, got.ChallengeStatus)
		f.notifier.AssertExpectations(t)
	})

	t.Run("Concurrent completion is rejected", func(t *testing.T) {
		f := newParticipationFixture()
		uc := &domain.UserChallenge{ID: "uc1", UserID: "user-1", ChallengeID: "c1", CurrentDay: 1, ChallengeStatus: domain.UserChallengeActive}

		f.participation.On("GetByID", ctx, "uc1").Return(uc, nil)
		f.challenges.On("GetByID", ctx, "c1").Return(publishedChallenge(), nil)
		f.challenges.On("ListTasks", ctx, "c1").Return(challengeTasks, nil)
		f.participation.On("CompleteDay", ctx, uc, mock.Anything).Return(domain.ErrDayAlreadyCompleted)

		_, err := f.svc.CompleteTask(ctx, participantSession, "uc1")
		assert.ErrorIs(t, err, domain.ErrDayAlreadyCompleted)
	})

	t.Run("Someone else's participation is not found", func(t *testing.T) {
		f := newParticipationFixture()
		f.participation.On("GetByID", ctx, "uc1").Return(&domain.UserChallenge{ID: "uc1", UserID: "stranger"}, nil)

		_, err := f.svc.CompleteTask(ctx, participantSession, "uc1")
		assert.ErrorIs(t, err, domain.ErrUserChallengeNotFound)
	})
}

func TestParticipationService_Metrics(t *testing.T) {
	ctx := context.Background()
	active := &domain.UserChallenge{ID: "uc1", UserID: "user-1", ChallengeID: "c1", CurrentDay: 2, ChallengeStatus: domain.UserChallengeActive}
	completed := &domain.UserChallenge{ID: "uc2", UserID: "user-1", ChallengeID: "c1", CurrentDay: 3, ChallengeStatus: domain.UserChallengeCompleted}

	t.Run("Daily values are validated and inserted", func(t *testing.T) {
		f := newParticipationFixture()
		f.participation.On("GetByID", ctx, "uc1").Return(active, nil)
		f.challenges.On("ListMetrics", ctx, "c1").Return(challengeMetrics, nil)
		f.participation.On("InsertMetricData", ctx, mock.MatchedBy(func(rows []domain.UserMetricData) bool {
			return len(rows) == 1 && rows[0].MetricID == "mood" && rows[0].DataType == domain.DataDaily
		})).Return(nil)

		rows, err := f.svc.RecordDaily(ctx, participantSession, "uc1", map[string]any{"mood": 7})
		require.NoError(t, err)
		assert.Len(t, rows, 1)

		_, err = f.svc.RecordDaily(ctx, participantSession, "uc1", map[string]any{"mood": 12})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Final values need a completed challenge", func(t *testing.T) {
		f := newParticipationFixture()
		f.participation.On("GetByID", ctx, "uc1").Return(active, nil)

		_, err := f.svc.RecordFinal(ctx, participantSession, "uc1", map[string]any{"weight": 70})
		assert.ErrorIs(t, err, domain.ErrChallengeNotCompleted)
	})

	t.Run("Final values are upserted and the report returned", func(t *testing.T) {
		f := newParticipationFixture()
		initial, final := 80.0, 75.0
		f.participation.On("GetByID", ctx, "uc2").Return(completed, nil)
		f.challenges.On("ListMetrics", ctx, "c1").Return(challengeMetrics, nil)
		f.participation.On("UpsertMetricData", ctx, mock.Anything).Return(nil)
		f.participation.On("ListReadings", ctx, "uc2", []domain.DataType{domain.DataInitial, domain.DataFinal}).Return([]domain.MetricReading{
			{UserMetricData: domain.UserMetricData{MetricID: "weight", DataType: domain.DataInitial, ValueNumber: &initial}},
			{UserMetricData: domain.UserMetricData{MetricID: "weight", DataType: domain.DataFinal, ValueNumber: &final}},
		}, nil)

		report, err := f.svc.RecordFinal(ctx, participantSession, "uc2", map[string]any{"weight": 75})
		require.NoError(t, err)
		require.Len(t, report.Entries, 1)
		assert.Equal(t, -5.0, *report.Entries[0].Change)
		assert.False(t, report.FinalPending)
		assert.Nil(t, report.FinalForm)
	})

	t.Run("Trends group readings by metric", func(t *testing.T) {
		f := newParticipationFixture()
		a, b := 4.0, 6.0
		f.participation.On("GetByID", ctx, "uc1").Return(active, nil)
		f.participation.On("ListReadings", ctx, "uc1", []domain.DataType(nil)).Return([]domain.MetricReading{
			{UserMetricData: domain.UserMetricData{MetricID: "mood", ValueNumber: &a}},
			{UserMetricData: domain.UserMetricData{MetricID: "mood", ValueNumber: &b}},
		}, nil)

		series, err := f.svc.Trends(ctx, participantSession, "uc1")
		require.NoError(t, err)
		require.Len(t, series, 1)
		assert.Len(t, series[0].Points, 2)
	})
}

func TestParticipationService_OmittedTextMetric(t *testing.T) {
	ctx := context.Background()
	metrics := []domain.ChallengeMetric{
		{ID: "mood", MetricName: "Mood", MetricType: "slider_1_10", CollectionFrequency: []string{"initial", "final"}},
		{ID: "notes", MetricName: "Notes", MetricType: "text_area", CollectionFrequency: []string{"daily", "final"}},
	}
	active := &domain.UserChallenge{ID: "uc1", UserID: "user-1", ChallengeID: "c1", CurrentDay: 2, ChallengeStatus: domain.UserChallengeActive}
	completed := &domain.UserChallenge{ID: "uc2", UserID: "user-1", ChallengeID: "c1", CurrentDay: 3, ChallengeStatus: domain.UserChallengeCompleted}

	t.Run("Daily submission without text stores nothing", func(t *testing.T) {
		f := newParticipationFixture()
		f.participation.On("GetByID", ctx, "uc1").Return(active, nil)
		f.challenges.On("ListMetrics", ctx, "c1").Return(metrics, nil)

		rows, err := f.svc.RecordDaily(ctx, participantSession, "uc1", map[string]any{"notes": "  "})
		require.NoError(t, err)
		assert.Empty(t, rows)
		f.participation.AssertNotCalled(t, "InsertMetricData", mock.Anything, mock.Anything)
	})

	t.Run("Final without text keeps the report pending", func(t *testing.T) {
		f := newParticipationFixture()
		moodInitial, moodFinal := 3.0, 8.0
		f.participation.On("GetByID", ctx, "uc2").Return(completed, nil)
		f.challenges.On("ListMetrics", ctx, "c1").Return(metrics, nil)
		f.participation.On("UpsertMetricData", ctx, mock.MatchedBy(func(rows []domain.UserMetricData) bool {
			return len(rows) == 1 && rows[0].MetricID == "mood" && rows[0].DataType == domain.DataFinal
		})).Return(nil)
		f.participation.On("ListReadings", ctx, "uc2", []domain.DataType{domain.DataInitial, domain.DataFinal}).Return([]domain.MetricReading{
			{UserMetricData: domain.UserMetricData{MetricID: "mood", DataType: domain.DataInitial, ValueNumber: &moodInitial}},
			{UserMetricData: domain.UserMetricData{MetricID: "mood", DataType: domain.DataFinal, ValueNumber: &moodFinal}},
			{UserMetricData: domain.UserMetricData{MetricID: "notes", DataType: domain.DataFinal}},
		}, nil)

		report, err := f.svc.RecordFinal(ctx, participantSession, "uc2", map[string]any{"mood": 8})
		require.NoError(t, err)
		require.Len(t, report.Entries, 2)
		assert.Equal(t, 5.0, *report.Entries[0].Change)
		assert.Nil(t, report.Entries[1].Final)
		assert.True(t, report.FinalPending)
		require.NotNil(t, report.FinalForm)
		f.participation.AssertExpectations(t)
	})

	t.Run("Trends skip empty readings", func(t *testing.T) {
		f := newParticipationFixture()
		f.participation.On("GetByID", ctx, "uc1").Return(active, nil)
		f.participation.On("ListReadings", ctx, "uc1", []domain.DataType(nil)).Return([]domain.MetricReading{
			{UserMetricData: domain.UserMetricData{MetricID: "notes", DataType: domain.DataDaily}, MetricName: "Notes"},
		}, nil)

		series, err := f.svc.Trends(ctx, participantSession, "uc1")
		require.NoError(t, err)
		assert.Empty(t, series)
	})
}

func TestParticipationService_Dashboard(t *testing.T) {
	ctx := context.Background()
	f := newParticipationFixture()
	uc := &domain.UserChallenge{ID: "uc1", UserID: "user-1", ChallengeID: "c1", CurrentDay: 2, ChallengeStatus: domain.UserChallengeActive}

	f.participation.On("GetByID", ctx, "uc1").Return(uc, nil)
	f.challenges.On("GetByID", ctx, "c1").Return(publishedChallenge(), nil)
	f.challenges.On("ListTasks", ctx, "c1").Return(challengeTasks, nil)
	f.challenges.On("ListMetrics", ctx, "c1").Return(challengeMetrics, nil)
	f.participation.On("Touch", ctx, "uc1", mock.Anything).Return(nil)

	d, err := f.svc.Dashboard(ctx, participantSession, "uc1")
	require.NoError(t, err)
	require.NotNil(t, d.CurrentTask)
	assert.Equal(t, "t2", d.CurrentTask.ID)
	assert.Equal(t, 50, d.ProgressPercent)
	assert.Equal(t, domain.DefaultChallengeImage, d.ChallengeImage)
	require.Len(t, d.DailyForm.Fields, 1)
	assert.Equal(t, 5.0, d.DailyDefaults["mood"])
}

func TestParticipationService_ListMine(t *testing.T) {
	ctx := context.Background()
	f := newParticipationFixture()

	f.participation.On("ListByUser", ctx, "user-1").Return([]domain.MyChallengeSummary{
		{ChallengeSummary: domain.ChallengeSummary{ID: "c1", Name: "Two Days", DurationDays: 2}, UserChallengeID: "uc1", CurrentDay: 2, ChallengeStatus: domain.UserChallengeActive},
	}, nil)

	cards, err := f.svc.ListMine(ctx, participantSession)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "uc1", cards[0].UserChallengeID)
	assert.Equal(t, 50, cards[0].ProgressPercent)
}
