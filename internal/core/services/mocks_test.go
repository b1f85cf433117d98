package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockRevocationStore struct {
	mock.Mock
}

func (m *MockRevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	args := m.Called(ctx, tokenID, until)
	return args.Error(0)
}

func (m *MockRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

type MockChallengeRepository struct {
	mock.Mock
}

func (m *MockChallengeRepository) CreateFull(ctx context.Context, full *domain.FullChallenge) error {
	args := m.Called(ctx, full)
	return args.Error(0)
}

func (m *MockChallengeRepository) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Challenge), args.Error(1)
}

func (m *MockChallengeRepository) GetDetail(ctx context.Context, id string) (*domain.ChallengeDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChallengeDetail), args.Error(1)
}

func (m *MockChallengeRepository) ListPublic(ctx context.Context, filter domain.PublicChallengeFilter) ([]domain.ChallengeSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChallengeSummary), args.Error(1)
}

func (m *MockChallengeRepository) ListTasks(ctx context.Context, challengeID string) ([]domain.DailyTask, error) {
	args := m.Called(ctx, challengeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyTask), args.Error(1)
}

func (m *MockChallengeRepository) ListMetrics(ctx context.Context, challengeID string) ([]domain.ChallengeMetric, error) {
	args := m.Called(ctx, challengeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChallengeMetric), args.Error(1)
}

func (m *MockChallengeRepository) Update(ctx context.Context, challenge *domain.Challenge) error {
	args := m.Called(ctx, challenge)
	return args.Error(0)
}

type MockParticipationRepository struct {
	mock.Mock
}

func (m *MockParticipationRepository) Join(ctx context.Context, uc *domain.UserChallenge, initial []domain.UserMetricData) error {
	args := m.Called(ctx, uc, initial)
	return args.Error(0)
}

func (m *MockParticipationRepository) GetByID(ctx context.Context, id string) (*domain.UserChallenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserChallenge), args.Error(1)
}

func (m *MockParticipationRepository) ListByUser(ctx context.Context, userID string) ([]domain.MyChallengeSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MyChallengeSummary), args.Error(1)
}

func (m *MockParticipationRepository) CompleteDay(ctx context.Context, uc *domain.UserChallenge, progress domain.UserChallengeProgress) error {
	args := m.Called(ctx, uc, progress)
	return args.Error(0)
}

func (m *MockParticipationRepository) InsertMetricData(ctx context.Context, rows []domain.UserMetricData) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockParticipationRepository) UpsertMetricData(ctx context.Context, rows []domain.UserMetricData) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockParticipationRepository) ListReadings(ctx context.Context, userChallengeID string, types ...domain.DataType) ([]domain.MetricReading, error) {
	args := m.Called(ctx, userChallengeID, types)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MetricReading), args.Error(1)
}

func (m *MockParticipationRepository) Touch(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Enqueue(evt domain.ParticipationEvent) {
	m.Called(evt)
}

type MockListInvalidator struct {
	mock.Mock
}

func (m *MockListInvalidator) InvalidatePublicList(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
