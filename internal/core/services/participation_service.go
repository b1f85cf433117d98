package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
)

// Notifier receives participation events for background processing.
type Notifier interface {
	Enqueue(evt domain.ParticipationEvent)
}

// PublicListInvalidator drops cached public listings whose counts went stale.
// Implementations log their own failures; a stale listing never fails a join.
type PublicListInvalidator interface {
	InvalidatePublicList(ctx context.Context) error
}

type ParticipationService struct {
	challenges    domain.ChallengeRepository
	participation domain.ParticipationRepository
	notifier      Notifier
	listCache     PublicListInvalidator
	now           func() time.Time
}

func NewParticipationService(challenges domain.ChallengeRepository, participation domain.ParticipationRepository, notifier Notifier, listCache PublicListInvalidator) *ParticipationService {
	return &ParticipationService{
		challenges:    challenges,
		participation: participation,
		notifier:      notifier,
		listCache:     listCache,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Join validates the initial readings and stores them with the new participation.
// A repeated join returns *domain.AlreadyJoinedError with the existing id.
func (s *ParticipationService) Join(ctx context.Context, session domain.Session, challengeID string, values map[string]any) (*domain.UserChallenge, error) {
	challenge, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !challenge.IsJoinable() {
		return nil, domain.ErrChallengeNotOpen
	}

	metrics, err := s.challenges.ListMetrics(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("participation service: failed to load metrics: %w", err)
	}

	recorded, err := domain.BuildFormSchema(metrics, domain.DataInitial).Validate(values)
	if err != nil {
		return nil, err
	}

	uc := domain.NewUserChallenge(session.UserID, challengeID)
	rows := domain.NewMetricRows(uc.ID, domain.DataInitial, recorded)

	if err := s.participation.Join(ctx, uc, rows); err != nil {
		var joined *domain.AlreadyJoinedError
		if errors.As(err, &joined) {
			return nil, joined
		}
		return nil, fmt.Errorf("participation service: failed to join challenge: %w", err)
	}

	if s.listCache != nil {
		_ = s.listCache.InvalidatePublicList(ctx)
	}
	s.notify(domain.NotificationParticipantJoined, uc)

	return uc, nil
}

func (s *ParticipationService) ListMine(ctx context.Context, session domain.Session) ([]domain.MyChallengeCard, error) {
	rows, err := s.participation.ListByUser(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("participation service: failed to list challenges: %w", err)
	}

	now := s.now()
	cards := make([]domain.MyChallengeCard, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, domain.NewMyChallengeCard(r, now))
	}
	return cards, nil
}

func (s *ParticipationService) Dashboard(ctx context.Context, session domain.Session, userChallengeID string) (*domain.Dashboard, error) {
	uc, err := s.owned(ctx, session, userChallengeID)
	if err != nil {
		return nil, err
	}

	challenge, err := s.challenges.GetByID(ctx, uc.ChallengeID)
	if err != nil {
		return nil, fmt.Errorf("participation service: failed to load challenge: %w", err)
	}

	tasks, err := s.challenges.ListTasks(ctx, uc.ChallengeID)
	if err != nil {
		return nil, fmt.Errorf("participation service: failed to load tasks: %w", err)
	}

	metrics, err := s.challenges.ListMetrics(ctx, uc.ChallengeID)
	if err != nil {
		return nil, fmt.Errorf("participation service: failed to load metrics: %w", err)
	}

	if err := s.participation.Touch(ctx, uc.ID, s.now()); err != nil {
		return nil, fmt.Errorf("participation service: failed to record access: %w", err)
	}

	dashboard := &domain.Dashboard{
		UserChallenge:   *uc,
		ChallengeName:   challenge.Name,
		ChallengeImage:  domain.DefaultChallengeImage,
		DurationDays:    challenge.DurationDays,
		ProgressPercent: domain.ProgressPercent(uc.CurrentDay, challenge.DurationDays, uc.ChallengeStatus),
		DailyForm:       domain.BuildFormSchema(metrics, domain.DataDaily),
	}
	if challenge.ImageURL != nil {
		dashboard.ChallengeImage = *challenge.ImageURL
	}
	if !uc.IsCompleted() {
		dashboard.CurrentTask = domain.TaskForDay(tasks, uc.CurrentDay)
	}
	dashboard.DailyDefaults = dashboard.DailyForm.Defaults()

	return dashboard, nil
}

// CompleteTask completes the current day's task and returns the stored state.
func (s *ParticipationService) CompleteTask(ctx context.Context, session domain.Session, userChallengeID string) (*domain.UserChallenge, error) {
	uc, err := s.owned(ctx, session, userChallengeID)
	if err != nil {
		return nil, err
	}

	challenge, err := s.challenges.GetByID(ctx, uc.ChallengeID)
	if err != nil {
		return nil, fmt.Errorf("participation service: failed to load challenge: %w", err)
	}

	tasks, err := s.challenges.ListTasks(ctx, uc.ChallengeID)
	if err != nil {
		return nil, fmt.Errorf("participation service: failed to load tasks: %w", err)
	}

	progress, finished, err := uc.CompleteDay(domain.TaskForDay(tasks, uc.CurrentDay), challenge.DurationDays)
	if err != nil {
		return nil, err
	}

	if err := s.participation.CompleteDay(ctx, uc, progress); err != nil {
		if errors.Is(err, domain.ErrDayAlreadyCompleted) {
			return nil, err
		}
		return nil, fmt.Errorf("participation service: failed to complete task: %w", err)
	}

	if finished {
		s.notify(domain.NotificationChallengeCompleted, uc)
	}

	updated, err := s.participation.GetByID(ctx, uc.ID)
	if err != nil {
		return nil, fmt.Errorf("participation service: failed to reload progress: %w", err)
	}
	return updated, nil
}

func (s *ParticipationService) RecordDaily(ctx context.Context, session domain.Session, userChallengeID string, values map[string]any) ([]domain.UserMetricData, error) {
	uc, err := s.owned(ctx, session, userChallengeID)
	if err != nil {
		return nil, err
	}
	if uc.ChallengeStatus != domain.UserChallengeActive {
		return nil, domain.ErrChallengeNotActive
	}

	recorded, err := s.validatePhase(ctx, uc.ChallengeID, domain.DataDaily, values)
	if err != nil {
		return nil, err
	}

	rows := domain.NewMetricRows(uc.ID, domain.DataDaily, recorded)
	if len(rows) == 0 {
		return rows, nil
	}
	if err := s.participation.InsertMetricData(ctx, rows); err != nil {
		return nil, fmt.Errorf("participation service: failed to save daily metrics: %w", err)
	}
	return rows, nil
}

// RecordFinal stores the closing measurements of a completed challenge and
// returns the refreshed report.
func (s *ParticipationService) RecordFinal(ctx context.Context, session domain.Session, userChallengeID string, values map[string]any) (*domain.Report, error) {
	uc, err := s.owned(ctx, session, userChallengeID)
	if err != nil {
		return nil, err
	}
	if !uc.IsCompleted() {
		return nil, domain.ErrChallengeNotCompleted
	}

	recorded, err := s.validatePhase(ctx, uc.ChallengeID, domain.DataFinal, values)
	if err != nil {
		return nil, err
	}

	rows := domain.NewMetricRows(uc.ID, domain.DataFinal, recorded)
	if len(rows) > 0 {
		if err := s.participation.UpsertMetricData(ctx, rows); err != nil {
			return nil, fmt.Errorf("participation service: failed to save final metrics: %w", err)
		}
	}

	return s.buildReport(ctx, uc)
}

func (s *ParticipationService) Trends(ctx context.Context, session domain.Session, userChallengeID string) ([]domain.MetricSeries, error) {
	uc, err := s.owned(ctx, session, userChallengeID)
	if err != nil {
		return nil, err
	}

	readings, err := s.participation.ListReadings(ctx, uc.ID)
	if err != nil {
		return nil, fmt.Errorf("participation service: failed to load readings: %w", err)
	}
	return domain.GroupMetricSeries(readings), nil
}

func (s *ParticipationService) Report(ctx context.Context, session domain.Session, userChallengeID string) (*domain.Report, error) {
	uc, err := s.owned(ctx, session, userChallengeID)
	if err != nil {
		return nil, err
	}
	return s.buildReport(ctx, uc)
}

func (s *ParticipationService) buildReport(ctx context.Context, uc *domain.UserChallenge) (*domain.Report, error) {
	metrics, err := s.challenges.ListMetrics(ctx, uc.ChallengeID)
	if err != nil {
		return nil, fmt.Errorf("participation service: failed to load metrics: %w", err)
	}

	readings, err := s.participation.ListReadings(ctx, uc.ID, domain.DataInitial, domain.DataFinal)
	if err != nil {
		return nil, fmt.Errorf("participation service: failed to load readings: %w", err)
	}

	data := make([]domain.UserMetricData, 0, len(readings))
	for _, r := range readings {
		data = append(data, r.UserMetricData)
	}

	report := domain.BuildReport(*uc, metrics, data)
	return &report, nil
}

func (s *ParticipationService) validatePhase(ctx context.Context, challengeID string, phase domain.DataType, values map[string]any) ([]domain.RecordedValue, error) {
	metrics, err := s.challenges.ListMetrics(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("participation service: failed to load metrics: %w", err)
	}
	return domain.BuildFormSchema(metrics, phase).Validate(values)
}

// owned loads a participation; one belonging to someone else is reported as missing.
func (s *ParticipationService) owned(ctx context.Context, session domain.Session, id string) (*domain.UserChallenge, error) {
	uc, err := s.participation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserChallengeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("participation service: failed to load participation: %w", err)
	}
	if uc.UserID != session.UserID {
		return nil, domain.ErrUserChallengeNotFound
	}
	return uc, nil
}

func (s *ParticipationService) notify(kind domain.NotificationKind, uc *domain.UserChallenge) {
	if s.notifier == nil {
		return
	}
	s.notifier.Enqueue(domain.ParticipationEvent{
		Kind:            kind,
		ChallengeID:     uc.ChallengeID,
		UserChallengeID: uc.ID,
		ParticipantID:   uc.UserID,
	})
}
