package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
)

type ChallengeService struct {
	repo      domain.ChallengeRepository
	validator *domain.FormValidator
	now       func() time.Time
}

func NewChallengeService(repo domain.ChallengeRepository, validator *domain.FormValidator) *ChallengeService {
	return &ChallengeService{
		repo:      repo,
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *ChallengeService) ListPublic(ctx context.Context, filter domain.PublicChallengeFilter) (domain.PublicChallenges, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Type = strings.TrimSpace(filter.Type)

	rows, err := s.repo.ListPublic(ctx, filter)
	if err != nil {
		return domain.PublicChallenges{}, fmt.Errorf("challenge service: failed to list challenges: %w", err)
	}
	return domain.SplitFeatured(rows, s.now()), nil
}

// GetDetail returns a published challenge, or any challenge to its own host.
func (s *ChallengeService) GetDetail(ctx context.Context, viewerID, id string) (*domain.ChallengeDetail, error) {
	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	if !detail.IsJoinable() && detail.HostID != viewerID {
		return nil, domain.ErrChallengeNotFound
	}

	detail.DaysRemaining = domain.DaysRemaining(detail.StartDate, s.now())
	if detail.HostName == "" {
		detail.HostName = domain.DefaultHostName
	}
	return detail, nil
}

// Create validates the whole form and persists the challenge in one transaction.
func (s *ChallengeService) Create(ctx context.Context, session domain.Session, form domain.ChallengeForm) (*domain.FullChallenge, error) {
	if err := session.RequireHost(); err != nil {
		return nil, err
	}

	if errs := s.validator.ValidateAll(form); len(errs) > 0 {
		return nil, errs
	}

	full := form.BuildFullChallenge(session.UserID)
	if err := s.repo.CreateFull(ctx, full); err != nil {
		return nil, fmt.Errorf("challenge service: failed to create challenge: %w", err)
	}
	return full, nil
}

func (s *ChallengeService) Update(ctx context.Context, session domain.Session, id string, info domain.BasicInfo) (*domain.Challenge, error) {
	challenge, err := s.ownedChallenge(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if errs := s.validator.ValidateBasicInfo(info); len(errs) > 0 {
		return nil, errs
	}
	info = domain.ChallengeForm{BasicInfo: info}.Normalize().BasicInfo

	tasks, err := s.repo.ListTasks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("challenge service: failed to load tasks: %w", err)
	}
	if last := lastTaskDay(tasks); last > info.DurationDays {
		return nil, domain.FieldErrors{{Field: "duration_days", Code: domain.CodeMin, Param: strconv.Itoa(last)}}
	}
	if challenge.Status == domain.ChallengePublished {
		if err := domain.TaskCoverageError("duration_days", tasks, info.DurationDays); err != nil {
			return nil, err
		}
	}

	challenge.ApplyBasicInfo(info)
	if err := s.repo.Update(ctx, challenge); err != nil {
		return nil, fmt.Errorf("challenge service: failed to update challenge: %w", err)
	}
	return challenge, nil
}

func (s *ChallengeService) ChangeStatus(ctx context.Context, session domain.Session, id string, status domain.ChallengeStatus) (*domain.Challenge, error) {
	challenge, err := s.ownedChallenge(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if err := challenge.TransitionTo(status); err != nil {
		return nil, err
	}

	// A published challenge must be completable day by day.
	if status == domain.ChallengePublished {
		tasks, err := s.repo.ListTasks(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("challenge service: failed to load tasks: %w", err)
		}
		if err := domain.TaskCoverageError("tasks", tasks, challenge.DurationDays); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, challenge); err != nil {
		return nil, fmt.Errorf("challenge service: failed to change status: %w", err)
	}
	return challenge, nil
}

// JoinForm describes the initial measurements asked when joining.
func (s *ChallengeService) JoinForm(ctx context.Context, challengeID string) (*domain.JoinForm, error) {
	challenge, err := s.repo.GetByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !challenge.IsJoinable() {
		return nil, domain.ErrChallengeNotOpen
	}

	metrics, err := s.repo.ListMetrics(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("challenge service: failed to load metrics: %w", err)
	}

	schema := domain.BuildFormSchema(metrics, domain.DataInitial)
	return &domain.JoinForm{
		ChallengeID: challengeID,
		Schema:      schema,
		Defaults:    schema.Defaults(),
	}, nil
}

func (s *ChallengeService) ownedChallenge(ctx context.Context, session domain.Session, id string) (*domain.Challenge, error) {
	if err := session.RequireHost(); err != nil {
		return nil, err
	}

	challenge, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrChallengeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("challenge service: failed to load challenge: %w", err)
	}

	if challenge.HostID != session.UserID {
		return nil, domain.ErrForbidden
	}
	return challenge, nil
}

func lastTaskDay(tasks []domain.DailyTask) int {
	last := 0
	for _, t := range tasks {
		if t.DayNumber > last {
			last = t.DayNumber
		}
	}
	return last
}
