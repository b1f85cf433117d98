package services

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
)

type DraftService struct {
	drafts     domain.DraftStore
	challenges *ChallengeService
	validator  *domain.FormValidator
}

func NewDraftService(drafts domain.DraftStore, challenges *ChallengeService, validator *domain.FormValidator) *DraftService {
	return &DraftService{
		drafts:     drafts,
		challenges: challenges,
		validator:  validator,
	}
}

// DraftResult is the outcome of a wizard move. ChallengeID is set once the
// draft has been submitted, in which case Draft is the final state.
type DraftResult struct {
	Draft       *domain.ChallengeDraft
	ChallengeID string
}

func (s *DraftService) Start(ctx context.Context, session domain.Session) (*domain.ChallengeDraft, error) {
	if err := session.RequireHost(); err != nil {
		return nil, err
	}

	draft := domain.NewChallengeDraft(session.UserID)
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("draft service: failed to save draft: %w", err)
	}
	return draft, nil
}

func (s *DraftService) Get(ctx context.Context, session domain.Session, id string) (*domain.ChallengeDraft, error) {
	if err := session.RequireHost(); err != nil {
		return nil, err
	}
	return s.drafts.Get(ctx, session.UserID, id)
}

// Update replaces the draft's values. Nothing is validated until Next.
func (s *DraftService) Update(ctx context.Context, session domain.Session, id string, form domain.ChallengeForm) (*domain.ChallengeDraft, error) {
	return s.mutate(ctx, session, id, func(d *domain.ChallengeDraft) error {
		d.ReplaceForm(form)
		return nil
	})
}

func (s *DraftService) Next(ctx context.Context, session domain.Session, id string) (*DraftResult, error) {
	draft, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}

	ready, errs := draft.Next(s.validator)
	if len(errs) > 0 {
		return &DraftResult{Draft: draft}, errs
	}

	if !ready {
		if err := s.drafts.Save(ctx, draft); err != nil {
			return nil, fmt.Errorf("draft service: failed to save draft: %w", err)
		}
		return &DraftResult{Draft: draft}, nil
	}

	full, err := s.challenges.Create(ctx, session, draft.Form)
	if err != nil {
		return &DraftResult{Draft: draft}, err
	}

	// The challenge exists now; a leftover draft simply expires.
	_ = s.drafts.Delete(ctx, session.UserID, id)

	return &DraftResult{Draft: draft, ChallengeID: full.Challenge.ID}, nil
}

func (s *DraftService) Previous(ctx context.Context, session domain.Session, id string) (*domain.ChallengeDraft, error) {
	return s.mutate(ctx, session, id, func(d *domain.ChallengeDraft) error {
		d.Previous()
		return nil
	})
}

func (s *DraftService) AppendTask(ctx context.Context, session domain.Session, id string, task *domain.TaskInput) (*domain.ChallengeDraft, error) {
	return s.mutate(ctx, session, id, func(d *domain.ChallengeDraft) error {
		d.AppendTask(task)
		return nil
	})
}

func (s *DraftService) RemoveTask(ctx context.Context, session domain.Session, id string, index int) (*domain.ChallengeDraft, error) {
	return s.mutate(ctx, session, id, func(d *domain.ChallengeDraft) error {
		return d.RemoveTask(index)
	})
}

func (s *DraftService) AppendMetric(ctx context.Context, session domain.Session, id string, metric *domain.MetricInput) (*domain.ChallengeDraft, error) {
	return s.mutate(ctx, session, id, func(d *domain.ChallengeDraft) error {
		d.AppendMetric(metric)
		return nil
	})
}

func (s *DraftService) RemoveMetric(ctx context.Context, session domain.Session, id string, index int) (*domain.ChallengeDraft, error) {
	return s.mutate(ctx, session, id, func(d *domain.ChallengeDraft) error {
		return d.RemoveMetric(index)
	})
}

func (s *DraftService) Discard(ctx context.Context, session domain.Session, id string) error {
	if _, err := s.Get(ctx, session, id); err != nil {
		return err
	}
	return s.drafts.Delete(ctx, session.UserID, id)
}

func (s *DraftService) mutate(ctx context.Context, session domain.Session, id string, fn func(*domain.ChallengeDraft) error) (*domain.ChallengeDraft, error) {
	draft, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if err := fn(draft); err != nil {
		return nil, err
	}

	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("draft service: failed to save draft: %w", err)
	}
	return draft, nil
}
