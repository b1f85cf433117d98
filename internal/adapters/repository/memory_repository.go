package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
)

// InMemoryStore backs the in-memory repositories. They share one store so that
// listings can join users, challenges and participations the way SQL does.
type InMemoryStore struct {
	mu sync.RWMutex

	users          map[string]*domain.User
	challenges     map[string]*domain.Challenge
	tasks          map[string][]domain.DailyTask
	metrics        map[string][]domain.ChallengeMetric
	participations map[string]*domain.UserChallenge
	progress       map[string][]domain.UserChallengeProgress
	metricData     []domain.UserMetricData
	notifications  []*domain.Notification
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:          make(map[string]*domain.User),
		challenges:     make(map[string]*domain.Challenge),
		tasks:          make(map[string][]domain.DailyTask),
		metrics:        make(map[string][]domain.ChallengeMetric),
		participations: make(map[string]*domain.UserChallenge),
		progress:       make(map[string][]domain.UserChallengeProgress),
	}
}

func (s *InMemoryStore) Users() *InMemoryUserRepository {
	return &InMemoryUserRepository{s: s}
}

func (s *InMemoryStore) Challenges() *InMemoryChallengeRepository {
	return &InMemoryChallengeRepository{s: s}
}

func (s *InMemoryStore) Participation() *InMemoryParticipationRepository {
	return &InMemoryParticipationRepository{s: s}
}

func (s *InMemoryStore) Notifications() *InMemoryNotificationRepository {
	return &InMemoryNotificationRepository{s: s}
}

func (s *InMemoryStore) participantCount(challengeID string) int64 {
	var n int64
	for _, uc := range s.participations {
		if uc.ChallengeID == challengeID {
			n++
		}
	}
	return n
}

func (s *InMemoryStore) summary(c *domain.Challenge) domain.ChallengeSummary {
	sum := domain.ChallengeSummary{
		ID:               c.ID,
		Name:             c.Name,
		ImageURL:         c.ImageURL,
		ChallengeType:    c.ChallengeType,
		ParticipantCount: s.participantCount(c.ID),
		DurationDays:     c.DurationDays,
		StartDate:        c.StartDate,
		Featured:         c.Featured,
	}
	if c.Description != "" {
		d := c.Description
		sum.Description = &d
	}
	if u, ok := s.users[c.HostID]; ok && u.Name != "" {
		name := u.Name
		sum.HostName = &name
	}
	return sum
}

type InMemoryUserRepository struct {
	s *InMemoryStore
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type InMemoryChallengeRepository struct {
	s *InMemoryStore
}

func (r *InMemoryChallengeRepository) CreateFull(ctx context.Context, full *domain.FullChallenge) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[full.Challenge.HostID]; !ok {
		return domain.ErrUserNotFound
	}
	c := full.Challenge
	r.s.challenges[c.ID] = &c
	r.s.tasks[c.ID] = append([]domain.DailyTask(nil), full.Tasks...)
	r.s.metrics[c.ID] = append([]domain.ChallengeMetric(nil), full.Metrics...)
	return nil
}

func (r *InMemoryChallengeRepository) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.challenges[id]
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryChallengeRepository) GetDetail(ctx context.Context, id string) (*domain.ChallengeDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.challenges[id]
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}
	detail := &domain.ChallengeDetail{
		Challenge: *c,
		Tasks:     r.sortedTasks(id),
		Metrics:   append([]domain.ChallengeMetric{}, r.s.metrics[id]...),
	}
	if u, ok := r.s.users[c.HostID]; ok {
		detail.HostName = u.Name
		detail.HostPicture = u.ProfilePicture
	}
	return detail, nil
}

func (r *InMemoryChallengeRepository) sortedTasks(challengeID string) []domain.DailyTask {
	tasks := append([]domain.DailyTask{}, r.s.tasks[challengeID]...)
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].DayNumber < tasks[j].DayNumber
	})
	return tasks
}

func (r *InMemoryChallengeRepository) ListPublic(ctx context.Context, filter domain.PublicChallengeFilter) ([]domain.ChallengeSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	var matched []*domain.Challenge
	for _, c := range r.s.challenges {
		if c.Status != domain.ChallengePublished {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Description), search) {
			continue
		}
		if filter.Type != "" && (c.ChallengeType == nil || *c.ChallengeType != filter.Type) {
			continue
		}
		matched = append(matched, c)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		if ca, cb := r.s.participantCount(a.ID), r.s.participantCount(b.ID); ca != cb {
			return ca > cb
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	out := []domain.ChallengeSummary{}
	for i, c := range matched {
		if i == publicListLimit {
			break
		}
		out = append(out, r.s.summary(c))
	}
	return out, nil
}

func (r *InMemoryChallengeRepository) ListTasks(ctx context.Context, challengeID string) ([]domain.DailyTask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sortedTasks(challengeID), nil
}

func (r *InMemoryChallengeRepository) ListMetrics(ctx context.Context, challengeID string) ([]domain.ChallengeMetric, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.ChallengeMetric{}, r.s.metrics[challengeID]...), nil
}

func (r *InMemoryChallengeRepository) Update(ctx context.Context, c *domain.Challenge) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.challenges[c.ID]; !ok {
		return domain.ErrChallengeNotFound
	}
	cp := *c
	r.s.challenges[c.ID] = &cp
	return nil
}

type InMemoryParticipationRepository struct {
	s *InMemoryStore
}

func (r *InMemoryParticipationRepository) Join(ctx context.Context, uc *domain.UserChallenge, initial []domain.UserMetricData) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.challenges[uc.ChallengeID]; !ok {
		return domain.ErrChallengeNotFound
	}
	for _, existing := range r.s.participations {
		if existing.UserID == uc.UserID && existing.ChallengeID == uc.ChallengeID {
			return &domain.AlreadyJoinedError{UserChallengeID: existing.ID}
		}
	}
	cp := *uc
	r.s.participations[uc.ID] = &cp
	r.s.metricData = append(r.s.metricData, initial...)
	return nil
}

func (r *InMemoryParticipationRepository) GetByID(ctx context.Context, id string) (*domain.UserChallenge, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	uc, ok := r.s.participations[id]
	if !ok {
		return nil, domain.ErrUserChallengeNotFound
	}
	cp := *uc
	return &cp, nil
}

func (r *InMemoryParticipationRepository) ListByUser(ctx context.Context, userID string) ([]domain.MyChallengeSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var mine []*domain.UserChallenge
	for _, uc := range r.s.participations {
		if uc.UserID == userID {
			mine = append(mine, uc)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		return lastSeen(mine[i]).After(lastSeen(mine[j]))
	})

	out := []domain.MyChallengeSummary{}
	for _, uc := range mine {
		c, ok := r.s.challenges[uc.ChallengeID]
		if !ok {
			continue
		}
		out = append(out, domain.MyChallengeSummary{
			ChallengeSummary: r.s.summary(c),
			UserChallengeID:  uc.ID,
			CurrentDay:       uc.CurrentDay,
			ChallengeStatus:  uc.ChallengeStatus,
		})
	}
	return out, nil
}

func lastSeen(uc *domain.UserChallenge) time.Time {
	if uc.LastAccessedAt != nil {
		return *uc.LastAccessedAt
	}
	return uc.JoinedAt
}

func (r *InMemoryParticipationRepository) CompleteDay(ctx context.Context, uc *domain.UserChallenge, progress domain.UserChallengeProgress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.participations[uc.ID]
	if !ok {
		return domain.ErrUserChallengeNotFound
	}
	if stored.CurrentDay != progress.DayNumber || stored.ChallengeStatus != domain.UserChallengeActive {
		return domain.ErrDayAlreadyCompleted
	}

	stored.CurrentDay = uc.CurrentDay
	stored.ChallengeStatus = uc.ChallengeStatus
	stored.CompletedAt = uc.CompletedAt
	r.s.progress[uc.ID] = append(r.s.progress[uc.ID], progress)
	return nil
}

func (r *InMemoryParticipationRepository) InsertMetricData(ctx context.Context, rows []domain.UserMetricData) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.metricData = append(r.s.metricData, rows...)
	return nil
}

func (r *InMemoryParticipationRepository) UpsertMetricData(ctx context.Context, rows []domain.UserMetricData) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range rows {
		replaced := false
		for i, existing := range r.s.metricData {
			if existing.UserChallengeID == row.UserChallengeID &&
				existing.MetricID == row.MetricID &&
				existing.DataType == row.DataType &&
				row.DataType != domain.DataDaily {
				r.s.metricData[i].ValueNumber = row.ValueNumber
				r.s.metricData[i].ValueText = row.ValueText
				r.s.metricData[i].RecordedAt = row.RecordedAt
				replaced = true
				break
			}
		}
		if !replaced {
			r.s.metricData = append(r.s.metricData, row)
		}
	}
	return nil
}

func (r *InMemoryParticipationRepository) ListReadings(ctx context.Context, userChallengeID string, types ...domain.DataType) ([]domain.MetricReading, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	uc, ok := r.s.participations[userChallengeID]
	if !ok {
		return []domain.MetricReading{}, nil
	}
	names := make(map[string]domain.ChallengeMetric)
	for _, m := range r.s.metrics[uc.ChallengeID] {
		names[m.ID] = m
	}

	out := []domain.MetricReading{}
	for _, d := range r.s.metricData {
		if d.UserChallengeID != userChallengeID || !hasType(types, d.DataType) {
			continue
		}
		m, ok := names[d.MetricID]
		if !ok {
			continue
		}
		out = append(out, domain.MetricReading{UserMetricData: d, MetricName: m.MetricName, MetricType: m.MetricType})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedAt.Before(out[j].RecordedAt)
	})
	return out, nil
}

func hasType(types []domain.DataType, t domain.DataType) bool {
	if len(types) == 0 {
		return true
	}
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}

func (r *InMemoryParticipationRepository) Touch(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if uc, ok := r.s.participations[id]; ok {
		uc.LastAccessedAt = &at
	}
	return nil
}

type InMemoryNotificationRepository struct {
	s *InMemoryStore
}

func (r *InMemoryNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *n
	r.s.notifications = append(r.s.notifications, &cp)
	return nil
}

func (r *InMemoryNotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*domain.Notification{}
	for i := len(r.s.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if n := r.s.notifications[i]; n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *InMemoryNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.notifications {
		if n.ID == id && n.UserID == userID {
			n.ReadStatus = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}
