package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publicListVersionKey = "challenges:public:version"

var _ domain.ChallengeRepository = (*CachedChallengeRepository)(nil)

// CachedChallengeRepository serves public listings from Redis. Entries are keyed
// by a version counter so one INCR retires every cached search at once.
type CachedChallengeRepository struct {
	next   domain.ChallengeRepository
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedChallengeRepository(next domain.ChallengeRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedChallengeRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedChallengeRepository{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("challenge_cache"),
	}
}

func (r *CachedChallengeRepository) cacheKey(ctx context.Context, filter domain.PublicChallengeFilter) (string, error) {
	version, err := r.cache.Get(ctx, publicListVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("challenges:public:v%d:%s:%s",
		version, strings.ToLower(strings.TrimSpace(filter.Search)), filter.Type), nil
}

// InvalidatePublicList retires every cached listing. Failures are logged here,
// so callers may drop the returned error.
func (r *CachedChallengeRepository) InvalidatePublicList(ctx context.Context) error {
	if err := r.cache.Incr(ctx, publicListVersionKey).Err(); err != nil {
		r.logger.Warn("Failed to invalidate public listings", zap.Error(err))
		return err
	}
	return nil
}

func (r *CachedChallengeRepository) ListPublic(ctx context.Context, filter domain.PublicChallengeFilter) ([]domain.ChallengeSummary, error) {
	key, err := r.cacheKey(ctx, filter)
	if err != nil {
		r.logger.Warn("Redis read error", zap.Error(err))
		return r.next.ListPublic(ctx, filter)
	}

	val, err := r.cache.Get(ctx, key).Bytes()
	if err == nil {
		var summaries []domain.ChallengeSummary
		if err := json.Unmarshal(val, &summaries); err == nil {
			return summaries, nil
		}
		r.logger.Warn("Corrupted cache entry, cleaning up", zap.String("key", key))
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("Redis read error", zap.Error(err))
	}

	summaries, err := r.next.ListPublic(ctx, filter)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(summaries); err == nil {
		if setErr := r.cache.Set(ctx, key, data, r.ttl).Err(); setErr != nil {
			r.logger.Warn("Redis set error", zap.Error(setErr))
		}
	}
	return summaries, nil
}

func (r *CachedChallengeRepository) CreateFull(ctx context.Context, full *domain.FullChallenge) error {
	if err := r.next.CreateFull(ctx, full); err != nil {
		return err
	}
	_ = r.InvalidatePublicList(ctx)
	return nil
}

func (r *CachedChallengeRepository) Update(ctx context.Context, c *domain.Challenge) error {
	if err := r.next.Update(ctx, c); err != nil {
		return err
	}
	_ = r.InvalidatePublicList(ctx)
	return nil
}

func (r *CachedChallengeRepository) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedChallengeRepository) GetDetail(ctx context.Context, id string) (*domain.ChallengeDetail, error) {
	return r.next.GetDetail(ctx, id)
}

func (r *CachedChallengeRepository) ListTasks(ctx context.Context, challengeID string) ([]domain.DailyTask, error) {
	return r.next.ListTasks(ctx, challengeID)
}

func (r *CachedChallengeRepository) ListMetrics(ctx context.Context, challengeID string) ([]domain.ChallengeMetric, error) {
	return r.next.ListMetrics(ctx, challengeID)
}
