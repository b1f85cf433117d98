package repository

import (
	"context"
	"testing"
	"time"

	"github.com/comitanigiacomo/thirtyday/internal/adapters/cache"
	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingChallengeRepository struct {
	*InMemoryChallengeRepository
	listCalls int
}

func (r *countingChallengeRepository) ListPublic(ctx context.Context, filter domain.PublicChallengeFilter) ([]domain.ChallengeSummary, error) {
	r.listCalls++
	return r.InMemoryChallengeRepository.ListPublic(ctx, filter)
}

func TestCachedChallengeRepository_Integration(t *testing.T) {
	rdb, err := cache.NewRedisClient(envOr("REDIS_HOST", "localhost"), envOr("REDIS_PORT", "6379"), envOr("REDIS_PASSWORD", ""), 2)
	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	defer rdb.Close()

	ctx := context.Background()
	require.NoError(t, rdb.FlushDB(ctx).Err())

	store, host, _ := seedMemoryStore(t)
	next := &countingChallengeRepository{InMemoryChallengeRepository: store.Challenges()}
	repo := NewCachedChallengeRepository(next, rdb, time.Minute, nil)

	first, err := repo.ListPublic(ctx, domain.PublicChallengeFilter{})
	require.NoError(t, err)
	second, err := repo.ListPublic(ctx, domain.PublicChallengeFilter{})
	require.NoError(t, err)

	assert.Equal(t, 1, next.listCalls, "second read is served from cache")
	require.Len(t, second, len(first))
	assert.Equal(t, domain.ParticipantCount(first[0].ParticipantCount), domain.ParticipantCount(second[0].ParticipantCount))

	another := testChallengeForm().BuildFullChallenge(host.ID)
	another.Challenge.Status = domain.ChallengePublished
	require.NoError(t, repo.CreateFull(ctx, another))

	third, err := repo.ListPublic(ctx, domain.PublicChallengeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, next.listCalls, "create invalidates the listing")
	assert.Len(t, third, 2)

	require.NoError(t, repo.InvalidatePublicList(ctx))
	_, err = repo.ListPublic(ctx, domain.PublicChallengeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, next.listCalls)
}

func TestCachedChallengeRepository_InvalidateLogsFailure(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	store, _, _ := seedMemoryStore(t)
	repo := NewCachedChallengeRepository(store.Challenges(), rdb, time.Minute, zap.New(core))

	err := repo.InvalidatePublicList(context.Background())
	require.Error(t, err)

	entries := logs.FilterMessage("Failed to invalidate public listings").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "challenge_cache", entries[0].LoggerName)
}
