package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var (
	_ domain.DraftStore = (*RedisDraftStore)(nil)
	_ domain.DraftStore = (*MemoryDraftStore)(nil)
)

// RedisDraftStore keeps wizard drafts as JSON with a sliding TTL.
type RedisDraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDraftStore(rdb *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{rdb: rdb, ttl: ttl}
}

func draftKey(hostID, id string) string {
	return fmt.Sprintf("challenge_draft:%s:%s", hostID, id)
}

func (s *RedisDraftStore) Save(ctx context.Context, draft *domain.ChallengeDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("cache: encode draft: %w", err)
	}
	if err := s.rdb.Set(ctx, draftKey(draft.HostID, draft.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache: save draft: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) Get(ctx context.Context, hostID, id string) (*domain.ChallengeDraft, error) {
	data, err := s.rdb.Get(ctx, draftKey(hostID, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("cache: load draft: %w", err)
	}

	var draft domain.ChallengeDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("cache: decode draft: %w", err)
	}
	return &draft, nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, hostID, id string) error {
	n, err := s.rdb.Del(ctx, draftKey(hostID, id)).Result()
	if err != nil {
		return fmt.Errorf("cache: delete draft: %w", err)
	}
	if n == 0 {
		return domain.ErrDraftNotFound
	}
	return nil
}

type memoryDraft struct {
	data      []byte
	expiresAt time.Time
}

// MemoryDraftStore is used when Redis is disabled. Drafts do not survive a restart.
type MemoryDraftStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	drafts map[string]memoryDraft
	now    func() time.Time
}

func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	return &MemoryDraftStore{
		ttl:    ttl,
		drafts: make(map[string]memoryDraft),
		now:    time.Now,
	}
}

func (s *MemoryDraftStore) Save(ctx context.Context, draft *domain.ChallengeDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("cache: encode draft: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.drafts {
		if now.After(entry.expiresAt) {
			delete(s.drafts, key)
		}
	}
	s.drafts[draftKey(draft.HostID, draft.ID)] = memoryDraft{data: data, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryDraftStore) Get(ctx context.Context, hostID, id string) (*domain.ChallengeDraft, error) {
	s.mu.Lock()
	entry, ok := s.drafts[draftKey(hostID, id)]
	if ok && s.now().After(entry.expiresAt) {
		delete(s.drafts, draftKey(hostID, id))
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, domain.ErrDraftNotFound
	}

	var draft domain.ChallengeDraft
	if err := json.Unmarshal(entry.data, &draft); err != nil {
		return nil, fmt.Errorf("cache: decode draft: %w", err)
	}
	return &draft, nil
}

func (s *MemoryDraftStore) Delete(ctx context.Context, hostID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := draftKey(hostID, id)
	if _, ok := s.drafts[key]; !ok {
		return domain.ErrDraftNotFound
	}
	delete(s.drafts, key)
	return nil
}
