package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// GradingGuard serializes grading runs per journal id. Acquire returns false
// when another run already holds the journal.
type GradingGuard interface {
	Acquire(ctx context.Context, journalID uint) (bool, error)
	Release(ctx context.Context, journalID uint)
}

// NewGradingGuard returns a redis-backed guard when a client is available
// and an in-process guard otherwise.
func NewGradingGuard(client *redis.Client, ttl time.Duration) GradingGuard {
	if client == nil {
		return &memoryGradingGuard{held: make(map[uint]struct{})}
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &redisGradingGuard{client: client, ttl: ttl}
}

type redisGradingGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func gradingGuardKey(journalID uint) string {
	return fmt.Sprintf("grading:inflight:%d", journalID)
}

func (g *redisGradingGuard) Acquire(ctx context.Context, journalID uint) (bool, error) {
	ok, err := g.client.SetNX(ctx, gradingGuardKey(journalID), 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire grading guard: %w", err)
	}
	return ok, nil
}

func (g *redisGradingGuard) Release(ctx context.Context, journalID uint) {
	g.client.Del(ctx, gradingGuardKey(journalID))
}

type memoryGradingGuard struct {
	mu   sync.Mutex
	held map[uint]struct{}
}

func (g *memoryGradingGuard) Acquire(_ context.Context, journalID uint) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[journalID]; busy {
		return false, nil
	}
	g.held[journalID] = struct{}{}
	return true, nil
}

func (g *memoryGradingGuard) Release(_ context.Context, journalID uint) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, journalID)
}
