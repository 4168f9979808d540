package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gleeworld/course-api/internal/dto"
)

// GradeCache keeps the latest grade payload per journal so repeated grade
// views skip the database. Misses and redis failures fall through to the
// repository.
type GradeCache interface {
	Get(ctx context.Context, journalID uint) (dto.GradeResponse, bool)
	Set(ctx context.Context, journalID uint, grade dto.GradeResponse)
	Invalidate(ctx context.Context, journalID uint)
}

// NewGradeCache returns a redis-backed cache when a client is available and
// a no-op cache otherwise.
func NewGradeCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) GradeCache {
	if client == nil {
		return noopGradeCache{}
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisGradeCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "grade_cache").Logger(),
	}
}

type redisGradeCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func gradeCacheKey(journalID uint) string {
	return fmt.Sprintf("grading:grade:%d", journalID)
}

func (c *redisGradeCache) Get(ctx context.Context, journalID uint) (dto.GradeResponse, bool) {
	raw, err := c.client.Get(ctx, gradeCacheKey(journalID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Uint("journal_id", journalID).Msg("grade cache read failed")
		}
		return dto.GradeResponse{}, false
	}

	var grade dto.GradeResponse
	if err := json.Unmarshal(raw, &grade); err != nil {
		c.client.Del(ctx, gradeCacheKey(journalID))
		return dto.GradeResponse{}, false
	}
	return grade, true
}

func (c *redisGradeCache) Set(ctx context.Context, journalID uint, grade dto.GradeResponse) {
	raw, err := json.Marshal(grade)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, gradeCacheKey(journalID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Uint("journal_id", journalID).Msg("grade cache write failed")
	}
}

func (c *redisGradeCache) Invalidate(ctx context.Context, journalID uint) {
	c.client.Del(ctx, gradeCacheKey(journalID))
}

type noopGradeCache struct{}

func (noopGradeCache) Get(context.Context, uint) (dto.GradeResponse, bool) {
	return dto.GradeResponse{}, false
}

func (noopGradeCache) Set(context.Context, uint, dto.GradeResponse) {}

func (noopGradeCache) Invalidate(context.Context, uint) {}
