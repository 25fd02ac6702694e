package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/realorai/realorai-api/internal/dto"
)

// SummaryCache keeps the polling read model (contest summary with vote
// counts) in Redis for a short TTL. Mutating operations invalidate the key so
// pollers never see a stale phase or tally for longer than one write. A nil
// client disables caching entirely.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewSummaryCache constructs the cache wrapper.
func NewSummaryCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *SummaryCache {
	return &SummaryCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "summary_cache").Logger(),
	}
}

func summaryKey(contestID uint) string {
	return fmt.Sprintf("contest:summary:%d", contestID)
}

// Get returns the cached summary, if any.
func (c *SummaryCache) Get(ctx context.Context, contestID uint) (dto.ContestSummaryResponse, bool) {
	if c == nil || c.client == nil {
		return dto.ContestSummaryResponse{}, false
	}

	raw, err := c.client.Get(ctx, summaryKey(contestID)).Bytes()
	if err != nil {
		return dto.ContestSummaryResponse{}, false
	}

	var summary dto.ContestSummaryResponse
	if err := json.Unmarshal(raw, &summary); err != nil {
		return dto.ContestSummaryResponse{}, false
	}

	return summary, true
}

// Set stores the summary. Cache failures are logged and swallowed; the read
// path never depends on Redis being up.
func (c *SummaryCache) Set(ctx context.Context, contestID uint, summary dto.ContestSummaryResponse) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, summaryKey(contestID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Uint("contest_id", contestID).Msg("failed to cache contest summary")
	}
}

// Invalidate drops the cached summary after a mutation.
func (c *SummaryCache) Invalidate(ctx context.Context, contestID uint) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, summaryKey(contestID)).Err(); err != nil {
		c.logger.Warn().Err(err).Uint("contest_id", contestID).Msg("failed to invalidate contest summary")
	}
}
