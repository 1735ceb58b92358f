package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cloudlab-api/internal/auth"
	"github.com/noah-isme/cloudlab-api/internal/grading"
	"github.com/noah-isme/cloudlab-api/internal/repository"
)

// StatsService produces a learner's accuracy and score totals.
type StatsService interface {
	Get(ctx context.Context, identity *auth.Identity, targetUserID string) (grading.Stats, error)
	Invalidate(ctx context.Context, userID string)
}

type statsService struct {
	observations repository.ObservationRepository
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       zerolog.Logger
}

// NewStatsService builds the statistics aggregator. cache may be nil.
func NewStatsService(observations repository.ObservationRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StatsService {
	return &statsService{
		observations: observations,
		cache:        cache,
		cacheTTL:     ttl,
		logger:       logger.With().Str("component", "stats_service").Logger(),
	}
}

func statsCacheKey(userID string) string {
	return fmt.Sprintf("stats:user:%s", userID)
}

func (s *statsService) Get(ctx context.Context, identity *auth.Identity, targetUserID string) (grading.Stats, error) {
	userID := identity.UserID
	if target := strings.TrimSpace(targetUserID); target != "" && target != userID {
		if !identity.IsAdmin() {
			return grading.Stats{}, ErrForbidden
		}
		userID = target
	}

	cacheKey := statsCacheKey(userID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var stats grading.Stats
			if unmarshalErr := json.Unmarshal([]byte(cached), &stats); unmarshalErr == nil {
				s.logger.Debug().Str("user_id", userID).Msg("stats cache hit")
				return stats, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read stats cache")
		}
	}

	observations, err := s.observations.ListByUser(ctx, userID)
	if err != nil {
		return grading.Stats{}, err
	}
	stats := grading.AggregateStats(observations)

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store stats cache")
			}
		}
	}

	return stats, nil
}

func (s *statsService) Invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsCacheKey(userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate stats cache")
	}
}
