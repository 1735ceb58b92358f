package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/cloudlab-api/internal/grading"
)

// AnalysisStore keeps recent assessments so a later save can reference them by id
// instead of trusting a judgment echoed back by the client.
type AnalysisStore interface {
	Save(ctx context.Context, id, userID string, assessment grading.Assessment) error
	Load(ctx context.Context, id, userID string) (grading.Assessment, error)
}

type storedAnalysis struct {
	UserID     string             `json:"user_id"`
	Assessment grading.Assessment `json:"assessment"`
	CreatedAt  time.Time          `json:"created_at"`
}

type redisAnalysisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAnalysisStore stores assessments in Redis for ttl.
func NewRedisAnalysisStore(client *redis.Client, ttl time.Duration) AnalysisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &redisAnalysisStore{client: client, ttl: ttl}
}

func analysisKey(id string) string {
	return fmt.Sprintf("analysis:%s", id)
}

func (s *redisAnalysisStore) Save(ctx context.Context, id, userID string, assessment grading.Assessment) error {
	payload, err := json.Marshal(storedAnalysis{UserID: userID, Assessment: assessment, CreatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, analysisKey(id), payload, s.ttl).Err()
}

// Load returns ErrAnalysisNotFound for unknown, expired or foreign analyses.
func (s *redisAnalysisStore) Load(ctx context.Context, id, userID string) (grading.Assessment, error) {
	raw, err := s.client.Get(ctx, analysisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return grading.Assessment{}, ErrAnalysisNotFound
	}
	if err != nil {
		return grading.Assessment{}, err
	}

	var stored storedAnalysis
	if err := json.Unmarshal(raw, &stored); err != nil {
		return grading.Assessment{}, fmt.Errorf("decode stored analysis: %w", err)
	}
	if stored.UserID != userID {
		return grading.Assessment{}, ErrAnalysisNotFound
	}
	return stored.Assessment, nil
}
