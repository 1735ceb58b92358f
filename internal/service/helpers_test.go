package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/cloudlab-api/internal/auth"
	"github.com/noah-isme/cloudlab-api/internal/models"
	"github.com/noah-isme/cloudlab-api/pkg/ai"
	"github.com/noah-isme/cloudlab-api/pkg/kma"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserProfile{}, &models.Observation{}))
	return db
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mini, client
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func learner(id string) *auth.Identity {
	identity := auth.NewAdminPolicy(nil).Resolve(auth.Identity{UserID: id, Email: id + "@school.kr"})
	return &identity
}

func admin() *auth.Identity {
	identity := auth.NewAdminPolicy(nil).Resolve(auth.Identity{UserID: "admin-1", Email: "teacher@school.kr", Role: auth.RoleAdmin})
	return &identity
}

type stubJudge struct {
	content string
	err     error
	calls   atomic.Int32
	last    ai.VisionInput
	mu      sync.Mutex
}

func (s *stubJudge) Judge(_ context.Context, input ai.VisionInput) (ai.VisionResult, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.last = input
	s.mu.Unlock()
	if s.err != nil {
		return ai.VisionResult{}, s.err
	}
	return ai.VisionResult{Content: []byte(s.content), Model: "stub", Provider: "stub"}, nil
}

type stubStorage struct {
	uploads []string
	err     error
}

func (s *stubStorage) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.ReadAll(reader); err != nil {
		return "", err
	}
	s.uploads = append(s.uploads, name)
	return "https://cdn.test/" + name, nil
}

type stubNowcast struct {
	nowcast kma.Nowcast
	err     error
	calls   int
	grid    kma.Grid
	base    kma.BaseTime
}

func (s *stubNowcast) Nowcast(_ context.Context, grid kma.Grid, base kma.BaseTime) (kma.Nowcast, error) {
	s.calls++
	s.grid = grid
	s.base = base
	if s.err != nil {
		return kma.Nowcast{}, s.err
	}
	result := s.nowcast
	result.Grid = grid
	result.BaseDate = base.Date
	result.BaseTime = base.Time
	return result, nil
}

func floatPointer(value float64) *float64 {
	return &value
}

func intPointer(value int) *int {
	return &value
}
