package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/cloudlab-api/internal/models"
)

// ErrDuplicateObservation is returned when an idempotency key was already used.
var ErrDuplicateObservation = errors.New("observation already recorded")

// ObservationRepository defines data operations for observations.
type ObservationRepository interface {
	Create(ctx context.Context, observation *models.Observation) error
	FindByIdempotencyKey(ctx context.Context, key string) (models.Observation, error)
	ListByUser(ctx context.Context, userID string) ([]models.Observation, error)
	CountByUsers(ctx context.Context, userIDs []string) (map[string]int64, error)
}

type observationRepository struct {
	db *gorm.DB
}

// NewObservationRepository instantiates the repository.
func NewObservationRepository(db *gorm.DB) ObservationRepository {
	return &observationRepository{db: db}
}

func (r *observationRepository) Create(ctx context.Context, observation *models.Observation) error {
	err := r.db.WithContext(ctx).Create(observation).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateObservation
	}
	return err
}

func (r *observationRepository) FindByIdempotencyKey(ctx context.Context, key string) (models.Observation, error) {
	var observation models.Observation
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&observation).Error; err != nil {
		return models.Observation{}, err
	}
	return observation, nil
}

func (r *observationRepository) ListByUser(ctx context.Context, userID string) ([]models.Observation, error) {
	var observations []models.Observation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&observations).Error; err != nil {
		return nil, err
	}
	return observations, nil
}

func (r *observationRepository) CountByUsers(ctx context.Context, userIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		UserID string
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Observation{}).
		Select("user_id, COUNT(*) AS total").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.UserID] = row.Total
	}
	return counts, nil
}
