package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/cloudlab-api/internal/models"
)

// ProfileFilter defines paging for listing profiles from the admin panel.
type ProfileFilter struct {
	ClassName string
	Page      int
	PageSize  int
}

// ProfileRepository exposes persistence helpers for user profiles.
type ProfileRepository interface {
	Get(ctx context.Context, id string) (models.UserProfile, error)
	Upsert(ctx context.Context, profile *models.UserProfile) error
	List(ctx context.Context, filter ProfileFilter) ([]models.UserProfile, int64, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository constructs the profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, id string) (models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.UserProfile) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "class_name", "updated_at"}),
	}).Create(profile).Error; err != nil {
		return err
	}

	stored, err := r.Get(ctx, profile.ID)
	if err != nil {
		return err
	}
	*profile = stored
	return nil
}

func (r *profileRepository) List(ctx context.Context, filter ProfileFilter) ([]models.UserProfile, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.UserProfile{})
	if filter.ClassName != "" {
		query = query.Where("class_name = ?", filter.ClassName)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var profiles []models.UserProfile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}
