package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/cloudlab-api/internal/auth"
	"github.com/noah-isme/cloudlab-api/internal/dto"
	"github.com/noah-isme/cloudlab-api/internal/models"
	"github.com/noah-isme/cloudlab-api/internal/repository"
)

// ErrInvalidClassName indicates the requested class is not offered.
var ErrInvalidClassName = errors.New("invalid class name")

// ProfileService manages the caller's class enrolment.
type ProfileService interface {
	Get(ctx context.Context, identity *auth.Identity) (*dto.ProfileResponse, error)
	Upsert(ctx context.Context, identity *auth.Identity, payload dto.ProfileUpsertRequest) (dto.ProfileResponse, error)
}

type profileService struct {
	repo      repository.ProfileRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(repo repository.ProfileRepository, validate *validator.Validate, logger zerolog.Logger) ProfileService {
	return &profileService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "profile_service").Logger(),
	}
}

// Get returns nil when the caller has not chosen a class yet.
func (s *profileService) Get(ctx context.Context, identity *auth.Identity) (*dto.ProfileResponse, error) {
	profile, err := s.repo.Get(ctx, identity.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	response := dto.NewProfileResponse(profile)
	return &response, nil
}

func (s *profileService) Upsert(ctx context.Context, identity *auth.Identity, payload dto.ProfileUpsertRequest) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProfileResponse{}, err
	}
	className := strings.TrimSpace(payload.ClassName)
	if !models.IsValidClassName(className) {
		return dto.ProfileResponse{}, ErrInvalidClassName
	}

	profile := models.UserProfile{
		ID:        identity.UserID,
		Email:     identity.Email,
		Name:      identity.Name,
		ClassName: className,
	}
	if err := s.repo.Upsert(ctx, &profile); err != nil {
		return dto.ProfileResponse{}, err
	}

	s.logger.Info().Str("user_id", identity.UserID).Str("class_name", className).Msg("profile saved")
	return dto.NewProfileResponse(profile), nil
}
