package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cloudlab-api/internal/dto"
	"github.com/noah-isme/cloudlab-api/internal/repository"
)

const (
	defaultAdminPageSize = 50
	maxAdminPageSize     = 100
)

// AdminUserService lists learners for the admin panel.
type AdminUserService interface {
	List(ctx context.Context, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error)
}

type adminUserService struct {
	profiles     repository.ProfileRepository
	observations repository.ObservationRepository
	validator    *validator.Validate
	logger       zerolog.Logger
}

// NewAdminUserService constructs the admin user service.
func NewAdminUserService(profiles repository.ProfileRepository, observations repository.ObservationRepository, validate *validator.Validate, logger zerolog.Logger) AdminUserService {
	return &adminUserService{
		profiles:     profiles,
		observations: observations,
		validator:    validate,
		logger:       logger.With().Str("component", "admin_user_service").Logger(),
	}
}

func (s *adminUserService) List(ctx context.Context, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AdminUserListResponse{}, err
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultAdminPageSize
	}
	if pageSize > maxAdminPageSize {
		pageSize = maxAdminPageSize
	}

	profiles, total, err := s.profiles.List(ctx, repository.ProfileFilter{ClassName: req.ClassName, Page: page, PageSize: pageSize})
	if err != nil {
		return dto.AdminUserListResponse{}, err
	}

	ids := make([]string, 0, len(profiles))
	for _, profile := range profiles {
		ids = append(ids, profile.ID)
	}
	counts, err := s.observations.CountByUsers(ctx, ids)
	if err != nil {
		return dto.AdminUserListResponse{}, err
	}

	users := make([]dto.AdminUserResponse, 0, len(profiles))
	for _, profile := range profiles {
		users = append(users, dto.AdminUserResponse{
			ID:               profile.ID,
			Email:            profile.Email,
			Name:             profile.Name,
			ClassName:        profile.ClassName,
			ObservationCount: counts[profile.ID],
			CreatedAt:        profile.CreatedAt,
		})
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}

	return dto.AdminUserListResponse{
		Users: users,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}, nil
}
