package dto

import (
	"time"

	"github.com/noah-isme/cloudlab-api/internal/models"
)

// ProfileUpsertRequest selects the class the caller belongs to.
type ProfileUpsertRequest struct {
	ClassName string `json:"className" validate:"required"`
}

// ProfileResponse serializes a user profile.
type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	ClassName string    `json:"className"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProfileResponse maps a stored profile.
func NewProfileResponse(profile models.UserProfile) ProfileResponse {
	return ProfileResponse{
		ID:        profile.ID,
		Email:     profile.Email,
		Name:      profile.Name,
		ClassName: profile.ClassName,
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
}
