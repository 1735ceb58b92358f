package dto

import "time"

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// AdminUserListRequest pages through user profiles.
type AdminUserListRequest struct {
	Page      int    `query:"page" validate:"omitempty,gte=1"`
	PageSize  int    `query:"page_size" validate:"omitempty,gte=1"`
	ClassName string `query:"className" validate:"omitempty,max=64"`
}

// AdminUserResponse is one profile with its activity counts.
type AdminUserResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name,omitempty"`
	ClassName        string    `json:"className"`
	ObservationCount int64     `json:"observationCount"`
	CreatedAt        time.Time `json:"createdAt"`
}

// AdminUserListResponse wraps the page of users.
type AdminUserListResponse struct {
	Users      []AdminUserResponse `json:"users"`
	Pagination PaginationMeta      `json:"pagination"`
}
