package handler

import (
	"time"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
	"github.com/invoiceapp/user-management-system/internal/core/ports"
)

type createUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=SUPER_ADMIN ADMIN UNIT_MANAGER USER"`
	Timezone string `json:"timezone"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Username *string `json:"username"`
	Timezone *string `json:"timezone"`
}

// userResponse is the transport shape of an account. The record id is exposed
// here (and only here) because subsequent calls address users by it.
type userResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedBy string    `json:"created_by,omitempty"`
	Groups    []string  `json:"groups,omitempty"`
	Timezone  string    `json:"timezone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		UserID:    u.UserID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedBy: u.CreatedBy,
		Groups:    u.Groups,
		Timezone:  u.Timezone,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type userListResponse struct {
	Users      []userResponse `json:"users"`
	Total      int64          `json:"total"`
	Page       int64          `json:"page"`
	TotalPages int64          `json:"total_pages"`
}

func toUserListResponse(res *ports.UserListResult) userListResponse {
	users := make([]userResponse, 0, len(res.Users))
	for _, u := range res.Users {
		users = append(users, toUserResponse(u))
	}
	return userListResponse{
		Users:      users,
		Total:      res.Total,
		Page:       res.Page,
		TotalPages: res.TotalPages,
	}
}

type nextIDResponse struct {
	Role   string `json:"role"`
	NextID string `json:"next_id"`
}
