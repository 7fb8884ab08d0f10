package handler

import (
	"time"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
)

type createGroupRequest struct {
	Name        string   `json:"name" validate:"required"`
	Type        string   `json:"type" validate:"required,oneof=ADMIN UNIT_MANAGER"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

type updateGroupRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Members     []string `json:"members"`
}

type memberRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type groupResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Type                string    `json:"type"`
	Description         string    `json:"description,omitempty"`
	Members             []string  `json:"members,omitempty"`
	CreatedBy           string    `json:"created_by"`
	VisibleUnitManagers []string  `json:"visible_unit_managers,omitempty"`
	VisibleUsers        []string  `json:"visible_users,omitempty"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func toGroupResponse(g *domain.Group) groupResponse {
	return groupResponse{
		ID:                  g.ID,
		Name:                g.Name,
		Type:                string(g.Type),
		Description:         g.Description,
		Members:             g.Members,
		CreatedBy:           g.CreatedBy,
		VisibleUnitManagers: g.VisibleUnitManagers,
		VisibleUsers:        g.VisibleUsers,
		IsActive:            g.IsActive,
		CreatedAt:           g.CreatedAt,
		UpdatedAt:           g.UpdatedAt,
	}
}

func toGroupResponses(groups []*domain.Group) []groupResponse {
	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupResponse(g))
	}
	return out
}
