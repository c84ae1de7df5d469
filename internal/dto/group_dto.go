package dto

import (
	"time"

	"github.com/teamhive/hive-go-api/internal/models"
)

// GroupCreateRequest creates a group; the creator always becomes admin.
type GroupCreateRequest struct {
	Name            string   `json:"name" validate:"required,min=1,max=255"`
	Description     string   `json:"description" validate:"omitempty,max=2000"`
	IsDirectMessage bool     `json:"is_direct_message"`
	Members         []string `json:"members" validate:"omitempty,dive,uuid"`
}

// GroupUpdateRequest updates name/description (admin only).
type GroupUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// GroupAddMembersRequest adds members to a group (admin only).
type GroupAddMembersRequest struct {
	Members []string `json:"members" validate:"required,min=1,dive,uuid"`
}

// GroupMemberView is a member entry enriched with user details.
type GroupMemberView struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Role   string `json:"role"`
}

// GroupResponse is the serialized representation of a group.
type GroupResponse struct {
	ID              uint              `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	IsDirectMessage bool              `json:"is_direct_message"`
	Members         []GroupMemberView `json:"members"`
	CreatedBy       string            `json:"created_by"`
	CreatedAt       time.Time         `json:"created_at"`
}

// NewGroupResponse converts a model and a user lookup into a DTO.
func NewGroupResponse(group models.Group, users map[string]models.User) GroupResponse {
	members := make([]GroupMemberView, 0, len(group.Members))
	for _, member := range group.Members {
		view := GroupMemberView{UserID: member.UserID, Role: member.Role, Status: models.StatusOffline}
		if user, ok := users[member.UserID]; ok {
			view.Name = user.Name
			view.Status = user.Status
		}
		members = append(members, view)
	}

	return GroupResponse{
		ID:              group.ID,
		Name:            group.Name,
		Description:     group.Description,
		IsDirectMessage: group.IsDirectMessage,
		Members:         members,
		CreatedBy:       group.CreatedBy,
		CreatedAt:       group.CreatedAt,
	}
}
