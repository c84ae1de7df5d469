package dto

import (
	"time"

	"github.com/teamhive/hive-go-api/internal/models"
)

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Status     string    `json:"status"`
	LastActive time.Time `json:"last_active"`
}

// UserStatusUpdateRequest updates the caller's presence status.
type UserStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=online away offline"`
}

// NewUserResponse converts a model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		AvatarURL:  user.AvatarURL,
		Status:     user.Status,
		LastActive: user.LastActive,
	}
}

// NewUserResponseSlice converts a slice of models into DTOs.
func NewUserResponseSlice(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserResponse(user))
	}
	return out
}

// UploadResponse describes a stored attachment.
type UploadResponse struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}
