package models

import (
	"time"

	"gorm.io/datatypes"
)

// Membership roles inside a group.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// GroupMember is one entry of a group's embedded member list.
type GroupMember struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Group is a chat group. Members are stored as an ordered JSON document;
// the list must always contain at least one admin.
type Group struct {
	ID              uint                             `gorm:"primaryKey" json:"id"`
	Name            string                           `gorm:"size:255;not null" json:"name"`
	Description     string                           `gorm:"type:text" json:"description,omitempty"`
	IsDirectMessage bool                             `gorm:"not null;default:false" json:"is_direct_message"`
	Members         datatypes.JSONSlice[GroupMember] `gorm:"type:json" json:"members"`
	CreatedBy       string                           `gorm:"size:36;index" json:"created_by"`
	CreatedAt       time.Time                        `json:"created_at"`
	UpdatedAt       time.Time                        `json:"updated_at"`
}

// HasMember reports whether the user belongs to the group.
func (g Group) HasMember(userID string) bool {
	for _, member := range g.Members {
		if member.UserID == userID {
			return true
		}
	}
	return false
}

// HasAdmin reports whether the user is an admin of the group.
func (g Group) HasAdmin(userID string) bool {
	for _, member := range g.Members {
		if member.UserID == userID && member.Role == RoleAdmin {
			return true
		}
	}
	return false
}

// AdminCount returns the number of admin members.
func (g Group) AdminCount() int {
	count := 0
	for _, member := range g.Members {
		if member.Role == RoleAdmin {
			count++
		}
	}
	return count
}
