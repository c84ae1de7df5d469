package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User presence states driven by the realtime connection lifecycle.
const (
	StatusOnline  = "online"
	StatusAway    = "away"
	StatusOffline = "offline"
)

// User represents an account that can join groups and realtime rooms.
type User struct {
	ID                      string            `gorm:"primaryKey;size:36" json:"id"`
	Name                    string            `gorm:"size:255;not null" json:"name"`
	Email                   string            `gorm:"size:255;uniqueIndex;not null" json:"email"`
	AvatarURL               string            `gorm:"size:512" json:"avatar_url,omitempty"`
	Status                  string            `gorm:"size:16;default:offline" json:"status"`
	LastActive              time.Time         `json:"last_active"`
	NotificationPreferences datatypes.JSONMap `gorm:"type:json" json:"notification_preferences,omitempty"`
	CreatedAt               time.Time         `json:"created_at"`
	UpdatedAt               time.Time         `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
