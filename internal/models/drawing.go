package models

import (
	"time"

	"gorm.io/datatypes"
)

// Drawing holds a serialized raster snapshot plus the persisted set of
// collaborators. Individual strokes are never stored, only snapshots.
type Drawing struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Title        string                      `gorm:"size:255;not null" json:"title"`
	GroupID      *uint                       `gorm:"index" json:"group_id,omitempty"`
	CreatorID    string                      `gorm:"size:36;index" json:"creator_id"`
	CanvasData   *string                     `gorm:"type:text" json:"canvas_data,omitempty"`
	Participants datatypes.JSONSlice[string] `gorm:"type:json" json:"participants"`
	LastModified time.Time                   `json:"last_modified"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// HasParticipant reports whether the user is in the collaborator set.
func (d Drawing) HasParticipant(userID string) bool {
	for _, participant := range d.Participants {
		if participant == userID {
			return true
		}
	}
	return false
}
