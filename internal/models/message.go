package models

import (
	"time"

	"gorm.io/datatypes"
)

// Attachment kinds carried by a message.
const (
	AttachmentImage   = "image"
	AttachmentFile    = "file"
	AttachmentDrawing = "drawing"
	AttachmentTable   = "table"
)

// Attachment is an embedded reference to an uploaded file or a
// collaboration entity linked from a message.
type Attachment struct {
	Kind  string `json:"kind"`
	URL   string `json:"url,omitempty"`
	Name  string `json:"name,omitempty"`
	RefID uint   `json:"ref_id,omitempty"`
}

// ReadReceipt records that a user has read a message.
type ReadReceipt struct {
	UserID string    `json:"user_id"`
	ReadAt time.Time `json:"read_at"`
}

// Message belongs to exactly one group. The thread reference, once set,
// is immutable and shared by every reply under the same parent.
type Message struct {
	ID              uint                             `gorm:"primaryKey" json:"id"`
	GroupID         uint                             `gorm:"index;not null" json:"group_id"`
	SenderID        string                           `gorm:"size:36;index" json:"sender_id"`
	Content         string                           `gorm:"type:text" json:"content"`
	Attachments     datatypes.JSONSlice[Attachment]  `gorm:"type:json" json:"attachments,omitempty"`
	ThreadID        *uint                            `gorm:"index" json:"thread_id,omitempty"`
	ParentMessageID *uint                            `gorm:"index" json:"parent_message_id,omitempty"`
	ReadBy          datatypes.JSONSlice[ReadReceipt] `gorm:"type:json" json:"read_by"`
	CreatedAt       time.Time                        `json:"created_at"`
	UpdatedAt       time.Time                        `json:"updated_at"`
}

// ReadBy reports whether the user already has a read receipt.
func (m Message) ReadByUser(userID string) bool {
	for _, receipt := range m.ReadBy {
		if receipt.UserID == userID {
			return true
		}
	}
	return false
}

// Thread anchors replies to one parent message. The unique index on
// ParentMessageID enforces thread-per-message at the persistence layer.
type Thread struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	ParentMessageID uint                        `gorm:"uniqueIndex;not null" json:"parent_message_id"`
	GroupID         uint                        `gorm:"index;not null" json:"group_id"`
	Participants    datatypes.JSONSlice[string] `gorm:"type:json" json:"participants"`
	LastActivity    time.Time                   `json:"last_activity"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

// HasParticipant reports whether the user already participates in the thread.
func (t Thread) HasParticipant(userID string) bool {
	for _, participant := range t.Participants {
		if participant == userID {
			return true
		}
	}
	return false
}
