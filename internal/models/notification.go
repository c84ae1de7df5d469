package models

import "time"

// Notification categories created by the collaboration services.
const (
	NotificationNewMessage    = "newMessage"
	NotificationThreadReply   = "threadReply"
	NotificationTableUpdate   = "tableUpdate"
	NotificationDrawingUpdate = "drawingUpdate"
	NotificationMention       = "mention"
	NotificationGroupInvite   = "groupInvite"
)

// Notification is created server-side only and pushed to the recipient's
// personal channel when they are connected.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecipientID string    `gorm:"size:36;index;not null" json:"recipient_id"`
	SenderID    string    `gorm:"size:36" json:"sender_id,omitempty"`
	Type        string    `gorm:"size:32;not null" json:"type"`
	MessageID   *uint     `json:"message_id,omitempty"`
	GroupID     *uint     `json:"group_id,omitempty"`
	ThreadID    *uint     `json:"thread_id,omitempty"`
	TableID     *uint     `json:"table_id,omitempty"`
	DrawingID   *uint     `json:"drawing_id,omitempty"`
	Content     string    `gorm:"type:text" json:"content"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
