package dto

import (
	"time"

	"github.com/teamhive/hive-go-api/internal/models"
)

// MessageResponse is the serialized representation of a chat message,
// used both for newMessage/threadMessage broadcasts and REST history.
type MessageResponse struct {
	ID              uint                 `json:"id"`
	GroupID         uint                 `json:"group_id"`
	Sender          UserRef              `json:"sender"`
	Content         string               `json:"content"`
	Attachments     []models.Attachment  `json:"attachments,omitempty"`
	ThreadID        *uint                `json:"thread_id,omitempty"`
	ParentMessageID *uint                `json:"parent_message_id,omitempty"`
	ReadBy          []models.ReadReceipt `json:"read_by"`
	CreatedAt       time.Time            `json:"created_at"`
}

// NewMessageResponse converts a model into a DTO with sender details attached.
func NewMessageResponse(message models.Message, sender UserRef) MessageResponse {
	return MessageResponse{
		ID:              message.ID,
		GroupID:         message.GroupID,
		Sender:          sender,
		Content:         message.Content,
		Attachments:     message.Attachments,
		ThreadID:        message.ThreadID,
		ParentMessageID: message.ParentMessageID,
		ReadBy:          message.ReadBy,
		CreatedAt:       message.CreatedAt,
	}
}

// MessageHistoryQuery filters paginated group history.
type MessageHistoryQuery struct {
	Before *time.Time `query:"before"`
	Limit  int        `query:"limit" validate:"omitempty,min=1,max=100"`
}
