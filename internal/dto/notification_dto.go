package dto

import (
	"time"

	"github.com/teamhive/hive-go-api/internal/models"
)

// NotificationResponse represents notification data returned to clients
// and pushed as the newNotification event payload.
type NotificationResponse struct {
	ID          uint      `json:"id"`
	RecipientID string    `json:"recipient_id"`
	SenderID    string    `json:"sender_id,omitempty"`
	Type        string    `json:"type"`
	MessageID   *uint     `json:"message_id,omitempty"`
	GroupID     *uint     `json:"group_id,omitempty"`
	ThreadID    *uint     `json:"thread_id,omitempty"`
	TableID     *uint     `json:"table_id,omitempty"`
	DrawingID   *uint     `json:"drawing_id,omitempty"`
	Content     string    `json:"content"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewNotificationResponse converts a notification model to a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          model.ID,
		RecipientID: model.RecipientID,
		SenderID:    model.SenderID,
		Type:        model.Type,
		MessageID:   model.MessageID,
		GroupID:     model.GroupID,
		ThreadID:    model.ThreadID,
		TableID:     model.TableID,
		DrawingID:   model.DrawingID,
		Content:     model.Content,
		Read:        model.Read,
		CreatedAt:   model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of models into DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}
