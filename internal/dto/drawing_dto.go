package dto

import (
	"time"

	"github.com/teamhive/hive-go-api/internal/models"
)

// DrawingCreateRequest creates a drawing board.
type DrawingCreateRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=255"`
	GroupID *uint  `json:"group_id"`
}

// DrawingSaveRequest persists a canvas snapshot via REST.
type DrawingSaveRequest struct {
	CanvasData string `json:"canvas_data" validate:"required"`
}

// DrawingResponse is the serialized representation of a drawing.
type DrawingResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	GroupID      *uint     `json:"group_id,omitempty"`
	CreatorID    string    `json:"creator_id"`
	CanvasData   *string   `json:"canvas_data,omitempty"`
	Participants []string  `json:"participants"`
	LastModified time.Time `json:"last_modified"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewDrawingResponse converts a model into a DTO.
func NewDrawingResponse(drawing models.Drawing) DrawingResponse {
	return DrawingResponse{
		ID:           drawing.ID,
		Title:        drawing.Title,
		GroupID:      drawing.GroupID,
		CreatorID:    drawing.CreatorID,
		CanvasData:   drawing.CanvasData,
		Participants: drawing.Participants,
		LastModified: drawing.LastModified,
		CreatedAt:    drawing.CreatedAt,
	}
}

// NewDrawingResponseSlice converts a slice of models into DTOs.
func NewDrawingResponseSlice(drawings []models.Drawing) []DrawingResponse {
	out := make([]DrawingResponse, 0, len(drawings))
	for _, drawing := range drawings {
		out = append(out, NewDrawingResponse(drawing))
	}
	return out
}
