package dto

import (
	"time"

	"github.com/teamhive/hive-go-api/internal/models"
)

// TableCreateRequest creates a collaborative table.
type TableCreateRequest struct {
	Title   string               `json:"title" validate:"required,min=1,max=255"`
	GroupID *uint                `json:"group_id"`
	Columns []models.TableColumn `json:"columns" validate:"required,dive"`
	Rows    [][]string           `json:"rows"`
}

// TableUpdateRequest replaces mutable table fields via REST.
type TableUpdateRequest struct {
	Title   *string               `json:"title" validate:"omitempty,min=1,max=255"`
	Columns *[]models.TableColumn `json:"columns"`
	Rows    *[][]string           `json:"rows"`
}

// TableResponse is the serialized representation of a table. It is also
// the payload of the full-refresh tableUpdate broadcast.
type TableResponse struct {
	ID           uint                 `json:"id"`
	Title        string               `json:"title"`
	GroupID      *uint                `json:"group_id,omitempty"`
	CreatorID    string               `json:"creator_id"`
	Columns      []models.TableColumn `json:"columns"`
	Rows         [][]string           `json:"rows"`
	LastModified time.Time            `json:"last_modified"`
	CreatedAt    time.Time            `json:"created_at"`
}

// NewTableResponse converts a model into a DTO.
func NewTableResponse(table models.Table) TableResponse {
	return TableResponse{
		ID:           table.ID,
		Title:        table.Title,
		GroupID:      table.GroupID,
		CreatorID:    table.CreatorID,
		Columns:      table.Columns,
		Rows:         table.Rows,
		LastModified: table.LastModified,
		CreatedAt:    table.CreatedAt,
	}
}

// NewTableResponseSlice converts a slice of models into DTOs.
func NewTableResponseSlice(tables []models.Table) []TableResponse {
	out := make([]TableResponse, 0, len(tables))
	for _, table := range tables {
		out = append(out, NewTableResponse(table))
	}
	return out
}
