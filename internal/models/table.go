package models

import (
	"time"

	"gorm.io/datatypes"
)

// TableColumn describes one typed column of a collaborative table.
type TableColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table is a collaborative grid of string cells. After any write every
// row must have a cell slot for every declared column.
type Table struct {
	ID           uint                             `gorm:"primaryKey" json:"id"`
	Title        string                           `gorm:"size:255;not null" json:"title"`
	GroupID      *uint                            `gorm:"index" json:"group_id,omitempty"`
	CreatorID    string                           `gorm:"size:36;index" json:"creator_id"`
	Columns      datatypes.JSONSlice[TableColumn] `gorm:"type:json" json:"columns"`
	Rows         datatypes.JSONSlice[[]string]    `gorm:"type:json" json:"rows"`
	LastModified time.Time                        `json:"last_modified"`
	CreatedAt    time.Time                        `json:"created_at"`
	UpdatedAt    time.Time                        `json:"updated_at"`
}

// PadRows grows the row set to at least rowCount rows and pads every row
// to the declared column count.
func (t *Table) PadRows(rowCount int) {
	for len(t.Rows) < rowCount {
		t.Rows = append(t.Rows, make([]string, len(t.Columns)))
	}
	for i, row := range t.Rows {
		for len(row) < len(t.Columns) {
			row = append(row, "")
		}
		t.Rows[i] = row
	}
}
