package dto

import (
	"encoding/json"

	"github.com/teamhive/hive-go-api/internal/models"
)

// Inbound event payloads. Field names follow the wire protocol spoken by
// existing clients, hence the camelCase JSON tags.

// JoinGroupPayload subscribes the connection to a group room.
type JoinGroupPayload struct {
	GroupID uint `json:"groupId" validate:"required"`
}

// LeaveGroupPayload unsubscribes the connection from a group room.
type LeaveGroupPayload struct {
	GroupID uint `json:"groupId" validate:"required"`
}

// SendMessagePayload posts a top-level message into a group.
type SendMessagePayload struct {
	GroupID     uint                `json:"groupId" validate:"required"`
	Content     string              `json:"content" validate:"required,min=1,max=4000"`
	Attachments []models.Attachment `json:"attachments" validate:"omitempty,dive"`
}

// StartThreadPayload starts (or continues) a thread under a message.
type StartThreadPayload struct {
	MessageID uint   `json:"messageId" validate:"required"`
	Content   string `json:"content" validate:"required,min=1,max=4000"`
}

// SendThreadMessagePayload posts a reply into an existing thread.
type SendThreadMessagePayload struct {
	ThreadID uint   `json:"threadId" validate:"required"`
	Content  string `json:"content" validate:"required,min=1,max=4000"`
	ParentID *uint  `json:"parentId"`
}

// JoinThreadPayload subscribes the connection to a thread room.
type JoinThreadPayload struct {
	ThreadID uint `json:"threadId" validate:"required"`
}

// LeaveThreadPayload unsubscribes the connection from a thread room.
type LeaveThreadPayload struct {
	ThreadID uint `json:"threadId" validate:"required"`
}

// MarkAsReadPayload appends read receipts for the actor.
type MarkAsReadPayload struct {
	MessageIDs []uint `json:"messageIds" validate:"required,min=1"`
}

// JoinDrawingPayload adds the actor to a drawing's collaborator set.
type JoinDrawingPayload struct {
	DrawingID uint `json:"drawingId" validate:"required"`
}

// LeaveDrawingPayload removes the actor from a drawing's collaborator set.
type LeaveDrawingPayload struct {
	DrawingID uint `json:"drawingId" validate:"required"`
}

// DrawingActionPayload is a transient stroke event relayed verbatim.
type DrawingActionPayload struct {
	DrawingID uint            `json:"drawingId" validate:"required"`
	Action    json.RawMessage `json:"action"`
}

// SaveDrawingPayload persists a full canvas snapshot.
type SaveDrawingPayload struct {
	DrawingID  uint   `json:"drawingId" validate:"required"`
	CanvasData string `json:"canvasData"`
}

// ClearDrawingPayload wipes the canvas for every participant.
type ClearDrawingPayload struct {
	DrawingID uint `json:"drawingId" validate:"required"`
}

// JoinTablePayload adds the actor to a table's active-editor list.
type JoinTablePayload struct {
	TableID uint `json:"tableId" validate:"required"`
}

// LeaveTablePayload removes the actor from a table's active-editor list.
type LeaveTablePayload struct {
	TableID uint `json:"tableId" validate:"required"`
}

// UpdateCellPayload writes one cell; rows are padded before indexing.
type UpdateCellPayload struct {
	TableID  uint   `json:"tableId" validate:"required"`
	RowIndex int    `json:"rowIndex" validate:"min=0"`
	ColIndex int    `json:"colIndex" validate:"min=0"`
	Value    string `json:"value"`
}

// CellEditingPayload is the advisory soft-lock indicator.
type CellEditingPayload struct {
	TableID  uint `json:"tableId" validate:"required"`
	RowIndex int  `json:"rowIndex" validate:"min=0"`
	ColIndex int  `json:"colIndex" validate:"min=0"`
}

// AddColumnPayload appends a typed column to a table.
type AddColumnPayload struct {
	TableID    uint   `json:"tableId" validate:"required"`
	ColumnName string `json:"columnName" validate:"required,min=1,max=255"`
}

// AddRowPayload appends an empty row sized to the current column count.
type AddRowPayload struct {
	TableID uint `json:"tableId" validate:"required"`
}

// MarkNotificationReadPayload flags one owned notification as read.
type MarkNotificationReadPayload struct {
	NotificationID uint `json:"notificationId" validate:"required"`
}

// Outbound event payloads.

// UserRef identifies a user in a broadcast.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserEvent wraps a user reference for userJoined/userLeft notices.
type UserEvent struct {
	User UserRef `json:"user"`
}

// GroupUserView is one entry of a full member-list refresh.
type GroupUserView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Role   string `json:"role"`
}

// GroupUsersEvent carries the full member list broadcast on join.
type GroupUsersEvent struct {
	Users []GroupUserView `json:"users"`
}

// MessagesReadEvent announces batched read receipts to a group room.
type MessagesReadEvent struct {
	MessageIDs []uint  `json:"messageIds"`
	User       UserRef `json:"user"`
}

// DrawingParticipantsEvent carries the full collaborator roster.
type DrawingParticipantsEvent struct {
	Participants []UserRef `json:"participants"`
}

// DrawingActionEvent relays a stroke annotated with the sender identity.
type DrawingActionEvent struct {
	DrawingID uint            `json:"drawingId"`
	Action    json.RawMessage `json:"action,omitempty"`
	UserID    string          `json:"userId"`
	UserName  string          `json:"userName"`
}

// DrawingUpdatedEvent tells a group that a snapshot was saved.
type DrawingUpdatedEvent struct {
	DrawingID uint    `json:"drawingId"`
	UpdatedBy UserRef `json:"updatedBy"`
}

// ClearDrawingEvent instructs other sessions to wipe their canvases.
type ClearDrawingEvent struct {
	DrawingID uint    `json:"drawingId"`
	ClearedBy UserRef `json:"clearedBy"`
}

// CellUpdateEvent announces a single-cell write to other editors.
type CellUpdateEvent struct {
	RowIndex  int     `json:"rowIndex"`
	ColIndex  int     `json:"colIndex"`
	Value     string  `json:"value"`
	UpdatedBy UserRef `json:"updatedBy"`
}

// CellEditingEvent is the relayed soft-lock indicator.
type CellEditingEvent struct {
	RowIndex int     `json:"rowIndex"`
	ColIndex int     `json:"colIndex"`
	User     UserRef `json:"user"`
}

// UnreadCountEvent answers getUnreadNotificationCount.
type UnreadCountEvent struct {
	Count int64 `json:"count"`
}

// NotificationMarkedReadEvent confirms a single mark-read.
type NotificationMarkedReadEvent struct {
	NotificationID uint `json:"notificationId"`
}

// ErrorEvent is the terminal error frame sent to the caller only.
type ErrorEvent struct {
	Message string `json:"message"`
}
