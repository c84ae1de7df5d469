package realtime

import "fmt"

// Inbound event names accepted from clients.
const (
	EventJoinGroup                  = "joinGroup"
	EventLeaveGroup                 = "leaveGroup"
	EventSendMessage                = "sendMessage"
	EventStartThread                = "startThread"
	EventSendThreadMessage          = "sendThreadMessage"
	EventJoinThread                 = "joinThread"
	EventLeaveThread                = "leaveThread"
	EventMarkAsRead                 = "markAsRead"
	EventJoinDrawing                = "joinDrawing"
	EventLeaveDrawing               = "leaveDrawing"
	EventDrawingAction              = "drawingAction"
	EventSaveDrawing                = "saveDrawing"
	EventClearDrawing               = "clearDrawing"
	EventJoinTable                  = "joinTable"
	EventLeaveTable                 = "leaveTable"
	EventUpdateCell                 = "updateCell"
	EventCellEditing                = "cellEditing"
	EventAddColumn                  = "addColumn"
	EventAddRow                     = "addRow"
	EventMarkNotificationRead       = "markNotificationRead"
	EventMarkAllNotificationsRead   = "markAllNotificationsRead"
	EventGetUnreadNotificationCount = "getUnreadNotificationCount"
)

// Outbound event names emitted to clients.
const (
	EventNewMessage               = "newMessage"
	EventGroupUsers               = "groupUsers"
	EventUserJoined               = "userJoined"
	EventUserLeft                 = "userLeft"
	EventThreadMessage            = "threadMessage"
	EventMessagesRead             = "messagesRead"
	EventDrawingParticipants      = "drawingParticipants"
	EventDrawingUpdated           = "drawingUpdated"
	EventTableUpdate              = "tableUpdate"
	EventCellUpdate               = "cellUpdate"
	EventTableActiveUsers         = "tableActiveUsers"
	EventNewNotification          = "newNotification"
	EventNotificationMarkedRead   = "notificationMarkedRead"
	EventAllNotificationsRead     = "allNotificationsMarkedRead"
	EventUnreadNotificationCount  = "unreadNotificationCount"
	EventError                    = "error"
)

// Room key builders. Every broadcast is addressed to a key derived from
// the entity kind and id; personal pushes use the raw user id.
func GroupRoom(id uint) string   { return fmt.Sprintf("group:%d", id) }
func ThreadRoom(id uint) string  { return fmt.Sprintf("thread:%d", id) }
func TableRoom(id uint) string   { return fmt.Sprintf("table:%d", id) }
func DrawingRoom(id uint) string { return fmt.Sprintf("drawing:%d", id) }
