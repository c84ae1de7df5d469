package service

import (
	"context"
	"sync"
	"time"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/models"
	"github.com/teamhive/hive-go-api/internal/realtime"
)

// Shared in-memory fakes for the service tests.

type emittedFrame struct {
	Room    string
	Event   string
	Payload interface{}
}

type stubEmitter struct {
	mu     sync.Mutex
	frames []emittedFrame
}

func (s *stubEmitter) record(room, event string, payload interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, emittedFrame{Room: room, Event: event, Payload: payload})
}

func (s *stubEmitter) EmitToUser(userID, event string, payload interface{}) {
	s.record(userID, event, payload)
}

func (s *stubEmitter) EmitToRoom(roomKey, event string, payload interface{}) {
	s.record(roomKey, event, payload)
}

func (s *stubEmitter) EmitToRoomExceptSender(roomKey string, _ *realtime.Session, event string, payload interface{}) {
	s.record(roomKey+"!sender", event, payload)
}

func (s *stubEmitter) EmitToSession(sess *realtime.Session, event string, payload interface{}) {
	s.record("session:"+sess.UserID(), event, payload)
}

func (s *stubEmitter) events(event string) []emittedFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []emittedFrame
	for _, frame := range s.frames {
		if frame.Event == event {
			out = append(out, frame)
		}
	}
	return out
}

type stubNotifier struct {
	batches [][]models.Notification
}

func (s *stubNotifier) Dispatch(_ context.Context, notifications []models.Notification) {
	if len(notifications) > 0 {
		s.batches = append(s.batches, notifications)
	}
}

func (s *stubNotifier) all() []models.Notification {
	var out []models.Notification
	for _, batch := range s.batches {
		out = append(out, batch...)
	}
	return out
}

type stubGroupRepo struct {
	groups map[uint]models.Group
}

func (s *stubGroupRepo) Create(_ context.Context, group *models.Group) error {
	if s.groups == nil {
		s.groups = make(map[uint]models.Group)
	}
	group.ID = uint(len(s.groups) + 1)
	s.groups[group.ID] = *group
	return nil
}

func (s *stubGroupRepo) FindByID(_ context.Context, id uint) (*models.Group, error) {
	group, ok := s.groups[id]
	if !ok {
		return nil, apperrors.NotFound("group")
	}
	copied := group
	return &copied, nil
}

func (s *stubGroupRepo) ListByMember(_ context.Context, userID string) ([]models.Group, error) {
	var out []models.Group
	for _, group := range s.groups {
		if group.HasMember(userID) {
			out = append(out, group)
		}
	}
	return out, nil
}

func (s *stubGroupRepo) Update(_ context.Context, group *models.Group) error {
	s.groups[group.ID] = *group
	return nil
}

func (s *stubGroupRepo) Delete(_ context.Context, id uint) error {
	if _, ok := s.groups[id]; !ok {
		return apperrors.NotFound("group")
	}
	delete(s.groups, id)
	return nil
}

type stubUserRepo struct {
	users    map[string]models.User
	statuses map[string]string
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) error {
	if s.users == nil {
		s.users = make(map[string]models.User)
	}
	s.users[user.ID] = *user
	return nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	copied := user
	return &copied, nil
}

func (s *stubUserRepo) FindByIDs(_ context.Context, ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (s *stubUserRepo) List(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *stubUserRepo) Update(_ context.Context, user *models.User) error {
	s.users[user.ID] = *user
	return nil
}

func (s *stubUserRepo) UpdateStatus(_ context.Context, id, status string) error {
	if _, ok := s.users[id]; !ok {
		return apperrors.NotFound("user")
	}
	if s.statuses == nil {
		s.statuses = make(map[string]string)
	}
	s.statuses[id] = status
	return nil
}

func (s *stubUserRepo) MarkStaleAway(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type stubMessageRepo struct {
	messages map[uint]*models.Message
	nextID   uint
}

func (s *stubMessageRepo) Create(_ context.Context, message *models.Message) error {
	if s.messages == nil {
		s.messages = make(map[uint]*models.Message)
	}
	s.nextID++
	message.ID = s.nextID
	message.CreatedAt = time.Now()
	copied := *message
	s.messages[message.ID] = &copied
	return nil
}

func (s *stubMessageRepo) FindByID(_ context.Context, id uint) (*models.Message, error) {
	message, ok := s.messages[id]
	if !ok {
		return nil, apperrors.NotFound("message")
	}
	copied := *message
	return &copied, nil
}

func (s *stubMessageRepo) FindByIDs(_ context.Context, ids []uint) ([]models.Message, error) {
	var out []models.Message
	for _, id := range ids {
		if message, ok := s.messages[id]; ok {
			out = append(out, *message)
		}
	}
	return out, nil
}

func (s *stubMessageRepo) ListByGroup(_ context.Context, groupID uint, _ time.Time, _ int) ([]models.Message, error) {
	var out []models.Message
	for _, message := range s.messages {
		if message.GroupID == groupID && message.ParentMessageID == nil {
			out = append(out, *message)
		}
	}
	return out, nil
}

func (s *stubMessageRepo) ListByThread(_ context.Context, threadID uint) ([]models.Message, error) {
	var out []models.Message
	for _, message := range s.messages {
		if message.ThreadID != nil && *message.ThreadID == threadID && message.ParentMessageID != nil {
			out = append(out, *message)
		}
	}
	return out, nil
}

func (s *stubMessageRepo) AppendReadReceipt(_ context.Context, messageID uint, receipt models.ReadReceipt) (bool, error) {
	message, ok := s.messages[messageID]
	if !ok {
		return false, apperrors.NotFound("message")
	}
	if message.ReadByUser(receipt.UserID) {
		return false, nil
	}
	message.ReadBy = append(message.ReadBy, receipt)
	return true, nil
}

func (s *stubMessageRepo) SetThread(_ context.Context, messageID, threadID uint) error {
	message, ok := s.messages[messageID]
	if !ok {
		return apperrors.NotFound("message")
	}
	if message.ThreadID == nil {
		id := threadID
		message.ThreadID = &id
	}
	return nil
}

type stubThreadRepo struct {
	threads  map[uint]*models.Thread
	byParent map[uint]uint
	nextID   uint
}

func (s *stubThreadRepo) FindOrCreate(_ context.Context, thread *models.Thread) (*models.Thread, bool, error) {
	if s.threads == nil {
		s.threads = make(map[uint]*models.Thread)
		s.byParent = make(map[uint]uint)
	}
	if existingID, ok := s.byParent[thread.ParentMessageID]; ok {
		copied := *s.threads[existingID]
		return &copied, false, nil
	}
	s.nextID++
	thread.ID = s.nextID
	copied := *thread
	s.threads[thread.ID] = &copied
	s.byParent[thread.ParentMessageID] = thread.ID
	return thread, true, nil
}

func (s *stubThreadRepo) FindByID(_ context.Context, id uint) (*models.Thread, error) {
	thread, ok := s.threads[id]
	if !ok {
		return nil, apperrors.NotFound("thread")
	}
	copied := *thread
	return &copied, nil
}

func (s *stubThreadRepo) FindByParentMessage(_ context.Context, parentMessageID uint) (*models.Thread, error) {
	id, ok := s.byParent[parentMessageID]
	if !ok {
		return nil, apperrors.NotFound("thread")
	}
	copied := *s.threads[id]
	return &copied, nil
}

func (s *stubThreadRepo) AddParticipant(_ context.Context, threadID uint, userID string) error {
	thread, ok := s.threads[threadID]
	if !ok {
		return apperrors.NotFound("thread")
	}
	if !thread.HasParticipant(userID) {
		thread.Participants = append(thread.Participants, userID)
	}
	return nil
}

func (s *stubThreadRepo) Touch(_ context.Context, threadID uint, at time.Time) error {
	if thread, ok := s.threads[threadID]; ok {
		thread.LastActivity = at
	}
	return nil
}

type stubTableRepo struct {
	tables map[uint]models.Table
	nextID uint
}

func (s *stubTableRepo) Create(_ context.Context, table *models.Table) error {
	if s.tables == nil {
		s.tables = make(map[uint]models.Table)
	}
	s.nextID++
	table.ID = s.nextID
	s.tables[table.ID] = *table
	return nil
}

func (s *stubTableRepo) FindByID(_ context.Context, id uint) (*models.Table, error) {
	table, ok := s.tables[id]
	if !ok {
		return nil, apperrors.NotFound("table")
	}
	copied := table
	return &copied, nil
}

func (s *stubTableRepo) List(_ context.Context) ([]models.Table, error) {
	var out []models.Table
	for _, table := range s.tables {
		out = append(out, table)
	}
	return out, nil
}

func (s *stubTableRepo) Save(_ context.Context, table *models.Table) error {
	s.tables[table.ID] = *table
	return nil
}

func (s *stubTableRepo) Delete(_ context.Context, id uint) error {
	if _, ok := s.tables[id]; !ok {
		return apperrors.NotFound("table")
	}
	delete(s.tables, id)
	return nil
}

type stubDrawingRepo struct {
	drawings map[uint]*models.Drawing
	nextID   uint
}

func (s *stubDrawingRepo) Create(_ context.Context, drawing *models.Drawing) error {
	if s.drawings == nil {
		s.drawings = make(map[uint]*models.Drawing)
	}
	s.nextID++
	drawing.ID = s.nextID
	copied := *drawing
	s.drawings[drawing.ID] = &copied
	return nil
}

func (s *stubDrawingRepo) FindByID(_ context.Context, id uint) (*models.Drawing, error) {
	drawing, ok := s.drawings[id]
	if !ok {
		return nil, apperrors.NotFound("drawing")
	}
	copied := *drawing
	return &copied, nil
}

func (s *stubDrawingRepo) List(_ context.Context) ([]models.Drawing, error) {
	var out []models.Drawing
	for _, drawing := range s.drawings {
		out = append(out, *drawing)
	}
	return out, nil
}

func (s *stubDrawingRepo) AddParticipant(_ context.Context, drawingID uint, userID string) (*models.Drawing, error) {
	drawing, ok := s.drawings[drawingID]
	if !ok {
		return nil, apperrors.NotFound("drawing")
	}
	if !drawing.HasParticipant(userID) {
		drawing.Participants = append(drawing.Participants, userID)
	}
	copied := *drawing
	return &copied, nil
}

func (s *stubDrawingRepo) RemoveParticipant(_ context.Context, drawingID uint, userID string) (*models.Drawing, error) {
	drawing, ok := s.drawings[drawingID]
	if !ok {
		return nil, apperrors.NotFound("drawing")
	}
	remaining := drawing.Participants[:0]
	for _, participant := range drawing.Participants {
		if participant != userID {
			remaining = append(remaining, participant)
		}
	}
	drawing.Participants = remaining
	copied := *drawing
	return &copied, nil
}

func (s *stubDrawingRepo) SaveCanvas(_ context.Context, drawingID uint, canvasData *string) error {
	drawing, ok := s.drawings[drawingID]
	if !ok {
		return apperrors.NotFound("drawing")
	}
	drawing.CanvasData = canvasData
	drawing.LastModified = time.Now()
	return nil
}

func (s *stubDrawingRepo) Delete(_ context.Context, id uint) error {
	if _, ok := s.drawings[id]; !ok {
		return apperrors.NotFound("drawing")
	}
	delete(s.drawings, id)
	return nil
}
