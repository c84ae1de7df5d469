package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/dto"
	"github.com/teamhive/hive-go-api/internal/models"
	"github.com/teamhive/hive-go-api/internal/realtime"
	"github.com/teamhive/hive-go-api/internal/repository"
)

const defaultColumnType = "text"

// TableService implements the collaborative table events plus REST CRUD.
type TableService interface {
	realtime.TableEvents
	Create(ctx context.Context, creatorID string, req dto.TableCreateRequest) (dto.TableResponse, error)
	Get(ctx context.Context, id uint) (dto.TableResponse, error)
	List(ctx context.Context) ([]dto.TableResponse, error)
	Update(ctx context.Context, id uint, actorID string, req dto.TableUpdateRequest) (dto.TableResponse, error)
	Delete(ctx context.Context, id uint, actorID string) error
	SweepSession(sess *realtime.Session)
}

type tableService struct {
	tables    repository.TableRepository
	emitter   realtime.Emitter
	registry  *realtime.Registry
	notifier  notificationDispatcher
	groups    repository.GroupRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger

	// activeEditors tracks, per table, who currently has it open. This
	// is process-local working state, rebuilt as clients reconnect.
	mu            sync.Mutex
	activeEditors map[uint]map[string]string
}

// NewTableService constructs the table service.
func NewTableService(
	tables repository.TableRepository,
	groups repository.GroupRepository,
	emitter realtime.Emitter,
	registry *realtime.Registry,
	notifier notificationDispatcher,
	validate *validator.Validate,
	logger zerolog.Logger,
) TableService {
	return &tableService{
		tables:        tables,
		groups:        groups,
		emitter:       emitter,
		registry:      registry,
		notifier:      notifier,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "table_service").Logger(),
		activeEditors: make(map[uint]map[string]string),
	}
}

// JoinTable subscribes the session, sends it the current table state and
// refreshes the active-editor roster for the room.
func (s *tableService) JoinTable(ctx context.Context, sess *realtime.Session, payload dto.JoinTablePayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	table, err := s.tables.FindByID(ctx, payload.TableID)
	if err != nil {
		return err
	}

	s.registry.Join(realtime.TableRoom(table.ID), sess)
	s.addEditor(table.ID, sess)

	s.emitter.EmitToSession(sess, realtime.EventTableUpdate, dto.NewTableResponse(*table))
	s.broadcastActiveUsers(table.ID)
	return nil
}

// LeaveTable unsubscribes the session and refreshes the roster.
func (s *tableService) LeaveTable(ctx context.Context, sess *realtime.Session, payload dto.LeaveTablePayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	s.registry.Leave(realtime.TableRoom(payload.TableID), sess)
	s.removeEditor(payload.TableID, sess.UserID())
	s.broadcastActiveUsers(payload.TableID)
	return nil
}

// UpdateCell writes one cell. The grid is padded first so writes beyond
// the current row count land on freshly created empty rows.
func (s *tableService) UpdateCell(ctx context.Context, sess *realtime.Session, payload dto.UpdateCellPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	table, err := s.tables.FindByID(ctx, payload.TableID)
	if err != nil {
		return err
	}
	if payload.ColIndex >= len(table.Columns) {
		return apperrors.Validation("column index out of range")
	}

	table.PadRows(payload.RowIndex + 1)
	table.Rows[payload.RowIndex][payload.ColIndex] = s.sanitizer.Sanitize(payload.Value)
	table.LastModified = time.Now()
	if err := s.tables.Save(ctx, table); err != nil {
		return err
	}

	s.emitter.EmitToRoomExceptSender(realtime.TableRoom(table.ID), sess, realtime.EventCellUpdate, dto.CellUpdateEvent{
		RowIndex:  payload.RowIndex,
		ColIndex:  payload.ColIndex,
		Value:     table.Rows[payload.RowIndex][payload.ColIndex],
		UpdatedBy: dto.UserRef{ID: sess.UserID(), Name: sess.UserName()},
	})

	s.notifyGroup(ctx, *table, sess)
	return nil
}

// CellEditing relays the advisory soft-lock indicator. Nothing is
// persisted and nothing is enforced.
func (s *tableService) CellEditing(ctx context.Context, sess *realtime.Session, payload dto.CellEditingPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	s.emitter.EmitToRoomExceptSender(realtime.TableRoom(payload.TableID), sess, realtime.EventCellEditing, dto.CellEditingEvent{
		RowIndex: payload.RowIndex,
		ColIndex: payload.ColIndex,
		User:     dto.UserRef{ID: sess.UserID(), Name: sess.UserName()},
	})
	return nil
}

// AddColumn appends a text column, pads every row and broadcasts the
// full table so every editor converges on the new shape.
func (s *tableService) AddColumn(ctx context.Context, sess *realtime.Session, payload dto.AddColumnPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	table, err := s.tables.FindByID(ctx, payload.TableID)
	if err != nil {
		return err
	}

	table.Columns = append(table.Columns, models.TableColumn{
		Name: s.sanitizer.Sanitize(payload.ColumnName),
		Type: defaultColumnType,
	})
	table.PadRows(len(table.Rows))
	table.LastModified = time.Now()
	if err := s.tables.Save(ctx, table); err != nil {
		return err
	}

	s.emitter.EmitToRoom(realtime.TableRoom(table.ID), realtime.EventTableUpdate, dto.NewTableResponse(*table))
	return nil
}

// AddRow appends one empty row sized to the current column count.
func (s *tableService) AddRow(ctx context.Context, sess *realtime.Session, payload dto.AddRowPayload) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperrors.Validation(err.Error())
	}

	table, err := s.tables.FindByID(ctx, payload.TableID)
	if err != nil {
		return err
	}

	table.Rows = append(table.Rows, make([]string, len(table.Columns)))
	table.LastModified = time.Now()
	if err := s.tables.Save(ctx, table); err != nil {
		return err
	}

	s.emitter.EmitToRoom(realtime.TableRoom(table.ID), realtime.EventTableUpdate, dto.NewTableResponse(*table))
	return nil
}

func (s *tableService) Create(ctx context.Context, creatorID string, req dto.TableCreateRequest) (dto.TableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TableResponse{}, apperrors.Validation(err.Error())
	}

	table := models.Table{
		Title:        s.sanitizer.Sanitize(req.Title),
		GroupID:      req.GroupID,
		CreatorID:    creatorID,
		Columns:      req.Columns,
		Rows:         req.Rows,
		LastModified: time.Now(),
	}
	table.PadRows(len(table.Rows))
	if err := s.tables.Create(ctx, &table); err != nil {
		return dto.TableResponse{}, err
	}
	return dto.NewTableResponse(table), nil
}

func (s *tableService) Get(ctx context.Context, id uint) (dto.TableResponse, error) {
	table, err := s.tables.FindByID(ctx, id)
	if err != nil {
		return dto.TableResponse{}, err
	}
	return dto.NewTableResponse(*table), nil
}

func (s *tableService) List(ctx context.Context) ([]dto.TableResponse, error) {
	tables, err := s.tables.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewTableResponseSlice(tables), nil
}

// Update replaces mutable fields via REST and broadcasts the result to
// anyone editing live.
func (s *tableService) Update(ctx context.Context, id uint, actorID string, req dto.TableUpdateRequest) (dto.TableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TableResponse{}, apperrors.Validation(err.Error())
	}

	table, err := s.tables.FindByID(ctx, id)
	if err != nil {
		return dto.TableResponse{}, err
	}

	if req.Title != nil {
		table.Title = s.sanitizer.Sanitize(*req.Title)
	}
	if req.Columns != nil {
		table.Columns = *req.Columns
	}
	if req.Rows != nil {
		table.Rows = *req.Rows
	}
	table.PadRows(len(table.Rows))
	table.LastModified = time.Now()
	if err := s.tables.Save(ctx, table); err != nil {
		return dto.TableResponse{}, err
	}

	s.emitter.EmitToRoom(realtime.TableRoom(table.ID), realtime.EventTableUpdate, dto.NewTableResponse(*table))
	return dto.NewTableResponse(*table), nil
}

func (s *tableService) Delete(ctx context.Context, id uint, actorID string) error {
	table, err := s.tables.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if table.CreatorID != actorID {
		return apperrors.Forbidden("only the creator can delete a table")
	}
	return s.tables.Delete(ctx, id)
}

// SweepSession evicts a dropped session's user from every active-editor
// roster. Registered as a disconnect hook on the event router.
func (s *tableService) SweepSession(sess *realtime.Session) {
	s.mu.Lock()
	affected := make([]uint, 0)
	for tableID, editors := range s.activeEditors {
		if _, ok := editors[sess.UserID()]; !ok {
			continue
		}
		delete(editors, sess.UserID())
		if len(editors) == 0 {
			delete(s.activeEditors, tableID)
		}
		affected = append(affected, tableID)
	}
	s.mu.Unlock()

	for _, tableID := range affected {
		s.broadcastActiveUsers(tableID)
	}
}

func (s *tableService) addEditor(tableID uint, sess *realtime.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	editors, ok := s.activeEditors[tableID]
	if !ok {
		editors = make(map[string]string)
		s.activeEditors[tableID] = editors
	}
	editors[sess.UserID()] = sess.UserName()
}

func (s *tableService) removeEditor(tableID uint, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	editors, ok := s.activeEditors[tableID]
	if !ok {
		return
	}
	delete(editors, userID)
	if len(editors) == 0 {
		delete(s.activeEditors, tableID)
	}
}

func (s *tableService) broadcastActiveUsers(tableID uint) {
	s.mu.Lock()
	editors := s.activeEditors[tableID]
	users := make([]dto.UserRef, 0, len(editors))
	for id, name := range editors {
		users = append(users, dto.UserRef{ID: id, Name: name})
	}
	s.mu.Unlock()

	s.emitter.EmitToRoom(realtime.TableRoom(tableID), realtime.EventTableActiveUsers, users)
}

// notifyGroup fans a tableUpdate notification out to the linked group's
// members. Anyone currently active on the table already saw the live
// cellUpdate, so active editors and the actor are skipped. Tables
// without a group notify nobody.
func (s *tableService) notifyGroup(ctx context.Context, table models.Table, sess *realtime.Session) {
	if table.GroupID == nil {
		return
	}
	group, err := s.groups.FindByID(ctx, *table.GroupID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("group_id", *table.GroupID).Msg("failed to load group for table notification")
		return
	}

	s.mu.Lock()
	active := make(map[string]struct{}, len(s.activeEditors[table.ID]))
	for id := range s.activeEditors[table.ID] {
		active[id] = struct{}{}
	}
	s.mu.Unlock()

	notifications := make([]models.Notification, 0, len(group.Members))
	for _, member := range group.Members {
		if member.UserID == sess.UserID() {
			continue
		}
		if _, editing := active[member.UserID]; editing {
			continue
		}
		notifications = append(notifications, models.Notification{
			RecipientID: member.UserID,
			SenderID:    sess.UserID(),
			Type:        models.NotificationTableUpdate,
			GroupID:     table.GroupID,
			TableID:     &table.ID,
			Content:     sess.UserName() + " updated the table " + table.Title,
		})
	}
	s.notifier.Dispatch(ctx, notifications)
}
