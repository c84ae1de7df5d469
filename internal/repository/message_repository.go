package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/models"
)

// MessageRepository persists messages and their embedded read receipts.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id uint) (*models.Message, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Message, error)
	ListByGroup(ctx context.Context, groupID uint, before time.Time, limit int) ([]models.Message, error)
	ListByThread(ctx context.Context, threadID uint) ([]models.Message, error)
	AppendReadReceipt(ctx context.Context, messageID uint, receipt models.ReadReceipt) (bool, error)
	SetThread(ctx context.Context, messageID, threadID uint) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs the message repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) FindByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("message")
		}
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var messages []models.Message
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// ListByGroup pages backwards through a group's history. The newest
// matching page is fetched in reverse order and flipped so callers
// always receive chronological output.
func (r *messageRepository) ListByGroup(ctx context.Context, groupID uint, before time.Time, limit int) ([]models.Message, error) {
	query := r.db.WithContext(ctx).
		Where("group_id = ? AND parent_message_id IS NULL", groupID)
	if !before.IsZero() {
		query = query.Where("created_at < ?", before)
	}

	var messages []models.Message
	if err := query.Order("created_at DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *messageRepository) ListByThread(ctx context.Context, threadID uint) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Where("thread_id = ? AND parent_message_id IS NOT NULL", threadID).
		Order("created_at").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// AppendReadReceipt adds the receipt unless the user already has one.
// The check and the write run in one transaction so concurrent marks
// from two devices of the same user never duplicate the entry. Returns
// whether a receipt was actually appended.
func (r *messageRepository) AppendReadReceipt(ctx context.Context, messageID uint, receipt models.ReadReceipt) (bool, error) {
	appended := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var message models.Message
		if err := firstForUpdate(tx, &message, messageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("message")
			}
			return err
		}
		if message.ReadByUser(receipt.UserID) {
			return nil
		}
		message.ReadBy = append(message.ReadBy, receipt)
		if err := tx.Model(&message).Update("read_by", message.ReadBy).Error; err != nil {
			return err
		}
		appended = true
		return nil
	})
	return appended, err
}

// SetThread back-references the thread on the parent message. Guarded so
// a thread id, once set, is never replaced.
func (r *messageRepository) SetThread(ctx context.Context, messageID, threadID uint) error {
	return r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND thread_id IS NULL", messageID).
		Update("thread_id", threadID).Error
}
