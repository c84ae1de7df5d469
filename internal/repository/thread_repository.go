package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/models"
)

// ThreadRepository persists threads. At most one thread may exist per
// parent message; the unique index on parent_message_id is the arbiter
// under concurrent creation.
type ThreadRepository interface {
	FindOrCreate(ctx context.Context, thread *models.Thread) (*models.Thread, bool, error)
	FindByID(ctx context.Context, id uint) (*models.Thread, error)
	FindByParentMessage(ctx context.Context, parentMessageID uint) (*models.Thread, error)
	AddParticipant(ctx context.Context, threadID uint, userID string) error
	Touch(ctx context.Context, threadID uint, at time.Time) error
}

type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository constructs the thread repository.
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

// FindOrCreate inserts the thread, or loads the winner when another
// writer created one for the same parent first. The bool reports whether
// this call created the thread.
func (r *threadRepository) FindOrCreate(ctx context.Context, thread *models.Thread) (*models.Thread, bool, error) {
	err := r.db.WithContext(ctx).Create(thread).Error
	if err == nil {
		return thread, true, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, false, err
	}

	existing, findErr := r.FindByParentMessage(ctx, thread.ParentMessageID)
	if findErr != nil {
		return nil, false, findErr
	}
	return existing, false, nil
}

func (r *threadRepository) FindByID(ctx context.Context, id uint) (*models.Thread, error) {
	var thread models.Thread
	if err := r.db.WithContext(ctx).First(&thread, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("thread")
		}
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepository) FindByParentMessage(ctx context.Context, parentMessageID uint) (*models.Thread, error) {
	var thread models.Thread
	if err := r.db.WithContext(ctx).First(&thread, "parent_message_id = ?", parentMessageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("thread")
		}
		return nil, err
	}
	return &thread, nil
}

// AddParticipant appends the user to the participant set if absent.
func (r *threadRepository) AddParticipant(ctx context.Context, threadID uint, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var thread models.Thread
		if err := firstForUpdate(tx, &thread, threadID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("thread")
			}
			return err
		}
		if thread.HasParticipant(userID) {
			return nil
		}
		thread.Participants = append(thread.Participants, userID)
		return tx.Model(&thread).Update("participants", thread.Participants).Error
	})
}

func (r *threadRepository) Touch(ctx context.Context, threadID uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Thread{}).
		Where("id = ?", threadID).
		Update("last_activity", at).Error
}
