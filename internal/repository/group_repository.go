package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/models"
)

// GroupRepository persists chat groups and their embedded member lists.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	FindByID(ctx context.Context, id uint) (*models.Group, error)
	ListByMember(ctx context.Context, userID string) ([]models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id uint) error
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository constructs the group repository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) FindByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("group")
		}
		return nil, err
	}
	return &group, nil
}

// ListByMember scans the embedded member documents. Membership lists are
// small (direct messages and team-sized groups), so a substring match on
// the serialized user id is good enough and stays portable across the
// postgres and sqlite dialects.
func (r *groupRepository) ListByMember(ctx context.Context, userID string) ([]models.Group, error) {
	var groups []models.Group
	pattern := `%"user_id":"` + userID + `"%`
	if err := r.db.WithContext(ctx).
		Where("members LIKE ?", pattern).
		Order("updated_at DESC").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Save(group).Error
}

// Delete removes the group together with its messages and threads.
func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.Thread{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Group{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("group")
		}
		return nil
	})
}
