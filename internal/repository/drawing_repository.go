package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/models"
)

// DrawingRepository persists drawings, their canvas snapshots and the
// durable collaborator set.
type DrawingRepository interface {
	Create(ctx context.Context, drawing *models.Drawing) error
	FindByID(ctx context.Context, id uint) (*models.Drawing, error)
	List(ctx context.Context) ([]models.Drawing, error)
	AddParticipant(ctx context.Context, drawingID uint, userID string) (*models.Drawing, error)
	RemoveParticipant(ctx context.Context, drawingID uint, userID string) (*models.Drawing, error)
	SaveCanvas(ctx context.Context, drawingID uint, canvasData *string) error
	Delete(ctx context.Context, id uint) error
}

type drawingRepository struct {
	db *gorm.DB
}

// NewDrawingRepository constructs the drawing repository.
func NewDrawingRepository(db *gorm.DB) DrawingRepository {
	return &drawingRepository{db: db}
}

func (r *drawingRepository) Create(ctx context.Context, drawing *models.Drawing) error {
	return r.db.WithContext(ctx).Create(drawing).Error
}

func (r *drawingRepository) FindByID(ctx context.Context, id uint) (*models.Drawing, error) {
	var drawing models.Drawing
	if err := r.db.WithContext(ctx).First(&drawing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("drawing")
		}
		return nil, err
	}
	return &drawing, nil
}

func (r *drawingRepository) List(ctx context.Context) ([]models.Drawing, error) {
	var drawings []models.Drawing
	if err := r.db.WithContext(ctx).Order("last_modified DESC").Find(&drawings).Error; err != nil {
		return nil, err
	}
	return drawings, nil
}

// AddParticipant joins the user to the collaborator set if absent and
// returns the drawing as stored afterwards.
func (r *drawingRepository) AddParticipant(ctx context.Context, drawingID uint, userID string) (*models.Drawing, error) {
	var drawing models.Drawing
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := firstForUpdate(tx, &drawing, drawingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("drawing")
			}
			return err
		}
		if drawing.HasParticipant(userID) {
			return nil
		}
		drawing.Participants = append(drawing.Participants, userID)
		return tx.Model(&drawing).Update("participants", drawing.Participants).Error
	})
	if err != nil {
		return nil, err
	}
	return &drawing, nil
}

// RemoveParticipant drops the user from the collaborator set and returns
// the drawing as stored afterwards.
func (r *drawingRepository) RemoveParticipant(ctx context.Context, drawingID uint, userID string) (*models.Drawing, error) {
	var drawing models.Drawing
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := firstForUpdate(tx, &drawing, drawingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("drawing")
			}
			return err
		}
		remaining := drawing.Participants[:0]
		for _, participant := range drawing.Participants {
			if participant != userID {
				remaining = append(remaining, participant)
			}
		}
		if len(remaining) == len(drawing.Participants) {
			return nil
		}
		drawing.Participants = remaining
		return tx.Model(&drawing).Update("participants", drawing.Participants).Error
	})
	if err != nil {
		return nil, err
	}
	return &drawing, nil
}

// SaveCanvas stores a snapshot; nil clears the canvas.
func (r *drawingRepository) SaveCanvas(ctx context.Context, drawingID uint, canvasData *string) error {
	result := r.db.WithContext(ctx).Model(&models.Drawing{}).
		Where("id = ?", drawingID).
		Updates(map[string]interface{}{"canvas_data": canvasData, "last_modified": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("drawing")
	}
	return nil
}

func (r *drawingRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Drawing{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("drawing")
	}
	return nil
}
