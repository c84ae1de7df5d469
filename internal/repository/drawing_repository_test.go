package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/models"
)

func TestDrawingParticipantRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDrawingRepository(db)

	drawing := models.Drawing{Title: "board", CreatorID: "u1", Participants: []string{"u1"}}
	require.NoError(t, repo.Create(context.Background(), &drawing))

	updated, err := repo.AddParticipant(context.Background(), drawing.ID, "u2")
	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u2"}, []string(updated.Participants))

	updated, err = repo.AddParticipant(context.Background(), drawing.ID, "u2")
	require.NoError(t, err)
	require.Len(t, []string(updated.Participants), 2, "re-joining does not duplicate")

	updated, err = repo.RemoveParticipant(context.Background(), drawing.ID, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"u2"}, []string(updated.Participants))
}

func TestSaveCanvasSetsAndClearsTheSnapshot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDrawingRepository(db)

	drawing := models.Drawing{Title: "board", CreatorID: "u1"}
	require.NoError(t, repo.Create(context.Background(), &drawing))

	canvas := `{"shapes":["rect"]}`
	require.NoError(t, repo.SaveCanvas(context.Background(), drawing.ID, &canvas))

	stored, err := repo.FindByID(context.Background(), drawing.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CanvasData)
	require.Equal(t, canvas, *stored.CanvasData)

	require.NoError(t, repo.SaveCanvas(context.Background(), drawing.ID, nil))
	stored, err = repo.FindByID(context.Background(), drawing.ID)
	require.NoError(t, err)
	require.Nil(t, stored.CanvasData, "clear wipes the snapshot")
}

func TestSaveCanvasUnknownDrawing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDrawingRepository(db)

	canvas := "{}"
	err := repo.SaveCanvas(context.Background(), 404, &canvas)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
