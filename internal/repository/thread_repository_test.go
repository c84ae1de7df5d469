package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/models"
)

func TestFindOrCreateFirstWriterWins(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThreadRepository(db)

	winner, created, err := repo.FindOrCreate(context.Background(), &models.Thread{
		ParentMessageID: 1,
		GroupID:         1,
		Participants:    []string{"u1"},
		LastActivity:    time.Now(),
	})
	require.NoError(t, err)
	require.True(t, created)

	loser, created, err := repo.FindOrCreate(context.Background(), &models.Thread{
		ParentMessageID: 1,
		GroupID:         1,
		Participants:    []string{"u2"},
		LastActivity:    time.Now(),
	})
	require.NoError(t, err)
	require.False(t, created, "duplicate start resolves to the existing thread")
	require.Equal(t, winner.ID, loser.ID)
	require.Equal(t, []string{"u1"}, []string(loser.Participants), "loser sees the winner's state")
}

func TestFindOrCreateDistinctParents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThreadRepository(db)

	first, created, err := repo.FindOrCreate(context.Background(), &models.Thread{ParentMessageID: 1, GroupID: 1})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := repo.FindOrCreate(context.Background(), &models.Thread{ParentMessageID: 2, GroupID: 1})
	require.NoError(t, err)
	require.True(t, created)
	require.NotEqual(t, first.ID, second.ID)
}

func TestAddParticipantIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThreadRepository(db)

	thread, _, err := repo.FindOrCreate(context.Background(), &models.Thread{
		ParentMessageID: 1,
		GroupID:         1,
		Participants:    []string{"u1"},
	})
	require.NoError(t, err)

	require.NoError(t, repo.AddParticipant(context.Background(), thread.ID, "u2"))
	require.NoError(t, repo.AddParticipant(context.Background(), thread.ID, "u2"))

	stored, err := repo.FindByID(context.Background(), thread.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u2"}, []string(stored.Participants))
}

func TestAddParticipantUnknownThread(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThreadRepository(db)

	err := repo.AddParticipant(context.Background(), 404, "u1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTouchAdvancesLastActivity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThreadRepository(db)

	thread, _, err := repo.FindOrCreate(context.Background(), &models.Thread{
		ParentMessageID: 1,
		GroupID:         1,
		LastActivity:    time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, repo.Touch(context.Background(), thread.ID, now))

	stored, err := repo.FindByID(context.Background(), thread.ID)
	require.NoError(t, err)
	require.WithinDuration(t, now, stored.LastActivity, time.Second)
}
