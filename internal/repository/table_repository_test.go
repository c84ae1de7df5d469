package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/models"
)

func TestTableRepositoryRoundTripsColumnsAndRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTableRepository(db)
	ctx := context.Background()

	table := models.Table{
		Title:     "Sprint board",
		CreatorID: "u1",
		Columns:   datatypes.JSONSlice[models.TableColumn]{{Name: "Task", Type: "text"}, {Name: "Owner", Type: "text"}},
		Rows:      datatypes.JSONSlice[[]string]{{"ship api", "Ada"}},
	}
	require.NoError(t, repo.Create(ctx, &table))

	loaded, err := repo.FindByID(ctx, table.ID)
	require.NoError(t, err)
	require.Equal(t, "Sprint board", loaded.Title)
	require.Len(t, loaded.Columns, 2)
	require.Equal(t, "Owner", loaded.Columns[1].Name)
	require.Equal(t, []string{"ship api", "Ada"}, []string(loaded.Rows[0]))

	loaded.Rows = append(loaded.Rows, []string{"write docs", "Ben"})
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.FindByID(ctx, table.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Rows, 2)
	require.Equal(t, "write docs", reloaded.Rows[1][0])
}

func TestTableRepositoryListOrdersByLastModified(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTableRepository(db)
	ctx := context.Background()

	old := models.Table{Title: "old", CreatorID: "u1", LastModified: time.Now().Add(-time.Hour)}
	fresh := models.Table{Title: "fresh", CreatorID: "u1", LastModified: time.Now()}
	require.NoError(t, repo.Create(ctx, &old))
	require.NoError(t, repo.Create(ctx, &fresh))

	tables, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	require.Equal(t, "fresh", tables[0].Title)
	require.Equal(t, "old", tables[1].Title)
}

func TestTableRepositoryDeleteUnknown(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTableRepository(db)

	err := repo.Delete(context.Background(), 404)
	require.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = repo.FindByID(context.Background(), 404)
	require.True(t, errors.Is(err, apperrors.ErrNotFound))
}
