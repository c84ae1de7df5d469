package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/dto"
	"github.com/teamhive/hive-go-api/internal/models"
	"github.com/teamhive/hive-go-api/internal/realtime"
)

func newUserFixture(t *testing.T) (UserService, *stubUserRepo, *realtime.Registry) {
	t.Helper()

	users := &stubUserRepo{}
	registry := realtime.NewRegistry(zerolog.Nop())
	service := NewUserService(users, registry, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	return service, users, registry
}

func TestUpdateStatusValidatesTheValue(t *testing.T) {
	service, users, _ := newUserFixture(t)
	require.NoError(t, users.Create(context.Background(), &models.User{ID: "u1", Name: "Ada"}))

	err := service.UpdateStatus(context.Background(), "u1", dto.UserStatusUpdateRequest{Status: "sleeping"})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	require.NoError(t, service.UpdateStatus(context.Background(), "u1", dto.UserStatusUpdateRequest{Status: models.StatusAway}))
	require.Equal(t, models.StatusAway, users.statuses["u1"])
}

func TestHandleConnectMarksTheUserOnline(t *testing.T) {
	service, users, _ := newUserFixture(t)
	require.NoError(t, users.Create(context.Background(), &models.User{ID: "u1", Name: "Ada"}))

	service.HandleConnect(context.Background(), "u1")
	require.Equal(t, models.StatusOnline, users.statuses["u1"])
}

func TestHandleDisconnectKeepsOtherDevicesOnline(t *testing.T) {
	service, users, registry := newUserFixture(t)
	require.NoError(t, users.Create(context.Background(), &models.User{ID: "u1", Name: "Ada", Status: models.StatusOnline}))

	phone := realtime.NewSession(nil, "u1", "Ada", zerolog.Nop())
	laptop := realtime.NewSession(nil, "u1", "Ada", zerolog.Nop())
	registry.Join("u1", phone)
	registry.Join("u1", laptop)

	registry.DropSession(phone)
	service.HandleDisconnect(context.Background(), phone)
	require.Empty(t, users.statuses, "a remaining device keeps the user online")

	registry.DropSession(laptop)
	service.HandleDisconnect(context.Background(), laptop)
	require.Equal(t, models.StatusOffline, users.statuses["u1"])
}

func TestGetReturnsThePublicProfile(t *testing.T) {
	service, users, _ := newUserFixture(t)
	require.NoError(t, users.Create(context.Background(), &models.User{
		ID: "u1", Name: "Ada", Email: "ada@example.com", Status: models.StatusOnline,
	}))

	profile, err := service.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "Ada", profile.Name)
	require.Equal(t, models.StatusOnline, profile.Status)

	_, err = service.Get(context.Background(), "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
