package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/dto"
	"github.com/teamhive/hive-go-api/internal/models"
)

type groupFixture struct {
	service  GroupService
	groups   *stubGroupRepo
	users    *stubUserRepo
	notifier *stubNotifier
}

func newGroupFixture(t *testing.T) *groupFixture {
	t.Helper()

	f := &groupFixture{
		groups:   &stubGroupRepo{},
		users:    &stubUserRepo{},
		notifier: &stubNotifier{},
	}
	f.service = NewGroupService(
		f.groups, f.users, f.notifier,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
	return f
}

func (f *groupFixture) seedUser(name string) string {
	id := uuid.NewString()
	_ = f.users.Create(context.Background(), &models.User{ID: id, Name: name, Status: models.StatusOffline})
	return id
}

func TestGroupCreateMakesTheCreatorAdmin(t *testing.T) {
	f := newGroupFixture(t)
	creator := f.seedUser("Ada")
	member := f.seedUser("Ben")

	response, err := f.service.Create(context.Background(), creator, dto.GroupCreateRequest{
		Name:    "engineering",
		Members: []string{member},
	})
	require.NoError(t, err)

	require.Len(t, response.Members, 2)
	require.Equal(t, creator, response.Members[0].UserID)
	require.Equal(t, models.RoleAdmin, response.Members[0].Role)
	require.Equal(t, models.RoleMember, response.Members[1].Role)
	require.Equal(t, "Ben", response.Members[1].Name, "member views carry display names")
}

func TestGroupCreateDeduplicatesMembers(t *testing.T) {
	f := newGroupFixture(t)
	creator := f.seedUser("Ada")
	member := f.seedUser("Ben")

	response, err := f.service.Create(context.Background(), creator, dto.GroupCreateRequest{
		Name:    "engineering",
		Members: []string{member, member, creator},
	})
	require.NoError(t, err)
	require.Len(t, response.Members, 2, "duplicates and the creator collapse")
}

func TestGroupCreateRejectsUnknownMembers(t *testing.T) {
	f := newGroupFixture(t)
	creator := f.seedUser("Ada")

	_, err := f.service.Create(context.Background(), creator, dto.GroupCreateRequest{
		Name:    "engineering",
		Members: []string{uuid.NewString()},
	})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Empty(t, f.groups.groups)
}

func TestGroupCreateNotifiesInvitedMembers(t *testing.T) {
	f := newGroupFixture(t)
	creator := f.seedUser("Ada")
	member := f.seedUser("Ben")

	_, err := f.service.Create(context.Background(), creator, dto.GroupCreateRequest{
		Name:    "engineering",
		Members: []string{member},
	})
	require.NoError(t, err)

	notifications := f.notifier.all()
	require.Len(t, notifications, 1)
	require.Equal(t, member, notifications[0].RecipientID)
	require.Equal(t, models.NotificationGroupInvite, notifications[0].Type)
	require.Contains(t, notifications[0].Content, "Ada")
}

func TestGroupUpdateRequiresAdmin(t *testing.T) {
	f := newGroupFixture(t)
	creator := f.seedUser("Ada")
	member := f.seedUser("Ben")

	created, err := f.service.Create(context.Background(), creator, dto.GroupCreateRequest{
		Name:    "engineering",
		Members: []string{member},
	})
	require.NoError(t, err)

	name := "platform"
	_, err = f.service.Update(context.Background(), created.ID, member, dto.GroupUpdateRequest{Name: &name})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := f.service.Update(context.Background(), created.ID, creator, dto.GroupUpdateRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "platform", updated.Name)
}

func TestAddMembersSkipsExistingAndNotifiesNewOnes(t *testing.T) {
	f := newGroupFixture(t)
	creator := f.seedUser("Ada")
	existing := f.seedUser("Ben")
	newcomer := f.seedUser("Cleo")

	created, err := f.service.Create(context.Background(), creator, dto.GroupCreateRequest{
		Name:    "engineering",
		Members: []string{existing},
	})
	require.NoError(t, err)
	f.notifier.batches = nil

	response, err := f.service.AddMembers(context.Background(), created.ID, creator, dto.GroupAddMembersRequest{
		Members: []string{existing, newcomer},
	})
	require.NoError(t, err)
	require.Len(t, response.Members, 3)

	notifications := f.notifier.all()
	require.Len(t, notifications, 1, "only the newcomer is invited")
	require.Equal(t, newcomer, notifications[0].RecipientID)
}

func TestRemoveMemberAllowsLeavingButProtectsTheLastAdmin(t *testing.T) {
	f := newGroupFixture(t)
	creator := f.seedUser("Ada")
	member := f.seedUser("Ben")

	created, err := f.service.Create(context.Background(), creator, dto.GroupCreateRequest{
		Name:    "engineering",
		Members: []string{member},
	})
	require.NoError(t, err)

	_, err = f.service.RemoveMember(context.Background(), created.ID, creator, creator)
	require.ErrorIs(t, err, apperrors.ErrForbidden, "last admin cannot leave while members remain")

	response, err := f.service.RemoveMember(context.Background(), created.ID, member, member)
	require.NoError(t, err, "a regular member may leave")
	require.Len(t, response.Members, 1)
}

func TestRemoveMemberRequiresAdminForOthers(t *testing.T) {
	f := newGroupFixture(t)
	creator := f.seedUser("Ada")
	first := f.seedUser("Ben")
	second := f.seedUser("Cleo")

	created, err := f.service.Create(context.Background(), creator, dto.GroupCreateRequest{
		Name:    "engineering",
		Members: []string{first, second},
	})
	require.NoError(t, err)

	_, err = f.service.RemoveMember(context.Background(), created.ID, first, second)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	response, err := f.service.RemoveMember(context.Background(), created.ID, creator, second)
	require.NoError(t, err)
	require.Len(t, response.Members, 2)
}

func TestRemovingTheLastMemberDeletesTheGroup(t *testing.T) {
	f := newGroupFixture(t)
	creator := f.seedUser("Ada")

	created, err := f.service.Create(context.Background(), creator, dto.GroupCreateRequest{Name: "solo"})
	require.NoError(t, err)

	_, err = f.service.RemoveMember(context.Background(), created.ID, creator, creator)
	require.NoError(t, err)

	_, err = f.service.Get(context.Background(), created.ID, creator)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGroupGetIsMemberOnly(t *testing.T) {
	f := newGroupFixture(t)
	creator := f.seedUser("Ada")
	outsider := f.seedUser("Mallory")

	created, err := f.service.Create(context.Background(), creator, dto.GroupCreateRequest{Name: "private"})
	require.NoError(t, err)

	_, err = f.service.Get(context.Background(), created.ID, outsider)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestGroupCreateSanitizesNameAndDescription(t *testing.T) {
	f := newGroupFixture(t)
	creator := f.seedUser("Ada")

	response, err := f.service.Create(context.Background(), creator, dto.GroupCreateRequest{
		Name:        "eng <script>x</script>team",
		Description: "<b>weekly</b> sync",
	})
	require.NoError(t, err)
	require.NotContains(t, response.Name, "<script>")
	require.Equal(t, "weekly sync", response.Description)
}
