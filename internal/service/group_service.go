package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/teamhive/hive-go-api/internal/apperrors"
	"github.com/teamhive/hive-go-api/internal/dto"
	"github.com/teamhive/hive-go-api/internal/models"
	"github.com/teamhive/hive-go-api/internal/repository"
)

// GroupService manages chat groups and their membership over REST.
type GroupService interface {
	Create(ctx context.Context, creatorID string, req dto.GroupCreateRequest) (dto.GroupResponse, error)
	Get(ctx context.Context, id uint, actorID string) (dto.GroupResponse, error)
	ListForUser(ctx context.Context, userID string) ([]dto.GroupResponse, error)
	Update(ctx context.Context, id uint, actorID string, req dto.GroupUpdateRequest) (dto.GroupResponse, error)
	AddMembers(ctx context.Context, id uint, actorID string, req dto.GroupAddMembersRequest) (dto.GroupResponse, error)
	RemoveMember(ctx context.Context, id uint, actorID, memberID string) (dto.GroupResponse, error)
	Delete(ctx context.Context, id uint, actorID string) error
}

type groupService struct {
	groups    repository.GroupRepository
	users     repository.UserRepository
	notifier  notificationDispatcher
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewGroupService constructs the group service.
func NewGroupService(
	groups repository.GroupRepository,
	users repository.UserRepository,
	notifier notificationDispatcher,
	validate *validator.Validate,
	logger zerolog.Logger,
) GroupService {
	return &groupService{
		groups:    groups,
		users:     users,
		notifier:  notifier,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "group_service").Logger(),
	}
}

// Create builds a group with the creator as its first admin. Listed
// members must exist; duplicates and the creator are deduplicated.
func (s *groupService) Create(ctx context.Context, creatorID string, req dto.GroupCreateRequest) (dto.GroupResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.GroupResponse{}, apperrors.Validation(err.Error())
	}

	members := []models.GroupMember{{UserID: creatorID, Role: models.RoleAdmin}}
	seen := map[string]struct{}{creatorID: {}}
	for _, memberID := range req.Members {
		if _, dup := seen[memberID]; dup {
			continue
		}
		seen[memberID] = struct{}{}
		if _, err := s.users.FindByID(ctx, memberID); err != nil {
			return dto.GroupResponse{}, err
		}
		members = append(members, models.GroupMember{UserID: memberID, Role: models.RoleMember})
	}

	group := models.Group{
		Name:            s.sanitizer.Sanitize(req.Name),
		Description:     s.sanitizer.Sanitize(req.Description),
		IsDirectMessage: req.IsDirectMessage,
		Members:         members,
		CreatedBy:       creatorID,
	}
	if err := s.groups.Create(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	s.notifyInvited(ctx, group, creatorID, req.Members)
	return s.respond(ctx, group)
}

func (s *groupService) Get(ctx context.Context, id uint, actorID string) (dto.GroupResponse, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return dto.GroupResponse{}, err
	}
	if !group.HasMember(actorID) {
		return dto.GroupResponse{}, apperrors.Forbidden("not a member of this group")
	}
	return s.respond(ctx, *group)
}

func (s *groupService) ListForUser(ctx context.Context, userID string) ([]dto.GroupResponse, error) {
	groups, err := s.groups.ListByMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.GroupResponse, 0, len(groups))
	for _, group := range groups {
		response, err := s.respond(ctx, group)
		if err != nil {
			return nil, err
		}
		out = append(out, response)
	}
	return out, nil
}

func (s *groupService) Update(ctx context.Context, id uint, actorID string, req dto.GroupUpdateRequest) (dto.GroupResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.GroupResponse{}, apperrors.Validation(err.Error())
	}

	group, err := s.adminGroup(ctx, id, actorID)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	if req.Name != nil {
		group.Name = s.sanitizer.Sanitize(*req.Name)
	}
	if req.Description != nil {
		group.Description = s.sanitizer.Sanitize(*req.Description)
	}
	if err := s.groups.Update(ctx, group); err != nil {
		return dto.GroupResponse{}, err
	}
	return s.respond(ctx, *group)
}

// AddMembers appends new members and notifies them of the invite.
func (s *groupService) AddMembers(ctx context.Context, id uint, actorID string, req dto.GroupAddMembersRequest) (dto.GroupResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.GroupResponse{}, apperrors.Validation(err.Error())
	}

	group, err := s.adminGroup(ctx, id, actorID)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	added := make([]string, 0, len(req.Members))
	for _, memberID := range req.Members {
		if group.HasMember(memberID) {
			continue
		}
		if _, err := s.users.FindByID(ctx, memberID); err != nil {
			return dto.GroupResponse{}, err
		}
		group.Members = append(group.Members, models.GroupMember{UserID: memberID, Role: models.RoleMember})
		added = append(added, memberID)
	}

	if len(added) > 0 {
		if err := s.groups.Update(ctx, group); err != nil {
			return dto.GroupResponse{}, err
		}
		s.notifyInvited(ctx, *group, actorID, added)
	}
	return s.respond(ctx, *group)
}

// RemoveMember drops a member. Admins can remove anyone; a member may
// remove themselves (leaving). The last admin can never be removed while
// other members remain.
func (s *groupService) RemoveMember(ctx context.Context, id uint, actorID, memberID string) (dto.GroupResponse, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return dto.GroupResponse{}, err
	}
	if actorID != memberID && !group.HasAdmin(actorID) {
		return dto.GroupResponse{}, apperrors.Forbidden("only admins can remove other members")
	}
	if !group.HasMember(memberID) {
		return dto.GroupResponse{}, apperrors.NotFound("member")
	}
	if group.HasAdmin(memberID) && group.AdminCount() == 1 && len(group.Members) > 1 {
		return dto.GroupResponse{}, apperrors.Forbidden("promote another admin before removing the last one")
	}

	remaining := make([]models.GroupMember, 0, len(group.Members)-1)
	for _, member := range group.Members {
		if member.UserID != memberID {
			remaining = append(remaining, member)
		}
	}
	group.Members = remaining

	if len(group.Members) == 0 {
		if err := s.groups.Delete(ctx, group.ID); err != nil {
			return dto.GroupResponse{}, err
		}
		return dto.GroupResponse{}, nil
	}

	if err := s.groups.Update(ctx, group); err != nil {
		return dto.GroupResponse{}, err
	}
	return s.respond(ctx, *group)
}

// Delete removes the group with its messages and threads. Admin only.
func (s *groupService) Delete(ctx context.Context, id uint, actorID string) error {
	if _, err := s.adminGroup(ctx, id, actorID); err != nil {
		return err
	}
	return s.groups.Delete(ctx, id)
}

func (s *groupService) adminGroup(ctx context.Context, id uint, actorID string) (*models.Group, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !group.HasAdmin(actorID) {
		return nil, apperrors.Forbidden("admin role required")
	}
	return group, nil
}

func (s *groupService) respond(ctx context.Context, group models.Group) (dto.GroupResponse, error) {
	ids := make([]string, 0, len(group.Members))
	for _, member := range group.Members {
		ids = append(ids, member.UserID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return dto.GroupResponse{}, err
	}
	byID := make(map[string]models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	return dto.NewGroupResponse(group, byID), nil
}

func (s *groupService) notifyInvited(ctx context.Context, group models.Group, actorID string, invited []string) {
	actorName := actorID
	if actor, err := s.users.FindByID(ctx, actorID); err == nil {
		actorName = actor.Name
	}

	notifications := make([]models.Notification, 0, len(invited))
	for _, recipient := range invited {
		if recipient == actorID {
			continue
		}
		notifications = append(notifications, models.Notification{
			RecipientID: recipient,
			SenderID:    actorID,
			Type:        models.NotificationGroupInvite,
			GroupID:     &group.ID,
			Content:     actorName + " added you to " + group.Name,
		})
	}
	s.notifier.Dispatch(ctx, notifications)
}
