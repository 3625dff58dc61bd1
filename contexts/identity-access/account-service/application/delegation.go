package application

import (
	"context"
	"strings"

	"vulntrack/contexts/identity-access/account-service/domain/entities"
	domainerrors "vulntrack/contexts/identity-access/account-service/domain/errors"
	"vulntrack/contexts/identity-access/account-service/ports"
	"vulntrack/internal/shared/audit"
	"vulntrack/internal/shared/roles"
)

const adminLevel = 5

// HierarchyNode is one layer of the creation-lineage tree.
type HierarchyNode struct {
	User          entities.User
	PlainPassword string
	Children      []HierarchyNode
}

// ProfilePatch carries the self-editable profile fields.
type ProfilePatch struct {
	FirstName string
	LastName  string
	Email     string
}

// CreatedUsers lists the accounts actor provisioned, including the
// plaintext credentials captured on each creation edge.
func (s Service) CreatedUsers(ctx context.Context, actor entities.User) ([]ports.CreatedUser, error) {
	return s.Repo.CreatedUsers(ctx, actor.ID)
}

// Hierarchy walks the creation lineage below actor. Creation edges
// only ever point from creator to created, so the walk cannot cycle.
func (s Service) Hierarchy(ctx context.Context, actor entities.User) ([]HierarchyNode, error) {
	return s.buildHierarchy(ctx, actor.ID)
}

func (s Service) buildHierarchy(ctx context.Context, userID int64) ([]HierarchyNode, error) {
	created, err := s.Repo.CreatedUsers(ctx, userID)
	if err != nil {
		return nil, err
	}
	nodes := make([]HierarchyNode, 0, len(created))
	for _, item := range created {
		children, err := s.buildHierarchy(ctx, item.User.ID)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, HierarchyNode{
			User:          item.User,
			PlainPassword: item.PlainPassword,
			Children:      children,
		})
	}
	return nodes, nil
}

// AssignableUsers lists actor's active created users with the given
// role, the candidate pool for assignment edges.
func (s Service) AssignableUsers(ctx context.Context, actor entities.User, rawRole string) ([]ports.CreatedUser, error) {
	role, ok := roles.Parse(rawRole)
	if !ok {
		return nil, domainerrors.ErrInvalidRequest
	}
	created, err := s.Repo.CreatedUsers(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	out := make([]ports.CreatedUser, 0, len(created))
	for _, item := range created {
		if item.User.Role == role && item.User.IsActive {
			out = append(out, item)
		}
	}
	return out, nil
}

// AssignedUsers lists users placed under actor via assignment edges.
func (s Service) AssignedUsers(ctx context.Context, actor entities.User) ([]ports.AssignedUser, error) {
	return s.Repo.UsersAssignedTo(ctx, actor.ID)
}

// Assignments lists the edges actor created as assigner.
func (s Service) Assignments(ctx context.Context, actor entities.User) ([]ports.AssignmentDetail, error) {
	return s.Repo.AssignmentsByAssigner(ctx, actor.ID)
}

// AssignUser places assignedUserID under assigneeID. Both endpoints
// must be accounts the actor created. Re-assignment overwrites the
// assigner on the existing edge.
func (s Service) AssignUser(ctx context.Context, actor entities.User, assignedUserID int64, assigneeID int64) error {
	if assignedUserID == 0 || assigneeID == 0 {
		return domainerrors.ErrInvalidRequest
	}
	canAssign, err := s.Repo.HasCreationEdge(ctx, actor.ID, assignedUserID)
	if err != nil {
		return err
	}
	canReceive, err := s.Repo.HasCreationEdge(ctx, actor.ID, assigneeID)
	if err != nil {
		return err
	}
	if !canAssign || !canReceive {
		return domainerrors.ErrNotCreator
	}
	return s.Repo.UpsertAssignment(ctx, actor.ID, assignedUserID, assigneeID, s.now())
}

// UnassignUser removes the edge. Absence is not an error.
func (s Service) UnassignUser(ctx context.Context, actor entities.User, assignedUserID int64, assigneeID int64) error {
	if assignedUserID == 0 || assigneeID == 0 {
		return domainerrors.ErrInvalidRequest
	}
	return s.Repo.DeleteAssignment(ctx, assignedUserID, assigneeID)
}

// DeleteUser removes an account actor created, cascading over both
// edge kinds, sessions and tokens in one transaction.
func (s Service) DeleteUser(ctx context.Context, actor entities.User, userID int64) error {
	created, err := s.Repo.HasCreationEdge(ctx, actor.ID, userID)
	if err != nil {
		return err
	}
	if !created {
		return domainerrors.ErrNotCreator
	}
	return s.Repo.DeleteUserCascade(ctx, userID)
}

// ListUsers is the admin+ directory listing.
func (s Service) ListUsers(ctx context.Context, actor entities.User) ([]entities.User, error) {
	if actor.HierarchyLevel() < adminLevel {
		return nil, domainerrors.ErrNotAuthorized
	}
	return s.Repo.ListUsers(ctx)
}

// AccessControlUsers lists the accounts actor may revoke/restore:
// everyone for superadmin, otherwise only actor's created users.
func (s Service) AccessControlUsers(ctx context.Context, actor entities.User) ([]entities.User, error) {
	if actor.HierarchyLevel() < adminLevel {
		return nil, domainerrors.ErrNotAuthorized
	}
	if actor.Role == roles.SuperAdmin {
		return s.Repo.ListUsers(ctx)
	}
	created, err := s.Repo.CreatedUsers(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	users := make([]entities.User, 0, len(created))
	for _, item := range created {
		users = append(users, item.User)
	}
	return users, nil
}

// UpdateUser is the admin+ account edit.
func (s Service) UpdateUser(ctx context.Context, actor entities.User, userID int64, patch ports.UserPatch) (entities.User, error) {
	if actor.HierarchyLevel() < adminLevel {
		return entities.User{}, domainerrors.ErrNotAuthorized
	}
	if patch.Email != nil {
		taken, err := s.Repo.EmailExists(ctx, strings.TrimSpace(*patch.Email), userID)
		if err != nil {
			return entities.User{}, err
		}
		if taken {
			return entities.User{}, domainerrors.ErrEmailTaken
		}
	}
	return s.Repo.UpdateUser(ctx, userID, patch, s.now())
}

// UpdateProfile edits the actor's own names and email.
func (s Service) UpdateProfile(ctx context.Context, actor entities.User, patch ProfilePatch, meta RequestMeta) (entities.User, error) {
	update := ports.UserPatch{}
	if patch.FirstName != "" {
		update.FirstName = &patch.FirstName
	}
	if patch.LastName != "" {
		update.LastName = &patch.LastName
	}
	if patch.Email != "" && patch.Email != actor.Email {
		taken, err := s.Repo.EmailExists(ctx, strings.TrimSpace(patch.Email), actor.ID)
		if err != nil {
			return entities.User{}, err
		}
		if taken {
			return entities.User{}, domainerrors.ErrEmailTaken
		}
		update.Email = &patch.Email
	}
	updated, err := s.Repo.UpdateUser(ctx, actor.ID, update, s.now())
	if err != nil {
		return entities.User{}, err
	}
	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeUserManagement,
		Action:       audit.ActionUpdate,
		Details: map[string]any{
			"target": "profile",
			"updatedFields": map[string]any{
				"firstName": patch.FirstName,
				"lastName":  patch.LastName,
				"email":     patch.Email,
			},
		},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
	return updated, nil
}

// SetAccess revokes or restores an account. Admins are limited to
// accounts they created; superadmin may flip anyone.
func (s Service) SetAccess(ctx context.Context, actor entities.User, userID int64, active bool, meta RequestMeta) error {
	if actor.HierarchyLevel() < adminLevel {
		return domainerrors.ErrNotAuthorized
	}
	target, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if actor.Role != roles.SuperAdmin {
		created, err := s.Repo.HasCreationEdge(ctx, actor.ID, userID)
		if err != nil {
			return err
		}
		if !created {
			return domainerrors.ErrNotCreator
		}
	}
	if _, err := s.Repo.UpdateUser(ctx, userID, ports.UserPatch{IsActive: &active}, s.now()); err != nil {
		return err
	}
	targetAction := "access_revoked"
	if active {
		targetAction = "access_restored"
	}
	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeUserManagement,
		Action:       audit.ActionUpdate,
		Details: map[string]any{
			"target":         targetAction,
			"targetUserId":   userID,
			"targetUsername": target.Username,
		},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
	return nil
}

// ListTeamLeaders lists team-leaders under an admin, via either
// relation kind.
func (s Service) ListTeamLeaders(ctx context.Context, actor entities.User) ([]entities.User, error) {
	if actor.Role != roles.Admin && actor.Role != roles.SuperAdmin {
		return nil, domainerrors.ErrNotAuthorized
	}
	return s.Repo.TeamMembers(ctx, actor.ID, roles.TeamLeader)
}

// ListTesters lists testers under a team-leader.
func (s Service) ListTesters(ctx context.Context, actor entities.User) ([]entities.User, error) {
	if actor.Role != roles.TeamLeader {
		return nil, domainerrors.ErrNotAuthorized
	}
	return s.Repo.TeamMembers(ctx, actor.ID, roles.Tester)
}

// ListClientTeamMembers lists client-users under a client-admin.
func (s Service) ListClientTeamMembers(ctx context.Context, actor entities.User) ([]entities.User, error) {
	if actor.Role != roles.ClientAdmin {
		return nil, domainerrors.ErrNotAuthorized
	}
	return s.Repo.TeamMembers(ctx, actor.ID, roles.ClientUser)
}

// ListClientAdmins lists every client-admin account for the admin
// asset-ownership picker.
func (s Service) ListClientAdmins(ctx context.Context, actor entities.User) ([]entities.User, error) {
	if actor.Role != roles.Admin && actor.Role != roles.SuperAdmin {
		return nil, domainerrors.ErrNotAuthorized
	}
	users, err := s.Repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entities.User, 0, len(users))
	for _, user := range users {
		if user.Role == roles.ClientAdmin {
			out = append(out, user)
		}
	}
	return out, nil
}
