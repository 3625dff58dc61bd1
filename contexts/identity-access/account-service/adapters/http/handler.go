package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"vulntrack/contexts/identity-access/account-service/application"
	"vulntrack/contexts/identity-access/account-service/domain/entities"
	domainerrors "vulntrack/contexts/identity-access/account-service/domain/errors"
	"vulntrack/contexts/identity-access/account-service/ports"
	"vulntrack/internal/shared/roles"
	httptransport "vulntrack/contexts/identity-access/account-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) LoginHandler(ctx context.Context, req httptransport.LoginRequest, meta application.RequestMeta) (httptransport.LoginResponse, error) {
	result, err := h.Service.Login(ctx, req.Username, req.Password, meta)
	if err != nil {
		return httptransport.LoginResponse{}, err
	}
	resp := httptransport.LoginResponse{Status: "success"}
	resp.Data.Token = result.Token
	resp.Data.User = toUserData(result.User)
	return resp, nil
}

func (h Handler) LogoutHandler(ctx context.Context, actor entities.User, token string, meta application.RequestMeta) (httptransport.LogoutResponse, error) {
	if err := h.Service.Logout(ctx, actor, token, meta); err != nil {
		return httptransport.LogoutResponse{}, err
	}
	return httptransport.LogoutResponse{Status: "success", Message: "logged out"}, nil
}

func (h Handler) RegisterHandler(ctx context.Context, req httptransport.RegisterRequest) (httptransport.RegisterResponse, error) {
	user, err := h.Service.Register(ctx, application.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		return httptransport.RegisterResponse{}, err
	}
	return httptransport.RegisterResponse{Status: "success", Data: toUserData(user)}, nil
}

func (h Handler) CreateUserHandler(ctx context.Context, actor entities.User, req httptransport.CreateUserRequest, meta application.RequestMeta) (httptransport.CreateUserResponse, error) {
	provisioned, err := h.Service.CreateUser(ctx, actor, application.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	}, meta)
	if err != nil {
		return httptransport.CreateUserResponse{}, err
	}
	resp := httptransport.CreateUserResponse{Status: "success"}
	resp.Data.User = toUserData(provisioned.User)
	resp.Data.Password = provisioned.PlainPassword
	return resp, nil
}

func (h Handler) CurrentUserHandler(ctx context.Context, actor entities.User) (httptransport.UserResponse, error) {
	return httptransport.UserResponse{Status: "success", Data: toUserData(actor)}, nil
}

func (h Handler) ListUsersHandler(ctx context.Context, actor entities.User) (httptransport.UserListResponse, error) {
	users, err := h.Service.ListUsers(ctx, actor)
	if err != nil {
		return httptransport.UserListResponse{}, err
	}
	return httptransport.UserListResponse{Status: "success", Data: toUserList(users)}, nil
}

func (h Handler) CreatedUsersHandler(ctx context.Context, actor entities.User) (httptransport.CreatedUsersResponse, error) {
	created, err := h.Service.CreatedUsers(ctx, actor)
	if err != nil {
		return httptransport.CreatedUsersResponse{}, err
	}
	return httptransport.CreatedUsersResponse{Status: "success", Data: toCreatedUserList(created)}, nil
}

func (h Handler) HierarchyHandler(ctx context.Context, actor entities.User) (httptransport.HierarchyResponse, error) {
	nodes, err := h.Service.Hierarchy(ctx, actor)
	if err != nil {
		return httptransport.HierarchyResponse{}, err
	}
	return httptransport.HierarchyResponse{Status: "success", Data: toHierarchy(nodes)}, nil
}

func (h Handler) AssignableUsersHandler(ctx context.Context, actor entities.User, role string) (httptransport.CreatedUsersResponse, error) {
	created, err := h.Service.AssignableUsers(ctx, actor, role)
	if err != nil {
		return httptransport.CreatedUsersResponse{}, err
	}
	return httptransport.CreatedUsersResponse{Status: "success", Data: toCreatedUserList(created)}, nil
}

func (h Handler) AssignedUsersHandler(ctx context.Context, actor entities.User) (httptransport.AssignedUsersResponse, error) {
	assigned, err := h.Service.AssignedUsers(ctx, actor)
	if err != nil {
		return httptransport.AssignedUsersResponse{}, err
	}
	items := make([]httptransport.AssignedUserData, 0, len(assigned))
	for _, item := range assigned {
		items = append(items, httptransport.AssignedUserData{
			User:       toUserData(item.User),
			AssignerID: item.AssignerID,
			AssignedAt: formatTime(item.AssignedAt),
		})
	}
	return httptransport.AssignedUsersResponse{Status: "success", Data: items}, nil
}

func (h Handler) AssignmentsHandler(ctx context.Context, actor entities.User) (httptransport.AssignmentsResponse, error) {
	assignments, err := h.Service.Assignments(ctx, actor)
	if err != nil {
		return httptransport.AssignmentsResponse{}, err
	}
	items := make([]httptransport.AssignmentData, 0, len(assignments))
	for _, item := range assignments {
		items = append(items, httptransport.AssignmentData{
			ID:             item.Edge.ID,
			AssignedUserID: item.Edge.AssignedUserID,
			AssigneeID:     item.Edge.AssigneeID,
			AssignedUser:   toUserData(item.AssignedUser),
			CreatedAt:      formatTime(item.Edge.CreatedAt),
			UpdatedAt:      formatTime(item.Edge.UpdatedAt),
		})
	}
	return httptransport.AssignmentsResponse{Status: "success", Data: items}, nil
}

func (h Handler) AssignUserHandler(ctx context.Context, actor entities.User, req httptransport.AssignUserRequest) (httptransport.AssignUserResponse, error) {
	if err := h.Service.AssignUser(ctx, actor, req.AssignedUserID, req.AssigneeID); err != nil {
		return httptransport.AssignUserResponse{}, err
	}
	return httptransport.AssignUserResponse{Status: "success", Message: "user assigned"}, nil
}

func (h Handler) UnassignUserHandler(ctx context.Context, actor entities.User, req httptransport.AssignUserRequest) (httptransport.AssignUserResponse, error) {
	if err := h.Service.UnassignUser(ctx, actor, req.AssignedUserID, req.AssigneeID); err != nil {
		return httptransport.AssignUserResponse{}, err
	}
	return httptransport.AssignUserResponse{Status: "success", Message: "user unassigned"}, nil
}

func (h Handler) DeleteUserHandler(ctx context.Context, actor entities.User, userID int64) (httptransport.DeleteUserResponse, error) {
	if err := h.Service.DeleteUser(ctx, actor, userID); err != nil {
		return httptransport.DeleteUserResponse{}, err
	}
	return httptransport.DeleteUserResponse{Status: "success", Message: "user deleted"}, nil
}

func (h Handler) UpdateUserHandler(ctx context.Context, actor entities.User, userID int64, req httptransport.UpdateUserRequest) (httptransport.UserResponse, error) {
	patch := ports.UserPatch{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
	}
	if req.Role != nil {
		role, ok := roles.Parse(*req.Role)
		if !ok {
			return httptransport.UserResponse{}, domainerrors.ErrInvalidRequest
		}
		patch.Role = &role
	}
	updated, err := h.Service.UpdateUser(ctx, actor, userID, patch)
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return httptransport.UserResponse{Status: "success", Data: toUserData(updated)}, nil
}

func (h Handler) UpdateProfileHandler(ctx context.Context, actor entities.User, req httptransport.UpdateProfileRequest, meta application.RequestMeta) (httptransport.UserResponse, error) {
	updated, err := h.Service.UpdateProfile(ctx, actor, application.ProfilePatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}, meta)
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return httptransport.UserResponse{Status: "success", Data: toUserData(updated)}, nil
}

func (h Handler) ChangePasswordHandler(ctx context.Context, actor entities.User, req httptransport.ChangePasswordRequest, meta application.RequestMeta) (httptransport.ChangePasswordResponse, error) {
	if err := h.Service.ChangePassword(ctx, actor, req.CurrentPassword, req.NewPassword, meta); err != nil {
		return httptransport.ChangePasswordResponse{}, err
	}
	return httptransport.ChangePasswordResponse{Status: "success", Message: "password updated"}, nil
}

func (h Handler) AccessControlUsersHandler(ctx context.Context, actor entities.User) (httptransport.UserListResponse, error) {
	users, err := h.Service.AccessControlUsers(ctx, actor)
	if err != nil {
		return httptransport.UserListResponse{}, err
	}
	return httptransport.UserListResponse{Status: "success", Data: toUserList(users)}, nil
}

func (h Handler) SetAccessHandler(ctx context.Context, actor entities.User, req httptransport.SetAccessRequest, active bool, meta application.RequestMeta) (httptransport.SetAccessResponse, error) {
	if err := h.Service.SetAccess(ctx, actor, req.UserID, active, meta); err != nil {
		return httptransport.SetAccessResponse{}, err
	}
	message := "access revoked"
	if active {
		message = "access restored"
	}
	return httptransport.SetAccessResponse{Status: "success", Message: message}, nil
}

func (h Handler) TeamLeadersHandler(ctx context.Context, actor entities.User) (httptransport.UserListResponse, error) {
	users, err := h.Service.ListTeamLeaders(ctx, actor)
	if err != nil {
		return httptransport.UserListResponse{}, err
	}
	return httptransport.UserListResponse{Status: "success", Data: toUserList(users)}, nil
}

func (h Handler) TestersHandler(ctx context.Context, actor entities.User) (httptransport.UserListResponse, error) {
	users, err := h.Service.ListTesters(ctx, actor)
	if err != nil {
		return httptransport.UserListResponse{}, err
	}
	return httptransport.UserListResponse{Status: "success", Data: toUserList(users)}, nil
}

func (h Handler) ClientTeamHandler(ctx context.Context, actor entities.User) (httptransport.UserListResponse, error) {
	users, err := h.Service.ListClientTeamMembers(ctx, actor)
	if err != nil {
		return httptransport.UserListResponse{}, err
	}
	return httptransport.UserListResponse{Status: "success", Data: toUserList(users)}, nil
}

func (h Handler) ClientAdminsHandler(ctx context.Context, actor entities.User) (httptransport.UserListResponse, error) {
	users, err := h.Service.ListClientAdmins(ctx, actor)
	if err != nil {
		return httptransport.UserListResponse{}, err
	}
	return httptransport.UserListResponse{Status: "success", Data: toUserList(users)}, nil
}

func toUserData(user entities.User) httptransport.UserData {
	data := httptransport.UserData{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Role:           string(user.Role),
		HierarchyLevel: user.HierarchyLevel(),
		IsActive:       user.IsActive,
		CreatedAt:      formatTime(user.CreatedAt),
		UpdatedAt:      formatTime(user.UpdatedAt),
	}
	if user.LastLogin != nil {
		data.LastLogin = formatTime(*user.LastLogin)
	}
	return data
}

func toUserList(users []entities.User) []httptransport.UserData {
	items := make([]httptransport.UserData, 0, len(users))
	for _, user := range users {
		items = append(items, toUserData(user))
	}
	return items
}

func toCreatedUserList(created []ports.CreatedUser) []httptransport.CreatedUserData {
	items := make([]httptransport.CreatedUserData, 0, len(created))
	for _, item := range created {
		items = append(items, httptransport.CreatedUserData{
			User:      toUserData(item.User),
			Password:  item.PlainPassword,
			CreatedAt: formatTime(item.CreatedAt),
		})
	}
	return items
}

func toHierarchy(nodes []application.HierarchyNode) []httptransport.HierarchyNodeData {
	items := make([]httptransport.HierarchyNodeData, 0, len(nodes))
	for _, node := range nodes {
		items = append(items, httptransport.HierarchyNodeData{
			User:     toUserData(node.User),
			Password: node.PlainPassword,
			Children: toHierarchy(node.Children),
		})
	}
	return items
}

func formatTime(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}
