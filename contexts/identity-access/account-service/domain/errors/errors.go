package errors

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccessRevoked      = errors.New("your access has been revoked, please contact your administrator")
	ErrNotAuthenticated   = errors.New("authentication required")
	ErrNotAuthorized      = errors.New("insufficient permissions")
	ErrRoleNotAllowed     = errors.New("not authorized to create this role")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrDuplicateRelation  = errors.New("creation relation already exists")
	ErrNotCreator         = errors.New("you can only manage users you have created")
	ErrWrongPassword      = errors.New("current password is incorrect")
)
