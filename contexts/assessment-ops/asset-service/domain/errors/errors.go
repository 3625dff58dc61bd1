package errors

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotAuthorized  = errors.New("not authorized")
	ErrAssetNotFound  = errors.New("asset not found")
	ErrUserNotFound   = errors.New("user not found")
)
