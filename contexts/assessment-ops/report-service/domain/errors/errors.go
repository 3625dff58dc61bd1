// Package errors defines the report context's sentinel errors.
package errors

import "errors"

var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrReportNotFound  = errors.New("report not found")
	ErrFindingNotFound = errors.New("finding not found")
	ErrNoteNotFound    = errors.New("note not found")
	ErrAssetNotFound   = errors.New("asset not found")
	ErrUserNotFound    = errors.New("user not found")
)
