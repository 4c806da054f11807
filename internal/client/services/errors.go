package services

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrNothingSelected     = errors.New("no files selected")
	ErrOperationInProgress = errors.New("operation already in progress")
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrValidation          = errors.New("validation failed")
	ErrFileTooLarge        = errors.New("file exceeds the maximum upload size")
	ErrNotAFile            = errors.New("not a regular file")
)
