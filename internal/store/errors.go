package store

import "errors"

// Store operation errors. Handlers map these onto wire error codes.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionExists      = errors.New("user already has an active session")
	ErrSessionNotFound    = errors.New("session not found")
	ErrLessonNotFound     = errors.New("lesson not found")
)
