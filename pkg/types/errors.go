package types

import "errors"

// Validation errors shared across the protocol and store layers.
var (
	ErrInvalidUsername = errors.New("username must be 1-50 characters, alphanumeric and underscore only")
	ErrInvalidPassword = errors.New("password must be 4-100 characters")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidLevel    = errors.New("invalid proficiency level")
)
