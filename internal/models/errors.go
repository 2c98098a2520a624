package models

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrVersionConflict    = errors.New("concurrent modification")
	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
