package apperrors

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrNotConfigured    = errors.New("not configured")
	ErrEngineDisposed   = errors.New("engine disposed")
	ErrNotAuthenticated = errors.New("not authenticated")
)
