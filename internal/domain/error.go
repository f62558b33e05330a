package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrForbidden          = errors.New("caller does not own this entity")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrJobAlreadyRunning  = errors.New("a generation job is already queued or running")
	ErrInvalidTransition  = errors.New("invalid job status transition")
	ErrLockNotAcquired    = errors.New("lock is held by another owner")
	ErrInvalidExecContext = errors.New("invalid database execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
