package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")

	// Settlement errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUnauthorizedPayment = errors.New("payment signature verification failed")
	ErrSecretNotConfigured = errors.New("signing secret not configured")
)
