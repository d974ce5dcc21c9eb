package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrNotFound indicates a requested series or season does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidManifest indicates an import manifest that cannot be applied
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrBusy indicates the database is held by another writer
	ErrBusy = errors.New("database busy")
)
