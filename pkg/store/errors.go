package store

import "fmt"

// Common store errors.
var (
	// ErrStoreDirectory is returned when a required directory is not configured.
	ErrStoreDirectory = fmt.Errorf("invalid store directory")

	// ErrLegacyTargetExists is returned when a legacy name is already taken.
	ErrLegacyTargetExists = fmt.Errorf("legacy name already exists")
)
