package deliver

import "errors"

// Sentinel errors for deliver use case operations.
var (
	// ErrSinkDisabled indicates that Send() was called on a disabled sink.
	ErrSinkDisabled = errors.New("sink is disabled")

	// ErrInvalidAnnouncement indicates that the announcement data is invalid.
	// This error is returned when:
	//   - ann is nil
	//   - ann.ID is empty
	ErrInvalidAnnouncement = errors.New("invalid announcement data")
)
