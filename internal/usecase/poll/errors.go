package poll

import "fmt"

// FatalError signals a condition the poller cannot recover from by waiting:
// a rejected credential, a placeholder configuration, or a tracked selection
// that no longer exists. The caller should stop the process and surface
// Action to the operator.
type FatalError struct {
	// Reason describes what went wrong.
	Reason string

	// Action tells the operator how to fix it.
	Action string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Reason, e.Action)
}

func fatal(reason, action string) *FatalError {
	return &FatalError{Reason: reason, Action: action}
}
