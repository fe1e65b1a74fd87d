// internal/game/errors.go
//
// Typed errors returned by the engine. Both are returned before the session
// is modified, so callers can map them straight to client errors.

package game

import "fmt"

// InvalidFormatError reports a raw guess that is not a well-formed digit string.
type InvalidFormatError struct {
	Input  string
	Reason string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid guess %q: %s", e.Input, e.Reason)
}

// SessionClosedError reports a submission to a session that already finished.
type SessionClosedError struct {
	ResultID string
	Status   Status
}

func (e *SessionClosedError) Error() string {
	return fmt.Sprintf("session %s is closed (%s)", e.ResultID, e.Status)
}
