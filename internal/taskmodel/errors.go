package taskmodel

import (
	"errors"
	"fmt"
)

// Kind is the stable discriminator for engine-internal errors, used by the
// HTTP layer to choose a status code and by ExitCodeOf to recognize an
// ExitFailure.
type Kind int

const (
	KindInternal Kind = iota
	KindCommandFailed
	KindExitFailure
	KindPlanNotFound
	KindTaskNotFound
	KindTaskFailed
	KindInvalidTaskState
)

// Error wraps an engine error with its Kind and any structured detail needed
// to format or re-wrap it (the underlying OS error, the exit code, the
// offending ID).
type Error struct {
	Kind     Kind
	ID       ID
	ExitCode int
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindCommandFailed:
		return fmt.Sprintf("command failed: %v", e.Err)
	case KindExitFailure:
		return fmt.Sprintf("command exited with status %d", e.ExitCode)
	case KindPlanNotFound:
		return fmt.Sprintf("plan not found: %s", e.ID)
	case KindTaskNotFound:
		return fmt.Sprintf("task not found: %s", e.ID)
	case KindTaskFailed:
		return fmt.Sprintf("task failed: %s", e.ID)
	case KindInvalidTaskState:
		return fmt.Sprintf("invalid task state: %s", e.ID)
	default:
		if e.Err != nil {
			return fmt.Sprintf("internal error: %v", e.Err)
		}
		return "internal error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// CommandFailed wraps a spawn/wait failure at the OS level.
func CommandFailed(err error) error {
	return &Error{Kind: KindCommandFailed, Err: err}
}

// ExitFailure reports a clean process exit with a non-zero status.
func ExitFailure(code int) error {
	return &Error{Kind: KindExitFailure, ExitCode: code}
}

// PlanNotFound reports that materialization or lookup referenced an unknown plan.
func PlanNotFound(id ID) error {
	return &Error{Kind: KindPlanNotFound, ID: id}
}

// TaskNotFound reports a store lookup miss.
func TaskNotFound(id ID) error {
	return &Error{Kind: KindTaskNotFound, ID: id}
}

// TaskFailed wraps a propagated child failure, re-rooted at the child's ID.
func TaskFailed(childID ID) error {
	return &Error{Kind: KindTaskFailed, ID: childID}
}

// InvalidTaskState reports that start was called on a task whose status is
// not Pending.
func InvalidTaskState(id ID) error {
	return &Error{Kind: KindInvalidTaskState, ID: id}
}

// Internal wraps an unexpected error.
func Internal(err error) error {
	return &Error{Kind: KindInternal, Err: err}
}

// As extracts the *Error from an error chain, if present.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ExitCodeOf extracts the exit code from an ExitFailure error, if err is one.
func ExitCodeOf(err error) (int, bool) {
	e, ok := As(err)
	if !ok || e.Kind != KindExitFailure {
		return 0, false
	}
	return e.ExitCode, true
}
