package engine

import (
	"errors"
	"fmt"
)

// RuntimeError is returned by Do and Query when a task could not run to
// completion.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Task is the name of the affected task.
	Task string

	// Seq is the clock value the task ran at, 0 if it never ran.
	Seq int64
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeStopped indicates the loop is no longer accepting or running
	// tasks.
	ErrCodeStopped RuntimeErrorCode = "LOOP_STOPPED"

	// ErrCodeTaskPanic indicates the task panicked; the loop recovered.
	ErrCodeTaskPanic RuntimeErrorCode = "TASK_PANIC"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Seq != 0 {
		return fmt.Sprintf("%s: %s (task=%s, seq=%d)", e.Code, e.Message, e.Task, e.Seq)
	}
	return fmt.Sprintf("%s: %s (task=%s)", e.Code, e.Message, e.Task)
}

// IsStopped reports whether err means the loop has stopped.
// Uses errors.As to handle wrapped errors.
func IsStopped(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeStopped
	}
	return false
}

// IsTaskPanic reports whether err came from a recovered task panic.
func IsTaskPanic(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeTaskPanic
	}
	return false
}

func newStoppedError(task string) *RuntimeError {
	return &RuntimeError{Code: ErrCodeStopped, Message: "loop stopped", Task: task}
}
