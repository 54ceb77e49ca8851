package queue

import "fmt"

// ErrInterruptedWait represents an error wherein a blocking pop was abandoned
// before an item became available.
type ErrInterruptedWait struct {
	Queue string
	Cause error
}

func (e *ErrInterruptedWait) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("wait on queue %q was interrupted", e.Queue)
	}
	return fmt.Sprintf(
		"wait on queue %q was interrupted: %s",
		e.Queue,
		e.Cause,
	)
}

// Unwrap returns the underlying cause.
func (e *ErrInterruptedWait) Unwrap() error {
	return e.Cause
}

// ErrQueueUnavailable represents an error wherein the store backing a queue
// could not be reached or returned something that could not be understood.
type ErrQueueUnavailable struct {
	Queue string
	Cause error
}

func (e *ErrQueueUnavailable) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("queue %q is unavailable", e.Queue)
	}
	return fmt.Sprintf("queue %q is unavailable: %s", e.Queue, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ErrQueueUnavailable) Unwrap() error {
	return e.Cause
}
