package consumer

// State represents where a consumer is in its lifecycle.
type State string

const (
	// StateIdle is the state of a consumer that has not been run yet.
	StateIdle State = "IDLE"
	// StateRunning is the state of a consumer that is popping and handling
	// items.
	StateRunning State = "RUNNING"
	// StateShuttingDown is the state of a consumer that has observed the
	// sentinel and is re-pushing it for the benefit of its siblings.
	StateShuttingDown State = "SHUTTING_DOWN"
	// StateDone is the terminal state of a consumer that observed the sentinel
	// and successfully re-pushed it.
	StateDone State = "DONE"
	// StateFailed is the terminal state of a consumer that stopped for any
	// reason other than observing the sentinel.
	StateFailed State = "FAILED"
)

// Terminal returns true if no transitions out of the state are possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
