package transfer

import "fmt"

// State is a stage of the transfer pipeline. Progression is strictly
// linear; any failure moves directly to StateFailed with no back-edges.
type State string

const (
	StateIdle              State = "IDLE"
	StateResolved          State = "RESOLVED"
	StateInstructionsBuilt State = "INSTRUCTIONS_BUILT"
	StateAssembled         State = "ASSEMBLED"
	StateSubmitted         State = "SUBMITTED"
	StateConfirming        State = "CONFIRMING"
	StateDone              State = "DONE"
	StateFailed            State = "FAILED"
)

// Error carries the stage a pipeline failure originated from.
type Error struct {
	Stage State
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transfer failed at %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
