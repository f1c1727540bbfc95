package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that no project exists under the given id.
	ErrNotFound = errors.New("project not found")

	// ErrBusy reports that another lifecycle operation is in flight for
	// the project. Callers retry once the current operation finished.
	ErrBusy = errors.New("another operation is in progress for this project")

	// ErrInvalidState reports an operation that is not legal in the
	// project's current lifecycle state.
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrAlreadyExists reports a create for a project id that is already
	// tracked with a live sandbox.
	ErrAlreadyExists = errors.New("project already exists")
)

// CommandError is a bootstrap or preview step that ran but did not succeed
// inside the sandbox. Distinct from transport failures, which surface as
// wrapped sandbox errors.
type CommandError struct {
	Step   string
	Output string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("step %q failed: %s", e.Step, e.Output)
}
