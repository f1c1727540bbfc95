package lifecycle

// State is the lifecycle position of a project's sandbox. One instance per
// project, mutated only by the Manager holding that project's operation
// lock.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateProvisioning  State = "provisioning"
	StateBootstrapping State = "bootstrapping"
	StateReady         State = "ready"
	StateGenerating    State = "generating"
	StateError         State = "error"
	StateTerminating   State = "terminating"
	StateTerminated    State = "terminated"
)

// transitions enumerates the legal state changes. Error back to
// provisioning is legal only while no handle exists (a failed provision
// attempt); an errored sandbox with a live handle must pass through
// terminated first, otherwise a second handle could appear next to the
// broken one. The Manager enforces the handle side of that rule.
var transitions = map[State][]State{
	StateUninitialized: {StateProvisioning},
	StateProvisioning:  {StateBootstrapping, StateError},
	StateBootstrapping: {StateReady, StateError},
	StateReady:         {StateGenerating, StateTerminating},
	StateGenerating:    {StateReady, StateError, StateTerminating},
	StateError:         {StateProvisioning, StateTerminating},
	StateTerminating:   {StateTerminated},
	StateTerminated:    {StateProvisioning},
}

// canTransition reports whether moving from s to next is legal.
func (s State) canTransition(next State) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// live reports whether the project may hold a sandbox handle in this state.
func (s State) live() bool {
	switch s {
	case StateBootstrapping, StateReady, StateGenerating, StateError:
		return true
	}
	return false
}
