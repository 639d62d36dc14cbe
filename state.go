package sluice

// State is the pool lifecycle stage. Transitions are one-directional:
// Running -> Draining -> Stopped, never backwards.
type State int32

const (
	// Running accepts submissions and executes work.
	Running State = iota
	// Draining refuses submissions while settling in-flight work.
	Draining
	// Stopped is terminal: all Results have been produced or swept.
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
