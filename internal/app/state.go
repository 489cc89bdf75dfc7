// ABOUTME: Session lifecycle states
// ABOUTME: Idle, Connecting, Active, Draining and Stopped
package app

// State is the lifecycle state of a Session
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateActive
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
