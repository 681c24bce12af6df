package processor

import "fmt"

// Status is a representation of the state machine's status.
type Status uint8

// The following is an enumeration of all possible statuses the
// state machine can have.
const (
	StatusAccumulating Status = iota + 1
	StatusClosing
	StatusDrained
)

// String implements the Stringer interface.
func (s Status) String() string {
	switch s {
	case StatusAccumulating:
		return "accumulating"
	case StatusClosing:
		return "closing"
	case StatusDrained:
		return "drained"
	default:
		return fmt.Sprintf("invalid status %d", s)
	}
}
