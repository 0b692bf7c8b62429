package shared

import "fmt"

// Transitions is an explicit state machine table: from -> allowed targets.
type Transitions[S ~string] map[S][]S

// Allowed reports whether from -> to is listed.
func (t Transitions[S]) Allowed(from, to S) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Check returns ErrInvalidState when from -> to is not listed.
func (t Transitions[S]) Check(entity string, from, to S) error {
	if t.Allowed(from, to) {
		return nil
	}
	return fmt.Errorf("%w: %s cannot move from %s to %s", ErrInvalidState, entity, from, to)
}
