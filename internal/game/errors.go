package game

import (
	"errors"
	"fmt"
)

// Recoverable command outcomes. Each leaves the session unchanged except
// ErrInvalidWildInput, which clears the pending wild entry.
var (
	ErrInvalidPhase     = errors.New("command not accepted in current phase")
	ErrInvalidBet       = errors.New("invalid bet amount")
	ErrInvalidWildInput = errors.New("invalid wild value")
)

// InvariantViolation is raised with panic when the engine detects a
// programming defect, such as reading a settled total while a visible wild
// card is still unresolved.
type InvariantViolation struct {
	Op     string
	Detail string
}

func (e InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Detail)
}

func violation(op, format string, args ...any) {
	panic(InvariantViolation{Op: op, Detail: fmt.Sprintf(format, args...)})
}
