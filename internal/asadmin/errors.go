package asadmin

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUsage reports a command that cannot be run because it or the executor is
// misconfigured.
var ErrUsage = errors.New("invalid asadmin usage")

// ExitError is returned when asadmin ran but reported a failure.
type ExitError struct {
	Command string
	Output  string
	Err     error
}

func (e *ExitError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("asadmin %s failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("asadmin %s failed: %v: %s", e.Command, e.Err, out)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
