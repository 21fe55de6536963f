package nanolog

import (
	"fmt"

	"github.com/go-stack/stack"
)

// ConfigError reports a configuration failure: an unopenable log file or
// an invalid knob. It aborts whichever call produced it rather than the
// process.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nanolog: %s: %v", e.Msg, e.Err)
	}
	return "nanolog: " + e.Msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ContractViolation is the panic value raised when a producer breaks the
// reserve/commit discipline documented in staging.go (commit without a
// matching reserve, a commit larger than the outstanding reservation, or
// a reserve request at or above half the staging buffer's capacity).
//
// It carries a captured stack so a crashing debug build points straight
// at the offending call site instead of the middle of the ring buffer.
type ContractViolation struct {
	Msg   string
	Stack stack.CallStack
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("nanolog: contract violation: %s\n%+v", e.Msg, e.Stack)
}

// violate panics with a ContractViolation unless built with the
// nanolog_release tag, matching spec.md §7: "fatal in debug, undefined in
// release." Release builds skip the stack capture entirely to keep the
// hot path allocation-free.
func violate(msg string) {
	if releaseBuild {
		return
	}
	panic(&ContractViolation{Msg: msg, Stack: stack.Trace().TrimRuntime()})
}
