package call

import (
	"errors"
	"fmt"
)

// Lifecycle errors. All are terminal for the triggering command; nothing
// is retried internally.
var (
	// ErrNotFound means no active call matched a selector.
	ErrNotFound = errors.New("no active call matched")

	// ErrAgentBusy means the agent already has a call that blocks the operation.
	ErrAgentBusy = errors.New("agent is busy")

	// ErrAgentUnavailable means the agent is not accepting inbound work.
	ErrAgentUnavailable = errors.New("agent is not available")

	// ErrTransferUnavailable means too many calls are active to start a transfer.
	ErrTransferUnavailable = errors.New("agent is not available for a transfer call")

	// ErrCapabilityUnsupported means the gating capability flag for an action is off.
	ErrCapabilityUnsupported = errors.New("capability not supported")

	// ErrDemoFault is the generic injected failure used for host-application testing.
	ErrDemoFault = errors.New("demo error")
)

// CustomError is a structured injected failure with a label namespace,
// configured in place of the generic demo fault.
type CustomError struct {
	Namespace string
	Label     string
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("custom error %s.%s", e.Namespace, e.Label)
}
