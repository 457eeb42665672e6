package model

import "fmt"

// ValidationError is raised for malformed input at an API boundary; never
// retried, never surfaced into a workflow (spec §7).
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
}

// UnavailableError wraps a downstream dependency outage (graph store,
// workflow backend, LLM). Retried per the relevant policy.
type UnavailableError struct {
	Dependency string
	Cause      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("unavailable: %s: %v", e.Dependency, e.Cause)
}

func (e *UnavailableError) Unwrap() error { return e.Cause }

// ProcessingError wraps an LLM call that returned no or invalid data.
// Retried up to 3x with backoff; permanent failure fails the stage.
type ProcessingError struct {
	Stage string
	Cause error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing failure in %s: %v", e.Stage, e.Cause)
}

func (e *ProcessingError) Unwrap() error { return e.Cause }

// NotFoundError marks a UUID lookup miss. Accept/reject treat this as a
// no-op; find_by_uuid returns nil instead of raising.
type NotFoundError struct {
	Kind string
	UUID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s %s", e.Kind, e.UUID)
}

// FatalError wraps an unexpected exception inside a workflow. It is
// logged with full context and re-raised with a truncated message.
type FatalError struct {
	Cause error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %v", e.Cause)
}

func (e *FatalError) Unwrap() error { return e.Cause }

// TruncateMessage bounds an error string to at most n characters before it
// is surfaced to the orchestration layer, preventing runaway payload
// growth in workflow history (spec §4.1, §7).
func TruncateMessage(err error, n int) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) <= n {
		return msg
	}
	return msg[:n]
}
