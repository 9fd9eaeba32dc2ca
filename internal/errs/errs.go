// Package errs defines the error taxonomy shared across herd commands.
// Only usage errors and unrecovered provisioning errors terminate the
// process; everything else is absorbed locally as a warning.
package errs

import (
	"errors"
	"fmt"
)

// UsageError indicates bad or missing CLI input. Always exit 1, never retried.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// Usagef creates a UsageError with a formatted message.
func Usagef(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError indicates a duplicate agent ID. Aborts that agent only;
// a batch continues with its remaining inputs.
type ConflictError struct {
	ID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("agent %q already exists (attach with 'herd attach %s' or pick another name)", e.ID, e.ID)
}

// ProvisioningError indicates a workspace or session backing-system
// failure. Fatal to that agent, batch continues.
type ProvisioningError struct {
	Op  string // "workspace" or "session"
	ID  string
	Err error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("%s provisioning for %q failed: %v", e.Op, e.ID, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsUsage reports whether err is a UsageError.
func IsUsage(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}
