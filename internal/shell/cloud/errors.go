package cloud

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrNotFound is returned when the named resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when creating a resource that exists.
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrUnsupported is returned when the installed control-plane CLI does
	// not know the requested operation or flag.
	ErrUnsupported = errors.New("operation not supported by control plane")

	// ErrBinaryNotFound is returned when the control-plane CLI is absent.
	ErrBinaryNotFound = errors.New("control plane CLI not found")
)

// CloudError wraps control-plane failures with call context.
type CloudError struct {
	Op      string // Operation that failed (e.g., "CreateTrigger")
	Entity  string // Entity type (function, trigger)
	ID      string // Resource name if applicable
	Message string
	Err     error
}

func (e *CloudError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %s", e.Op, e.Entity, e.ID, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *CloudError) Unwrap() error {
	return e.Err
}

// NewCloudError creates a new CloudError.
func NewCloudError(op, entity, id, message string, err error) *CloudError {
	return &CloudError{
		Op:      op,
		Entity:  entity,
		ID:      id,
		Message: message,
		Err:     err,
	}
}
