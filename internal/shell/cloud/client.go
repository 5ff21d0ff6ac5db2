// Package cloud implements the client for the serverless control plane.
// This is part of the imperative shell - all calls round-trip through the
// platform's versioned CLI.
package cloud

import (
	"context"

	"github.com/modelarena/funcdeploy/internal/core/fnspec"
)

// Function is a function resource as reported by the control plane.
type Function struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Trigger is a trigger resource as reported by the control plane.
type Trigger struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Introspectable operations, as understood by the capability probe. Timer
// triggers carry no optional parameters, so only the queue trigger
// operations are ever probed.
const (
	OpCreateQueueTrigger = "trigger create message-queue"
	OpUpdateQueueTrigger = "trigger update message-queue"
)

// Optional queue trigger flags; everything here must pass the capability
// probe before being put on a request.
const (
	FlagBatchSize         = "batch-size"
	FlagBatchCutoff       = "batch-cutoff"
	FlagVisibilityTimeout = "visibility-timeout"
)

// QueueTriggerOptionalFlags returns the probe candidate set for queue
// trigger create/update calls.
func QueueTriggerOptionalFlags() []string {
	return []string{FlagBatchSize, FlagBatchCutoff, FlagVisibilityTimeout}
}

// ControlPlane defines the operations the reconciler needs from the
// serverless platform. Get calls return ErrNotFound (wrapped) for absent
// resources; create calls return ErrAlreadyExists for conflicts; anything
// the installed CLI version cannot express surfaces as ErrUnsupported.
type ControlPlane interface {
	// GetFunction looks up a function resource by name.
	GetFunction(ctx context.Context, name string) (*Function, error)

	// CreateFunction creates an empty function resource.
	CreateFunction(ctx context.Context, name string) (*Function, error)

	// CreateFunctionVersion publishes a new version with the full spec and
	// the packaged source artifact. Returns the new version ID.
	CreateFunctionVersion(ctx context.Context, spec fnspec.FunctionSpec, artifactPath, description string) (string, error)

	// GetTrigger looks up a trigger resource by name.
	GetTrigger(ctx context.Context, name string) (*Trigger, error)

	// CreateQueueTrigger creates the message-queue trigger. Only the
	// optional flags listed in supported are put on the request.
	CreateQueueTrigger(ctx context.Context, spec fnspec.QueueTrigger, supported []string) error

	// UpdateQueueTrigger converges an existing message-queue trigger.
	UpdateQueueTrigger(ctx context.Context, spec fnspec.QueueTrigger, supported []string) error

	// CreateTimerTrigger creates the timer trigger.
	CreateTimerTrigger(ctx context.Context, spec fnspec.TimerTrigger) error

	// UpdateTimerTrigger converges an existing timer trigger.
	UpdateTimerTrigger(ctx context.Context, spec fnspec.TimerTrigger) error

	// DeleteTrigger removes a trigger by name.
	DeleteTrigger(ctx context.Context, name string) error
}
