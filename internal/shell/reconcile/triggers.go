package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelarena/funcdeploy/internal/core/fnspec"
	"github.com/modelarena/funcdeploy/internal/shell/cloud"
)

// Outcome reports how a trigger reconciliation ended. Only Created and
// Applied mean the resource matches the desired state; Unsupported and
// UpdateFailed leave an existing resource as it was.
type Outcome string

const (
	// OutcomeCreated: the trigger was absent and has been created.
	OutcomeCreated Outcome = "created"
	// OutcomeApplied: the trigger existed and the update went through.
	OutcomeApplied Outcome = "applied"
	// OutcomeUnsupported: the control plane has no update operation for
	// this trigger kind; the existing resource is left unchanged.
	OutcomeUnsupported Outcome = "update-unsupported"
	// OutcomeUpdateFailed: the update call failed; the existing resource
	// is left unchanged.
	OutcomeUpdateFailed Outcome = "update-failed"
	// OutcomeSkipped: reconciliation was not attempted (no queue
	// configured).
	OutcomeSkipped Outcome = "skipped"
)

// Degraded reports whether the outcome left an existing resource possibly
// stale.
func (o Outcome) Degraded() bool {
	return o == OutcomeUnsupported || o == OutcomeUpdateFailed
}

// CapabilityProbe filters candidate optional flags down to what the
// control plane advertises for an operation.
type CapabilityProbe interface {
	SupportedFlags(ctx context.Context, operation string, candidates []string) []string
}

// TriggerReconciler idempotently converges trigger resources. An absent
// trigger is created with capability-filtered optional parameters; a
// present one gets a best-effort update and is never deleted and
// recreated.
type TriggerReconciler struct {
	cloud  cloud.ControlPlane
	probe  CapabilityProbe
	logger *slog.Logger
}

// NewTriggerReconciler creates a trigger reconciler.
func NewTriggerReconciler(cp cloud.ControlPlane, probe CapabilityProbe, logger *slog.Logger) *TriggerReconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TriggerReconciler{
		cloud:  cp,
		probe:  probe,
		logger: logger.With("component", "triggers"),
	}
}

// ReconcileQueueTrigger converges the message-queue trigger.
func (r *TriggerReconciler) ReconcileQueueTrigger(ctx context.Context, spec fnspec.QueueTrigger) (Outcome, error) {
	return r.reconcile(ctx, spec.Name,
		func(ctx context.Context) error {
			supported := r.probe.SupportedFlags(ctx, cloud.OpCreateQueueTrigger, cloud.QueueTriggerOptionalFlags())
			r.logger.Debug("queue trigger capability", "trigger", spec.Name, "supported", supported)
			return r.cloud.CreateQueueTrigger(ctx, spec, supported)
		},
		func(ctx context.Context) error {
			supported := r.probe.SupportedFlags(ctx, cloud.OpUpdateQueueTrigger, cloud.QueueTriggerOptionalFlags())
			return r.cloud.UpdateQueueTrigger(ctx, spec, supported)
		},
	)
}

// ReconcileTimerTrigger converges the timer trigger. Timers have no
// optional parameters, so no capability gating applies.
func (r *TriggerReconciler) ReconcileTimerTrigger(ctx context.Context, spec fnspec.TimerTrigger) (Outcome, error) {
	return r.reconcile(ctx, spec.Name,
		func(ctx context.Context) error { return r.cloud.CreateTimerTrigger(ctx, spec) },
		func(ctx context.Context) error { return r.cloud.UpdateTimerTrigger(ctx, spec) },
	)
}

// reconcile runs the Absent/Present state machine for one trigger. A
// mandatory-field creation failure is an error (for this trigger only);
// every update failure degrades to a warning.
func (r *TriggerReconciler) reconcile(ctx context.Context, name string, create, update func(context.Context) error) (Outcome, error) {
	_, err := r.cloud.GetTrigger(ctx, name)
	switch {
	case errors.Is(err, cloud.ErrNotFound):
		if createErr := create(ctx); createErr != nil {
			if errors.Is(createErr, cloud.ErrAlreadyExists) {
				// Lost a creation race; the resource is there, which is
				// what we wanted.
				r.logger.Debug("trigger created concurrently", "trigger", name)
				return OutcomeCreated, nil
			}
			return "", fmt.Errorf("failed to create trigger %s: %w", name, createErr)
		}
		r.logger.Info("created trigger", "trigger", name)
		return OutcomeCreated, nil

	case err != nil:
		return "", fmt.Errorf("failed to look up trigger %s: %w", name, err)
	}

	updateErr := update(ctx)
	switch {
	case updateErr == nil:
		r.logger.Info("updated trigger", "trigger", name)
		return OutcomeApplied, nil
	case errors.Is(updateErr, cloud.ErrUnsupported):
		r.logger.Warn("trigger update not supported by control plane, leaving resource unchanged",
			"trigger", name,
			"error", updateErr,
		)
		return OutcomeUnsupported, nil
	default:
		r.logger.Warn("trigger update failed, leaving resource unchanged",
			"trigger", name,
			"error", updateErr,
		)
		return OutcomeUpdateFailed, nil
	}
}

// =============================================================================
// Teardown
// =============================================================================

// RemovalReport records how one trigger deletion ended. Removed is false
// with a nil Err when the trigger was already absent.
type RemovalReport struct {
	Name    string
	Removed bool
	Err     error
}

// RemoveTriggers deletes the named triggers. A trigger that is already
// absent counts as torn down; a genuine delete failure is recorded and the
// remaining triggers are still attempted.
func RemoveTriggers(ctx context.Context, cp cloud.ControlPlane, logger *slog.Logger, names ...string) []RemovalReport {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "triggers")

	reports := make([]RemovalReport, 0, len(names))
	for _, name := range names {
		err := cp.DeleteTrigger(ctx, name)
		switch {
		case err == nil:
			logger.Info("deleted trigger", "trigger", name)
			reports = append(reports, RemovalReport{Name: name, Removed: true})
		case errors.Is(err, cloud.ErrNotFound):
			logger.Info("trigger already absent", "trigger", name)
			reports = append(reports, RemovalReport{Name: name})
		default:
			logger.Error("trigger delete failed", "trigger", name, "error", err)
			reports = append(reports, RemovalReport{Name: name, Err: err})
		}
	}
	return reports
}
