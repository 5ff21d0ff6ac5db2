package reconcile

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/modelarena/funcdeploy/internal/core/config"
	"github.com/modelarena/funcdeploy/internal/core/fnspec"
	"github.com/modelarena/funcdeploy/internal/core/queueref"
	"github.com/modelarena/funcdeploy/internal/shell/cloud"
)

// =============================================================================
// Orchestrator - Drives One Deployment Run
// =============================================================================

// TriggerReport records how one trigger step ended. Err is set only for a
// failed creation attempt; update degradations show up as a degraded
// Outcome with a nil Err.
type TriggerReport struct {
	Name    string
	Outcome Outcome
	Err     error
}

// Result summarizes a deployment run.
type Result struct {
	DeployID string
	Versions map[string]string // function name -> published version ID
	Queue    TriggerReport
	Timer    TriggerReport
}

// TriggerFailed reports whether any trigger creation attempt failed. The
// run still completes, but the process should exit non-zero.
func (r *Result) TriggerFailed() bool {
	return r.Queue.Err != nil || r.Timer.Err != nil
}

// Degraded reports whether any trigger was left possibly stale by a
// failed or unsupported update.
func (r *Result) Degraded() bool {
	return r.Queue.Outcome.Degraded() || r.Timer.Outcome.Degraded()
}

// Orchestrator sequences one deployment run: functions first (fatal path),
// then triggers (best effort). Strictly sequential; each step runs to
// completion before the next starts.
type Orchestrator struct {
	cfg       *config.Config
	sourceDir string
	overrides map[string]fnspec.Override
	functions *FunctionDeployer
	triggers  *TriggerReconciler
	logger    *slog.Logger
}

// NewOrchestrator wires a run over the given control plane and probe.
func NewOrchestrator(cfg *config.Config, cp cloud.ControlPlane, probe CapabilityProbe, packer Archiver, sourceDir string, overrides map[string]fnspec.Override, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:       cfg,
		sourceDir: sourceDir,
		overrides: overrides,
		functions: NewFunctionDeployer(cp, packer, logger),
		triggers:  NewTriggerReconciler(cp, probe, logger),
		logger:    logger.With("component", "orchestrator"),
	}
}

// Run deploys both functions and reconciles both triggers.
//
// A function publish failure aborts immediately with an error. Trigger
// steps never abort each other: a queue trigger creation failure is
// recorded in the Result and the timer trigger is still attempted. The
// queue trigger step is skipped entirely when no queue identifier is
// configured — deploying without the queue wired yet is a valid setup.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	deployID := uuid.NewString()[:8]
	logger := o.logger.With("deploy_id", deployID)
	logger.Info("starting deployment",
		"predict_function", o.cfg.PredictFunctionName,
		"finalizer_function", o.cfg.FinalizerFunctionName,
	)

	res := &Result{
		DeployID: deployID,
		Versions: make(map[string]string, 2),
	}

	for _, spec := range fnspec.BuildFunctions(o.cfg, o.sourceDir, o.overrides) {
		version, err := o.functions.EnsureAndPublish(ctx, spec, "deploy "+deployID)
		if err != nil {
			return nil, err
		}
		res.Versions[spec.Name] = version
	}

	queueID := queueref.Resolve(o.cfg.QueueARN, o.cfg.QueueURL)
	if queueID == "" {
		logger.Info("no queue configured, skipping queue trigger", "trigger", o.cfg.QueueTriggerName)
		res.Queue = TriggerReport{Name: o.cfg.QueueTriggerName, Outcome: OutcomeSkipped}
	} else {
		spec := fnspec.BuildQueueTrigger(o.cfg, queueID)
		outcome, err := o.triggers.ReconcileQueueTrigger(ctx, spec)
		if err != nil {
			logger.Error("queue trigger reconciliation failed", "trigger", spec.Name, "error", err)
		}
		res.Queue = TriggerReport{Name: spec.Name, Outcome: outcome, Err: err}
	}

	timerSpec := fnspec.BuildTimerTrigger(o.cfg)
	outcome, err := o.triggers.ReconcileTimerTrigger(ctx, timerSpec)
	if err != nil {
		logger.Error("timer trigger reconciliation failed", "trigger", timerSpec.Name, "error", err)
	}
	res.Timer = TriggerReport{Name: timerSpec.Name, Outcome: outcome, Err: err}

	logger.Info("deployment finished",
		"queue_trigger", string(res.Queue.Outcome),
		"timer_trigger", string(res.Timer.Outcome),
	)
	return res, nil
}
