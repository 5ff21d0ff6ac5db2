// Package fnspec builds the desired-state specs for the pipeline's two
// functions and two triggers.
package fnspec

import (
	"path/filepath"

	"github.com/modelarena/funcdeploy/internal/core/config"
)

// Function roles, used as manifest keys and for override lookup.
const (
	RolePredict   = "predict"
	RoleFinalizer = "finalizer"
)

// Baseline function settings. A deploy manifest can override any of them
// per function.
const (
	DefaultRuntime    = "python312"
	DefaultEntrypoint = "main.handler"

	predictMemory      = "256m"
	predictTimeout     = "300s"
	predictSourceDir   = "predict_worker"
	finalizerMemory    = "128m"
	finalizerTimeout   = "60s"
	finalizerSourceDir = "run_finalizer"
)

// FunctionSpec is the full desired state of one function version. Immutable
// once built; owned by the deployer for the duration of one deploy call.
type FunctionSpec struct {
	Role             string
	Name             string
	Runtime          string
	Entrypoint       string
	Memory           string
	ExecutionTimeout string
	ServiceAccountID string
	SourcePath       string
	Environment      map[string]string
}

// Override replaces selected FunctionSpec fields; empty fields keep the
// baseline.
type Override struct {
	Runtime          string
	Entrypoint       string
	Memory           string
	ExecutionTimeout string
	SourcePath       string
}

// QueueTrigger is the desired state of the message-queue trigger. The three
// tuning fields are optional parameters, gated through the capability probe
// before use.
type QueueTrigger struct {
	Name                    string
	QueueID                 string
	BatchSize               string
	BatchCutoff             string
	VisibilityTimeout       string
	FunctionName            string
	ReaderServiceAccountID  string
	InvokerServiceAccountID string
}

// TimerTrigger is the desired state of the timer trigger. It has no
// optional parameters beyond the mandatory fields.
type TimerTrigger struct {
	Name                    string
	CronExpression          string
	FunctionName            string
	InvokerServiceAccountID string
}

// BuildFunctions produces the predict-worker and finalizer specs, in deploy
// order. The finalizer omits the HTTP request timeouts from its
// environment: it never calls the scored endpoint.
func BuildFunctions(cfg *config.Config, sourceDir string, overrides map[string]Override) []FunctionSpec {
	baseEnv := map[string]string{
		config.KeyDBUser:       cfg.DBUser,
		config.KeyDBPassword:   cfg.DBPassword,
		config.KeyDBName:       cfg.DBName,
		config.KeyDBHost:       cfg.DBHost,
		config.KeyDBPort:       cfg.DBPort,
		config.KeyRunTimeLimit: cfg.RunTimeLimitSeconds,
	}

	predictEnv := make(map[string]string, len(baseEnv)+2)
	for k, v := range baseEnv {
		predictEnv[k] = v
	}
	predictEnv[config.KeyConnectTimeout] = cfg.RequestConnectTimeout
	predictEnv[config.KeyReadTimeout] = cfg.RequestReadTimeout

	finalizerEnv := make(map[string]string, len(baseEnv))
	for k, v := range baseEnv {
		finalizerEnv[k] = v
	}

	predict := FunctionSpec{
		Role:             RolePredict,
		Name:             cfg.PredictFunctionName,
		Runtime:          DefaultRuntime,
		Entrypoint:       DefaultEntrypoint,
		Memory:           predictMemory,
		ExecutionTimeout: predictTimeout,
		ServiceAccountID: cfg.ServiceAccountID,
		SourcePath:       filepath.Join(sourceDir, predictSourceDir),
		Environment:      predictEnv,
	}
	finalizer := FunctionSpec{
		Role:             RoleFinalizer,
		Name:             cfg.FinalizerFunctionName,
		Runtime:          DefaultRuntime,
		Entrypoint:       DefaultEntrypoint,
		Memory:           finalizerMemory,
		ExecutionTimeout: finalizerTimeout,
		ServiceAccountID: cfg.ServiceAccountID,
		SourcePath:       filepath.Join(sourceDir, finalizerSourceDir),
		Environment:      finalizerEnv,
	}

	specs := []FunctionSpec{predict, finalizer}
	for i := range specs {
		specs[i].apply(overrides[specs[i].Role])
	}
	return specs
}

func (s *FunctionSpec) apply(o Override) {
	if o.Runtime != "" {
		s.Runtime = o.Runtime
	}
	if o.Entrypoint != "" {
		s.Entrypoint = o.Entrypoint
	}
	if o.Memory != "" {
		s.Memory = o.Memory
	}
	if o.ExecutionTimeout != "" {
		s.ExecutionTimeout = o.ExecutionTimeout
	}
	if o.SourcePath != "" {
		s.SourcePath = o.SourcePath
	}
}

// BuildQueueTrigger assembles the queue trigger spec for the resolved queue
// identifier. The same service account reads the queue and invokes the
// function.
func BuildQueueTrigger(cfg *config.Config, queueID string) QueueTrigger {
	return QueueTrigger{
		Name:                    cfg.QueueTriggerName,
		QueueID:                 queueID,
		BatchSize:               cfg.BatchSize,
		BatchCutoff:             cfg.BatchCutoff,
		VisibilityTimeout:       cfg.VisibilityTimeout,
		FunctionName:            cfg.PredictFunctionName,
		ReaderServiceAccountID:  cfg.ServiceAccountID,
		InvokerServiceAccountID: cfg.ServiceAccountID,
	}
}

// BuildTimerTrigger assembles the watchdog timer trigger spec.
func BuildTimerTrigger(cfg *config.Config) TimerTrigger {
	return TimerTrigger{
		Name:                    cfg.TimerTriggerName,
		CronExpression:          cfg.TimerCron,
		FunctionName:            cfg.FinalizerFunctionName,
		InvokerServiceAccountID: cfg.ServiceAccountID,
	}
}
