package reconcile

import (
	"context"
	"fmt"

	"github.com/modelarena/funcdeploy/internal/core/config"
	"github.com/modelarena/funcdeploy/internal/core/fnspec"
	"github.com/modelarena/funcdeploy/internal/shell/cloud"
)

// fakeCloud is an in-memory control plane.
type fakeCloud struct {
	functions map[string]*cloud.Function
	triggers  map[string]*cloud.Trigger

	versionSeq int

	getFunctionErr error
	createFnErr    error
	publishErr     error
	getTriggerErr  error
	createQueueErr error
	createTimerErr error
	updateQueueErr error
	updateTimerErr error
	deleteErr      error

	createFnCalls    int
	publishCalls     int
	createQueueCalls int
	updateQueueCalls int
	createTimerCalls int
	updateTimerCalls int

	lastCreateSupported []string
	lastUpdateSupported []string
}

func newFakeCloud() *fakeCloud {
	return &fakeCloud{
		functions: make(map[string]*cloud.Function),
		triggers:  make(map[string]*cloud.Trigger),
	}
}

func (f *fakeCloud) GetFunction(ctx context.Context, name string) (*cloud.Function, error) {
	if f.getFunctionErr != nil {
		return nil, f.getFunctionErr
	}
	fn, ok := f.functions[name]
	if !ok {
		return nil, fmt.Errorf("GetFunction %s: %w", name, cloud.ErrNotFound)
	}
	return fn, nil
}

func (f *fakeCloud) CreateFunction(ctx context.Context, name string) (*cloud.Function, error) {
	f.createFnCalls++
	if f.createFnErr != nil {
		return nil, f.createFnErr
	}
	fn := &cloud.Function{ID: "fn-" + name, Name: name}
	f.functions[name] = fn
	return fn, nil
}

func (f *fakeCloud) CreateFunctionVersion(ctx context.Context, spec fnspec.FunctionSpec, artifactPath, description string) (string, error) {
	f.publishCalls++
	if f.publishErr != nil {
		return "", f.publishErr
	}
	f.versionSeq++
	return fmt.Sprintf("ver-%d", f.versionSeq), nil
}

func (f *fakeCloud) GetTrigger(ctx context.Context, name string) (*cloud.Trigger, error) {
	if f.getTriggerErr != nil {
		return nil, f.getTriggerErr
	}
	tr, ok := f.triggers[name]
	if !ok {
		return nil, fmt.Errorf("GetTrigger %s: %w", name, cloud.ErrNotFound)
	}
	return tr, nil
}

func (f *fakeCloud) CreateQueueTrigger(ctx context.Context, spec fnspec.QueueTrigger, supported []string) error {
	f.createQueueCalls++
	f.lastCreateSupported = supported
	if f.createQueueErr != nil {
		return f.createQueueErr
	}
	f.triggers[spec.Name] = &cloud.Trigger{ID: "trg-" + spec.Name, Name: spec.Name}
	return nil
}

func (f *fakeCloud) UpdateQueueTrigger(ctx context.Context, spec fnspec.QueueTrigger, supported []string) error {
	f.updateQueueCalls++
	f.lastUpdateSupported = supported
	return f.updateQueueErr
}

func (f *fakeCloud) CreateTimerTrigger(ctx context.Context, spec fnspec.TimerTrigger) error {
	f.createTimerCalls++
	if f.createTimerErr != nil {
		return f.createTimerErr
	}
	f.triggers[spec.Name] = &cloud.Trigger{ID: "trg-" + spec.Name, Name: spec.Name}
	return nil
}

func (f *fakeCloud) UpdateTimerTrigger(ctx context.Context, spec fnspec.TimerTrigger) error {
	f.updateTimerCalls++
	return f.updateTimerErr
}

func (f *fakeCloud) DeleteTrigger(ctx context.Context, name string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.triggers[name]; !ok {
		return fmt.Errorf("DeleteTrigger %s: %w", name, cloud.ErrNotFound)
	}
	delete(f.triggers, name)
	return nil
}

// fakeProbe reports a fixed supported subset.
type fakeProbe struct {
	supported []string
}

func (p *fakeProbe) SupportedFlags(ctx context.Context, operation string, candidates []string) []string {
	var out []string
	allowed := make(map[string]struct{}, len(p.supported))
	for _, s := range p.supported {
		allowed[s] = struct{}{}
	}
	for _, c := range candidates {
		if _, ok := allowed[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// fakePacker hands out a fixed artifact path without touching the
// filesystem.
type fakePacker struct {
	err   error
	calls int
}

func (p *fakePacker) Pack(sourceDir string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return "/tmp/fake-artifact.zip", nil
}

func testConfig() *config.Config {
	return &config.Config{
		DBUser:                "app",
		DBPassword:            "secret",
		DBName:                "runs",
		DBHost:                "db.internal",
		DBPort:                "5432",
		RequestConnectTimeout: "2.0",
		RequestReadTimeout:    "3.0",
		RunTimeLimitSeconds:   "1200",
		ServiceAccountID:      "aje123",
		PredictFunctionName:   "predict-worker",
		FinalizerFunctionName: "run-finalizer",
		QueueTriggerName:      "predict-tasks",
		TimerTriggerName:      "run-watchdog",
		BatchSize:             "10",
		BatchCutoff:           "10s",
		VisibilityTimeout:     "600s",
		TimerCron:             "* * ? * * *",
	}
}

func testFunctionSpec(name string) fnspec.FunctionSpec {
	return fnspec.FunctionSpec{
		Role:             fnspec.RolePredict,
		Name:             name,
		Runtime:          "python312",
		Entrypoint:       "main.handler",
		Memory:           "256m",
		ExecutionTimeout: "300s",
		ServiceAccountID: "aje123",
		SourcePath:       "./functions/predict_worker",
		Environment:      map[string]string{"POSTGRES_DB": "runs"},
	}
}
