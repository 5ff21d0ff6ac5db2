package fnspec

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelarena/funcdeploy/internal/core/config"
)

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

// =============================================================================
// Function Spec Tests
// =============================================================================

func TestBuildFunctions_TwoSpecsInDeployOrder(t *testing.T) {
	specs := BuildFunctions(testConfig(), "./functions", nil)
	require.Len(t, specs, 2)
	assert.Equal(t, "predict-worker", specs[0].Name)
	assert.Equal(t, "run-finalizer", specs[1].Name)
}

func TestBuildFunctions_PredictEnvironment(t *testing.T) {
	specs := BuildFunctions(testConfig(), "./functions", nil)

	env := specs[0].Environment
	assert.Equal(t, "5432", env["POSTGRES_PORT"])
	assert.Equal(t, "2.0", env["REQUEST_CONNECT_TIMEOUT"])
	assert.Equal(t, "3.0", env["REQUEST_READ_TIMEOUT"])
	assert.Equal(t, "1200", env["RUN_TIME_LIMIT_SECONDS"])
}

func TestBuildFunctions_FinalizerOmitsRequestTimeouts(t *testing.T) {
	specs := BuildFunctions(testConfig(), "./functions", nil)

	env := specs[1].Environment
	assert.Equal(t, "5432", env["POSTGRES_PORT"])
	assert.NotContains(t, env, "REQUEST_CONNECT_TIMEOUT")
	assert.NotContains(t, env, "REQUEST_READ_TIMEOUT")
	assert.Equal(t, "1200", env["RUN_TIME_LIMIT_SECONDS"])
}

func TestBuildFunctions_Baselines(t *testing.T) {
	specs := BuildFunctions(testConfig(), "./functions", nil)

	assert.Equal(t, "python312", specs[0].Runtime)
	assert.Equal(t, "main.handler", specs[0].Entrypoint)
	assert.Equal(t, "256m", specs[0].Memory)
	assert.Equal(t, "300s", specs[0].ExecutionTimeout)
	assert.Equal(t, filepath.Join("./functions", "predict_worker"), specs[0].SourcePath)

	assert.Equal(t, "128m", specs[1].Memory)
	assert.Equal(t, "60s", specs[1].ExecutionTimeout)
	assert.Equal(t, filepath.Join("./functions", "run_finalizer"), specs[1].SourcePath)
}

func TestBuildFunctions_OverridesApply(t *testing.T) {
	overrides := map[string]Override{
		RolePredict: {Memory: "512m", ExecutionTimeout: "600s"},
	}
	specs := BuildFunctions(testConfig(), "./functions", overrides)

	assert.Equal(t, "512m", specs[0].Memory)
	assert.Equal(t, "600s", specs[0].ExecutionTimeout)
	// Untouched fields keep baselines; the other function is unaffected.
	assert.Equal(t, "python312", specs[0].Runtime)
	assert.Equal(t, "128m", specs[1].Memory)
}

// =============================================================================
// Trigger Spec Tests
// =============================================================================

func TestBuildQueueTrigger(t *testing.T) {
	spec := BuildQueueTrigger(testConfig(), "yrn:queue")

	assert.Equal(t, "predict-tasks", spec.Name)
	assert.Equal(t, "yrn:queue", spec.QueueID)
	assert.Equal(t, "predict-worker", spec.FunctionName)
	assert.Equal(t, "aje123", spec.ReaderServiceAccountID)
	assert.Equal(t, "aje123", spec.InvokerServiceAccountID)
	assert.Equal(t, "10", spec.BatchSize)
	assert.Equal(t, "10s", spec.BatchCutoff)
	assert.Equal(t, "600s", spec.VisibilityTimeout)
}

func TestBuildTimerTrigger(t *testing.T) {
	spec := BuildTimerTrigger(testConfig())

	assert.Equal(t, "run-watchdog", spec.Name)
	assert.Equal(t, "* * ? * * *", spec.CronExpression)
	assert.Equal(t, "run-finalizer", spec.FunctionName)
	assert.Equal(t, "aje123", spec.InvokerServiceAccountID)
}
