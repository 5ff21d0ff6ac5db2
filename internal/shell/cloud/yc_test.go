package cloud

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modelarena/funcdeploy/internal/core/fnspec"
)

// =============================================================================
// Error Classification Tests
// =============================================================================

func TestClassifyStderr_AlreadyExists(t *testing.T) {
	err := classifyStderr("ERROR: rpc error: code = AlreadyExists desc = trigger exists", errors.New("exit status 1"))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestClassifyStderr_NotFound(t *testing.T) {
	err := classifyStderr("ERROR: rpc error: code = NotFound desc = function not found", errors.New("exit status 1"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClassifyStderr_UnknownFlag(t *testing.T) {
	err := classifyStderr(`ERROR: unknown flag: --visibility-timeout`, errors.New("exit status 1"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestClassifyStderr_UnknownCommand(t *testing.T) {
	err := classifyStderr(`ERROR: unknown command "update" for "yc serverless trigger"`, errors.New("exit status 1"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestClassifyStderr_OtherErrorKeepsText(t *testing.T) {
	err := classifyStderr("ERROR: rpc error: code = PermissionDenied", errors.New("exit status 1"))
	assert.NotErrorIs(t, err, ErrAlreadyExists)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrUnsupported)
	assert.Contains(t, err.Error(), "PermissionDenied")
}

// =============================================================================
// Argument Construction Tests
// =============================================================================

func queueSpec() fnspec.QueueTrigger {
	return fnspec.QueueTrigger{
		Name:                    "predict-tasks",
		QueueID:                 "yrn:queue",
		BatchSize:               "10",
		BatchCutoff:             "10s",
		VisibilityTimeout:       "600s",
		FunctionName:            "predict-worker",
		ReaderServiceAccountID:  "aje123",
		InvokerServiceAccountID: "aje123",
	}
}

func TestQueueTriggerArgs_AllOptionalSupported(t *testing.T) {
	args := queueTriggerArgs(queueSpec(), QueueTriggerOptionalFlags())

	assert.Contains(t, args, "--batch-size")
	assert.Contains(t, args, "--batch-cutoff")
	assert.Contains(t, args, "--visibility-timeout")
	assert.Contains(t, args, "--queue")
	assert.Contains(t, args, "yrn:queue")
}

func TestQueueTriggerArgs_NoneSupported(t *testing.T) {
	args := queueTriggerArgs(queueSpec(), nil)

	assert.NotContains(t, args, "--batch-size")
	assert.NotContains(t, args, "--batch-cutoff")
	assert.NotContains(t, args, "--visibility-timeout")
	// Mandatory fields are always present.
	assert.Contains(t, args, "--name")
	assert.Contains(t, args, "--queue")
	assert.Contains(t, args, "--invoke-function-name")
	assert.Contains(t, args, "--queue-service-account-id")
	assert.Contains(t, args, "--invoke-function-service-account-id")
}

func TestQueueTriggerArgs_UnknownSupportedFlagIgnored(t *testing.T) {
	args := queueTriggerArgs(queueSpec(), []string{"batch-size", "retry-attempts"})

	assert.Contains(t, args, "--batch-size")
	assert.NotContains(t, args, "--retry-attempts")
}

func TestTimerTriggerArgs(t *testing.T) {
	args := timerTriggerArgs(fnspec.TimerTrigger{
		Name:                    "run-watchdog",
		CronExpression:          "* * ? * * *",
		FunctionName:            "run-finalizer",
		InvokerServiceAccountID: "aje123",
	})

	assert.Equal(t, []string{
		"--name", "run-watchdog",
		"--cron-expression", "* * ? * * *",
		"--invoke-function-name", "run-finalizer",
		"--invoke-function-service-account-id", "aje123",
	}, args)
}

func TestFormatEnvironment_SortedPairs(t *testing.T) {
	env := map[string]string{
		"POSTGRES_USER": "app",
		"POSTGRES_DB":   "runs",
	}
	assert.Equal(t, "POSTGRES_DB=runs,POSTGRES_USER=app", formatEnvironment(env))
}

func TestFormatEnvironment_Empty(t *testing.T) {
	assert.Equal(t, "", formatEnvironment(nil))
}
