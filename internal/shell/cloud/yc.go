package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"

	"github.com/modelarena/funcdeploy/internal/core/fnspec"
)

// CLI drives the control plane through the `yc` binary. Every call is a
// synchronous round-trip; data calls ask for JSON output, failures are
// classified by the gRPC status text the CLI prints to stderr.
type CLI struct {
	bin    string
	logger *slog.Logger
}

// NewCLI creates a control-plane client for the given binary ("yc" when
// empty).
func NewCLI(bin string, logger *slog.Logger) (*CLI, error) {
	bin = strings.TrimSpace(bin)
	if bin == "" {
		bin = "yc"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBinaryNotFound, bin)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CLI{bin: bin, logger: logger.With("component", "cloud")}, nil
}

func (c *CLI) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.bin, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, classifyStderr(string(exitErr.Stderr), err)
		}
		return nil, err
	}
	return out, nil
}

// classifyStderr maps the CLI's error text onto the package sentinels. The
// CLI surfaces control-plane failures as gRPC status lines ("code =
// AlreadyExists"), and its own argument rejections as unknown flag/command
// messages.
func classifyStderr(stderr string, err error) error {
	text := strings.TrimSpace(stderr)
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "alreadyexists") || strings.Contains(lower, "already exists"):
		return fmt.Errorf("%w: %s", ErrAlreadyExists, text)
	case strings.Contains(lower, "notfound") || strings.Contains(lower, "not found"):
		return fmt.Errorf("%w: %s", ErrNotFound, text)
	case strings.Contains(lower, "unknown command") ||
		strings.Contains(lower, "unknown flag") ||
		strings.Contains(lower, "unknown shorthand"):
		return fmt.Errorf("%w: %s", ErrUnsupported, text)
	}
	if text == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, text)
}

// =============================================================================
// Functions
// =============================================================================

func (c *CLI) GetFunction(ctx context.Context, name string) (*Function, error) {
	out, err := c.run(ctx, "serverless", "function", "get", name, "--format", "json")
	if err != nil {
		return nil, NewCloudError("GetFunction", "function", name, "lookup failed", err)
	}
	var fn Function
	if err := json.Unmarshal(out, &fn); err != nil {
		return nil, NewCloudError("GetFunction", "function", name, "invalid response", err)
	}
	return &fn, nil
}

func (c *CLI) CreateFunction(ctx context.Context, name string) (*Function, error) {
	out, err := c.run(ctx, "serverless", "function", "create", "--name", name, "--format", "json")
	if err != nil {
		return nil, NewCloudError("CreateFunction", "function", name, "create failed", err)
	}
	var fn Function
	if err := json.Unmarshal(out, &fn); err != nil {
		return nil, NewCloudError("CreateFunction", "function", name, "invalid response", err)
	}
	return &fn, nil
}

type versionResponse struct {
	ID string `json:"id"`
}

func (c *CLI) CreateFunctionVersion(ctx context.Context, spec fnspec.FunctionSpec, artifactPath, description string) (string, error) {
	args := []string{
		"serverless", "function", "version", "create",
		"--function-name", spec.Name,
		"--runtime", spec.Runtime,
		"--entrypoint", spec.Entrypoint,
		"--memory", spec.Memory,
		"--execution-timeout", spec.ExecutionTimeout,
		"--service-account-id", spec.ServiceAccountID,
		"--source-path", artifactPath,
	}
	if env := formatEnvironment(spec.Environment); env != "" {
		args = append(args, "--environment", env)
	}
	if description != "" {
		args = append(args, "--description", description)
	}
	args = append(args, "--format", "json")

	out, err := c.run(ctx, args...)
	if err != nil {
		return "", NewCloudError("CreateFunctionVersion", "function", spec.Name, "publish failed", err)
	}
	var v versionResponse
	if err := json.Unmarshal(out, &v); err != nil {
		return "", NewCloudError("CreateFunctionVersion", "function", spec.Name, "invalid response", err)
	}
	return v.ID, nil
}

// formatEnvironment renders the environment map as sorted KEY=VALUE pairs,
// comma-joined, the way the CLI expects them.
func formatEnvironment(env map[string]string) string {
	if len(env) == 0 {
		return ""
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+env[k])
	}
	return strings.Join(pairs, ",")
}

// =============================================================================
// Triggers
// =============================================================================

func (c *CLI) GetTrigger(ctx context.Context, name string) (*Trigger, error) {
	out, err := c.run(ctx, "serverless", "trigger", "get", name, "--format", "json")
	if err != nil {
		return nil, NewCloudError("GetTrigger", "trigger", name, "lookup failed", err)
	}
	var tr Trigger
	if err := json.Unmarshal(out, &tr); err != nil {
		return nil, NewCloudError("GetTrigger", "trigger", name, "invalid response", err)
	}
	return &tr, nil
}

func (c *CLI) CreateQueueTrigger(ctx context.Context, spec fnspec.QueueTrigger, supported []string) error {
	args := append([]string{"serverless", "trigger", "create", "message-queue"},
		queueTriggerArgs(spec, supported)...)
	if _, err := c.run(ctx, args...); err != nil {
		return NewCloudError("CreateTrigger", "trigger", spec.Name, "create failed", err)
	}
	return nil
}

func (c *CLI) UpdateQueueTrigger(ctx context.Context, spec fnspec.QueueTrigger, supported []string) error {
	args := append([]string{"serverless", "trigger", "update", "message-queue"},
		queueTriggerArgs(spec, supported)...)
	if _, err := c.run(ctx, args...); err != nil {
		return NewCloudError("UpdateTrigger", "trigger", spec.Name, "update failed", err)
	}
	return nil
}

// queueTriggerArgs builds the shared argv tail for queue trigger
// create/update. Optional tuning flags go on the request only when the
// capability probe reported them.
func queueTriggerArgs(spec fnspec.QueueTrigger, supported []string) []string {
	args := []string{
		"--name", spec.Name,
		"--queue", spec.QueueID,
		"--queue-service-account-id", spec.ReaderServiceAccountID,
		"--invoke-function-name", spec.FunctionName,
		"--invoke-function-service-account-id", spec.InvokerServiceAccountID,
	}
	optional := map[string]string{
		FlagBatchSize:         spec.BatchSize,
		FlagBatchCutoff:       spec.BatchCutoff,
		FlagVisibilityTimeout: spec.VisibilityTimeout,
	}
	for _, flag := range supported {
		if value, ok := optional[flag]; ok && value != "" {
			args = append(args, "--"+flag, value)
		}
	}
	return args
}

func (c *CLI) CreateTimerTrigger(ctx context.Context, spec fnspec.TimerTrigger) error {
	args := append([]string{"serverless", "trigger", "create", "timer"}, timerTriggerArgs(spec)...)
	if _, err := c.run(ctx, args...); err != nil {
		return NewCloudError("CreateTrigger", "trigger", spec.Name, "create failed", err)
	}
	return nil
}

func (c *CLI) UpdateTimerTrigger(ctx context.Context, spec fnspec.TimerTrigger) error {
	args := append([]string{"serverless", "trigger", "update", "timer"}, timerTriggerArgs(spec)...)
	if _, err := c.run(ctx, args...); err != nil {
		return NewCloudError("UpdateTrigger", "trigger", spec.Name, "update failed", err)
	}
	return nil
}

func timerTriggerArgs(spec fnspec.TimerTrigger) []string {
	return []string{
		"--name", spec.Name,
		"--cron-expression", spec.CronExpression,
		"--invoke-function-name", spec.FunctionName,
		"--invoke-function-service-account-id", spec.InvokerServiceAccountID,
	}
}

func (c *CLI) DeleteTrigger(ctx context.Context, name string) error {
	if _, err := c.run(ctx, "serverless", "trigger", "delete", "--name", name); err != nil {
		return NewCloudError("DeleteTrigger", "trigger", name, "delete failed", err)
	}
	return nil
}
