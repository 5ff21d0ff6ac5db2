// Package reconcile converges the pipeline's function and trigger
// resources to their desired state.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/modelarena/funcdeploy/internal/core/fnspec"
	"github.com/modelarena/funcdeploy/internal/shell/cloud"
)

// Archiver packs a function source tree into a deployable artifact.
type Archiver interface {
	Pack(sourceDir string) (string, error)
}

// FunctionDeployer ensures function resources exist and publishes
// versions.
type FunctionDeployer struct {
	cloud  cloud.ControlPlane
	packer Archiver
	logger *slog.Logger
}

// NewFunctionDeployer creates a function deployer.
func NewFunctionDeployer(cp cloud.ControlPlane, packer Archiver, logger *slog.Logger) *FunctionDeployer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FunctionDeployer{
		cloud:  cp,
		packer: packer,
		logger: logger.With("component", "functions"),
	}
}

// EnsureAndPublish makes sure the function resource exists, then publishes
// a new version from the packed source artifact and returns its ID.
//
// Existence is idempotent: a present function is left alone, and losing a
// creation race to a concurrent deploy is tolerated. Version publishing is
// intentionally not idempotent — every call produces one more version,
// which is how a deploy ships new code.
//
// Any publish failure is fatal for the whole run: without a published
// version nothing downstream is operable.
func (d *FunctionDeployer) EnsureAndPublish(ctx context.Context, spec fnspec.FunctionSpec, description string) (string, error) {
	_, err := d.cloud.GetFunction(ctx, spec.Name)
	switch {
	case err == nil:
		d.logger.Debug("function exists", "function", spec.Name)
	case errors.Is(err, cloud.ErrNotFound):
		if _, createErr := d.cloud.CreateFunction(ctx, spec.Name); createErr != nil {
			if !errors.Is(createErr, cloud.ErrAlreadyExists) {
				return "", fmt.Errorf("failed to create function %s: %w", spec.Name, createErr)
			}
			d.logger.Debug("function created concurrently", "function", spec.Name)
		} else {
			d.logger.Info("created function", "function", spec.Name)
		}
	default:
		return "", fmt.Errorf("failed to look up function %s: %w", spec.Name, err)
	}

	artifact, err := d.packer.Pack(spec.SourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to package function %s: %w", spec.Name, err)
	}
	defer os.Remove(artifact)

	version, err := d.cloud.CreateFunctionVersion(ctx, spec, artifact, description)
	if err != nil {
		return "", fmt.Errorf("failed to publish version for function %s: %w", spec.Name, err)
	}
	d.logger.Info("published function version",
		"function", spec.Name,
		"version", version,
		"runtime", spec.Runtime,
		"memory", spec.Memory,
	)
	return version, nil
}
