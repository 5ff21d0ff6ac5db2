package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/modelarena/funcdeploy/internal/core/capability"
	"github.com/modelarena/funcdeploy/internal/core/config"
	"github.com/modelarena/funcdeploy/internal/core/manifest"
	"github.com/modelarena/funcdeploy/internal/shell/archive"
	"github.com/modelarena/funcdeploy/internal/shell/cloud"
	"github.com/modelarena/funcdeploy/internal/shell/reconcile"
)

func newDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy both functions and converge their triggers",
		Run: func(cmd *cobra.Command, args []string) {
			exitCode = runDeploy()
		},
	}
	cmd.Flags().StringVar(&sourceDir, "source-dir", "./functions", "Directory containing the function source trees")
	cmd.Flags().StringVar(&manifestPath, "manifest", "funcdeploy.yaml", "Optional deploy manifest with per-function overrides")
	return cmd
}

func runDeploy() int {
	logger := setupLogger()

	cfg, err := config.Load(envFile)
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "configuration error: %v\n", cfgErr)
			return ExitConfigError
		}
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	overrides, err := manifest.Load(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	cli, err := cloud.NewCLI(ycBin, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "deployment error: %v\n", err)
		return ExitDeployError
	}

	probe := capability.NewProbe(cli, logger)
	packer := archive.NewPacker(logger)
	orch := reconcile.NewOrchestrator(cfg, cli, probe, packer, sourceDir, overrides, logger)

	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond)
	s.Suffix = " Deploying serverless pipeline ..."
	s.Start()
	res, err := orch.Run(context.Background())
	s.Stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "deployment error: %v\n", err)
		return ExitDeployError
	}

	printResult(res)

	// Update degradations alone still exit zero; a trigger that was asked
	// for and could not be created does not.
	if res.TriggerFailed() {
		return ExitDeployError
	}
	return ExitSuccess
}

func printResult(res *reconcile.Result) {
	fmt.Printf("Deployment %s complete\n", res.DeployID)
	for name, version := range res.Versions {
		fmt.Printf("  function %-24s version %s\n", name, version)
	}
	printTrigger(res.Queue)
	printTrigger(res.Timer)
}

func printTrigger(rep reconcile.TriggerReport) {
	if rep.Err != nil {
		fmt.Printf("  trigger  %-24s FAILED: %v\n", rep.Name, rep.Err)
		return
	}
	fmt.Printf("  trigger  %-24s %s\n", rep.Name, rep.Outcome)
}
