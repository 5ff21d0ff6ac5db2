package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modelarena/funcdeploy/internal/core/config"
	"github.com/modelarena/funcdeploy/internal/shell/cloud"
	"github.com/modelarena/funcdeploy/internal/shell/reconcile"
)

func newTeardownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teardown",
		Short: "Delete the queue and timer triggers",
		Long: `teardown removes the two trigger resources. Functions and their
published versions are left in place. A trigger that is already absent
counts as removed.`,
		Run: func(cmd *cobra.Command, args []string) {
			exitCode = runTeardown()
		},
	}
}

func runTeardown() int {
	logger := setupLogger()

	cli, err := cloud.NewCLI(ycBin, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "teardown error: %v\n", err)
		return ExitDeployError
	}

	queueTrigger, timerTrigger := config.TriggerNames()
	reports := reconcile.RemoveTriggers(context.Background(), cli, logger, queueTrigger, timerTrigger)

	code := ExitSuccess
	for _, rep := range reports {
		if rep.Err != nil {
			fmt.Fprintf(os.Stderr, "teardown error: %v\n", rep.Err)
			code = ExitDeployError
			continue
		}
		if rep.Removed {
			fmt.Printf("  trigger  %-24s deleted\n", rep.Name)
		} else {
			fmt.Printf("  trigger  %-24s already absent\n", rep.Name)
		}
	}
	return code
}
