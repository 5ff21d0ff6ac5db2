// Command funcdeploy packages and deploys the scoring pipeline's
// serverless functions and converges their queue and timer triggers.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Exit codes.
const (
	ExitSuccess     = 0
	ExitDeployError = 1
	ExitConfigError = 2
)

var (
	envFile      string
	manifestPath string
	sourceDir    string
	ycBin        string
	logLevel     string
	logFormat    string
)

// exitCode is set by command runs and carried out through main.
var exitCode = ExitSuccess

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := &cobra.Command{
		Use:   "funcdeploy",
		Short: "Deploy the scoring pipeline to the serverless platform",
		Long: `funcdeploy packages the predict-worker and run-finalizer functions,
publishes new versions, and idempotently converges their message-queue
and timer triggers.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to the KEY=VALUE env file")
	rootCmd.PersistentFlags().StringVar(&ycBin, "yc-bin", "yc", "Control plane CLI binary")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(newDeployCmd())
	rootCmd.AddCommand(newTeardownCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		return ExitConfigError
	}
	return exitCode
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("funcdeploy %s (built %s)\n", Version, BuildTime)
		},
	}
}

// setupLogger creates a logger with the configured level and format.
// Logs go to stderr so warnings stay distinguishable from the status
// output on stdout.
func setupLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(logFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
