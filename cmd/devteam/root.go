package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ShayCichocki/devteam/internal/config"
	"github.com/ShayCichocki/devteam/internal/logging"
)

var (
	cfg    *config.Config
	logger = zap.NewNop()

	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "devteam",
	Short: "AI development team",
	Long: `devteam turns a project idea into a reviewed task plan and then works
through the tasks one at a time: a developer agent generates code, a tester
agent checks it, and a researcher can be consulted on demand.

With no arguments, launches the interactive TUI. Use 'devteam run' for a
headless run that streams the team chat to the terminal.

Configuration is read from ~/.config/devteam/config.yaml, a project
.devteam.yaml and the environment (ANTHROPIC_API_KEY, GEMINI_API_KEY).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}

		logFile := cfg.Log.File
		if logFile == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			logFile = logging.DefaultFile(cwd)
		}
		l, err := logging.New(logging.Options{Level: cfg.Log.Level, File: logFile})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var incomplete *incompleteError
		if !errors.As(err, &incomplete) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
