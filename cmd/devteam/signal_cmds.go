package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/devteam/internal/signals"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the run in this directory",
	Long: `Pause a devteam run started in the current directory.

No new generation or test calls are scheduled until 'devteam resume'.
Calls already in flight still finish.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sendSignal(signals.SignalPause); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Pause requested.")
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused run in this directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		if err := signals.Clear(cwd, signals.SignalPause); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Resume requested.")
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the run in this directory",
	Long: `Stop a devteam run started in the current directory.

A headless run stops waiting, writes the code generated so far and exits.
The TUI quits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sendSignal(signals.SignalStop); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Stop requested.")
		return nil
	},
}

func sendSignal(sig signals.Signal) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	return signals.Send(cwd, sig)
}
