package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/devteam/internal/signals"
	"github.com/ShayCichocki/devteam/internal/tui"
)

// runInteractive runs a session in the TUI until the user quits or a stop
// signal arrives.
func runInteractive(cmd *cobra.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := newSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := signals.Clear(cwd, signals.SignalStop); err != nil {
		logger.Warn("clear stale stop signal", zap.Error(err))
	}
	watcher, err := signals.NewWatcher(cwd, logger)
	if err != nil {
		return err
	}

	program, _ := tui.NewProgram(ctx, s.coord, tui.Options{
		OutputPath:  cfg.Output.ArtifactName,
		RefreshRate: cfg.TUI.RefreshRate,
		Usage:       s.backend.Tracker(),
	})
	go tui.ForwardEvents(program, s.coord.Events())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(gctx, func(c signals.Change) {
			switch c.Signal {
			case signals.SignalPause:
				s.coord.SetPaused(c.Active)
			case signals.SignalStop:
				if c.Active {
					program.Quit()
				}
			}
		})
	})
	g.Go(func() error {
		// The watcher stops once the program exits.
		defer cancel()
		_, err := program.Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("interactive session ended", zap.Error(err))
	return err
}
