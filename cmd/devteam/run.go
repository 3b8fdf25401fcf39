package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/devteam/internal/orchestrator"
	"github.com/ShayCichocki/devteam/internal/signals"
	"github.com/ShayCichocki/devteam/pkg/models"
)

var (
	runYes   bool
	runOut   string
	runQuiet bool
)

var runCmd = &cobra.Command{
	Use:   "run <idea>",
	Short: "Plan and develop a project without the TUI",
	Long: `Run a whole session in the terminal.

The planner breaks the idea into tasks, which you review with an interactive
form (or approve all at once with --yes). Development then works through the
approved tasks in order while the team chat streams to stdout. When the run
ends, the combined code is written to --out.

Runs can be controlled from another terminal in the same directory:
  devteam pause    stop scheduling new calls
  devteam resume   continue
  devteam stop     end the run after the calls in flight

Exit status is 2 when some tasks were not completed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHeadless,
}

func init() {
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "Approve every planned task without review")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "Where to write the combined code (default: output.artifact_name)")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Only print notices, not the team chat")
}

// incompleteError reports a run that ended with tasks left to do.
type incompleteError struct {
	remaining int
	total     int
}

func (e *incompleteError) Error() string {
	return fmt.Sprintf("%d of %d tasks not completed", e.remaining, e.total)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	idea := strings.Join(args, " ")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	s, err := newSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	printer := newEventPrinter(out, true)
	var printed sync.WaitGroup
	printed.Add(1)
	go func() {
		defer printed.Done()
		if runQuiet {
			for ev := range s.coord.Events() {
				if ev.Type == orchestrator.EventNotice {
					printer.Print(ev)
				}
			}
			return
		}
		printer.Consume(s.coord.Events())
	}()
	defer func() {
		s.coord.Close()
		printed.Wait()
	}()

	logger.Info("headless run started", zap.String("idea", idea))
	if err := s.coord.SubmitPlan(ctx, idea); err != nil {
		return err
	}

	snap := s.coord.Snapshot()
	if len(snap.Tasks) == 0 {
		return errors.New("the planner returned no tasks")
	}

	if runYes {
		s.coord.ApproveAll()
	} else {
		// Flush the chat before the form takes over the terminal.
		fmt.Fprintln(out)
		printTasks(out, snap.Tasks)
		decisions, err := promptReview(snap.Tasks)
		if err != nil {
			return err
		}
		if _, err := applyReview(s.coord, decisions); err != nil {
			return err
		}
	}

	if err := develop(ctx, cwd, s.coord); err != nil {
		return err
	}

	if err := writeArtifact(out, s.coord); err != nil {
		return err
	}

	final := s.coord.Snapshot()
	s.coord.Close()
	printed.Wait()

	printUsage(out, s)

	remaining := 0
	for _, t := range final.Tasks {
		if t.Status != models.TaskStatusComplete {
			remaining++
		}
	}
	if remaining > 0 {
		return &incompleteError{remaining: remaining, total: len(final.Tasks)}
	}
	return nil
}

// develop starts development and blocks until the coordinator is idle, a stop
// signal arrives or ctx is cancelled. Pause and resume signals gate the
// coordinator while it waits.
func develop(ctx context.Context, root string, coord *orchestrator.Coordinator) error {
	if err := signals.Clear(root, signals.SignalStop); err != nil {
		logger.Warn("clear stale stop signal", zap.Error(err))
	}

	watcher, err := signals.NewWatcher(root, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(gctx, func(c signals.Change) {
			switch c.Signal {
			case signals.SignalPause:
				coord.SetPaused(c.Active)
			case signals.SignalStop:
				if c.Active {
					logger.Info("stop signal received")
					coord.SetPaused(true)
					cancel()
				}
			}
		})
	})
	g.Go(func() error {
		defer cancel()
		coord.StartDevelopment()
		err := coord.WaitIdle(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

// writeArtifact saves the combined code, if any.
func writeArtifact(out io.Writer, coord *orchestrator.Coordinator) error {
	artifact, err := coord.DownloadArtifact()
	if errors.Is(err, orchestrator.ErrEmptyArtifact) {
		fmt.Fprintln(out, "No code was generated.")
		return nil
	}
	if err != nil {
		return err
	}

	path, err := artifact.WriteFile(runOut)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s (blake3 %s)\n", color.GreenString("Saved"), path, shortDigest(artifact.Digest))
	return nil
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

func printUsage(out io.Writer, s *session) {
	in, outTokens := s.backend.Tracker().Total()
	fmt.Fprintf(out, "%s %d calls, %d input tokens, %d output tokens (%s)\n",
		color.HiBlackString("Usage:"), s.backend.Tracker().Calls(), in, outTokens, s.backend.Model())
}
