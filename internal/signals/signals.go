// Package signals lets other processes pause, resume or stop a running
// devteam session by creating and removing files under .devteam/signals.
package signals

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Signal names a control file.
type Signal string

const (
	// SignalPause pauses development while the file exists.
	SignalPause Signal = "pause"
	// SignalStop ends the running session when created.
	SignalStop Signal = "stop"
)

// Change reports that a signal file appeared or disappeared.
type Change struct {
	Signal Signal
	Active bool
}

// Dir returns the signals directory for a project root.
func Dir(root string) string {
	return filepath.Join(root, ".devteam", "signals")
}

func path(root string, sig Signal) string {
	return filepath.Join(Dir(root), string(sig))
}

// Send creates the signal file.
func Send(root string, sig Signal) error {
	if err := os.MkdirAll(Dir(root), 0755); err != nil {
		return fmt.Errorf("create signals directory: %w", err)
	}
	return os.WriteFile(path(root, sig), []byte(time.Now().Format(time.RFC3339)), 0644)
}

// Clear removes the signal file. A missing file is not an error.
func Clear(root string, sig Signal) error {
	if err := os.Remove(path(root, sig)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Active reports whether the signal file exists.
func Active(root string, sig Signal) bool {
	_, err := os.Stat(path(root, sig))
	return err == nil
}

// Watcher watches the signals directory of a project.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

// NewWatcher creates the signals directory if needed and starts watching it.
func NewWatcher(root string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := Dir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create signals directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{root: root, watcher: watcher, logger: logger}, nil
}

// Run reports signal changes to fn until ctx is done, then closes the watcher.
// Signals already present when Run starts are reported first.
func (w *Watcher) Run(ctx context.Context, fn func(Change)) error {
	defer w.watcher.Close()

	state := map[Signal]bool{}
	report := func(sig Signal, active bool) {
		if state[sig] == active {
			return
		}
		state[sig] = active
		w.logger.Info("signal changed", zap.String("signal", string(sig)), zap.Bool("active", active))
		fn(Change{Signal: sig, Active: active})
	}

	for _, sig := range []Signal{SignalPause, SignalStop} {
		if Active(w.root, sig) {
			report(sig, true)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			sig := Signal(filepath.Base(event.Name))
			if sig != SignalPause && sig != SignalStop {
				continue
			}
			switch {
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				report(sig, true)
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				report(sig, false)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("signal watcher error", zap.Error(err))
		}
	}
}
