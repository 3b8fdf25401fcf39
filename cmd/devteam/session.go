package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ShayCichocki/devteam/internal/api"
	"github.com/ShayCichocki/devteam/internal/config"
	"github.com/ShayCichocki/devteam/internal/orchestrator"
	"github.com/ShayCichocki/devteam/internal/state"
)

// session bundles a coordinator with the resources it was built from.
type session struct {
	coord    *orchestrator.Coordinator
	backend  api.Backend
	db       *state.DB
	recorder *state.Recorder
}

// newSession builds a coordinator from the loaded config. When record is set
// and history is enabled, the run is journaled to the history database.
func newSession(ctx context.Context, record bool) (*session, error) {
	f, backend, err := createFlows(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &session{backend: backend}
	opts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithBaseContext(ctx),
		orchestrator.WithArtifactName(cfg.Output.ArtifactName),
	}

	if record {
		db, err := openHistory(cfg)
		if err != nil {
			// History is optional; the run continues without it.
			logger.Warn("run history unavailable", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Warning: run history unavailable: %v\n", err)
		} else if db != nil {
			s.db = db
			s.recorder = state.NewRecorder(db, fmt.Sprintf("%s/%s", cfg.Provider, backend.Model()))
			opts = append(opts, orchestrator.WithJournal(s.recorder))
		}
	}

	s.coord = orchestrator.New(f, opts...)
	return s, nil
}

// Close stops the coordinator and finishes the history record.
func (s *session) Close() {
	s.coord.Close()
	if s.recorder != nil {
		if err := s.recorder.Close(); err != nil {
			logger.Warn("close history session", zap.Error(err))
		}
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}

// historyPath returns the configured history database path.
func historyPath(c *config.Config) string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return state.GlobalDBPath()
}

// openHistory opens and migrates the history database and marks sessions
// left behind by dead processes as abandoned. It returns nil when history is
// disabled.
func openHistory(c *config.Config) (*state.DB, error) {
	if !c.History.Enabled {
		return nil, nil
	}
	return openHistoryDB(c)
}

// openHistoryDB opens the history database whether or not recording is enabled.
func openHistoryDB(c *config.Config) (*state.DB, error) {
	db, err := state.OpenWithDriver(c.History.Driver, historyPath(c))
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history database: %w", err)
	}

	abandoned, err := state.NewRecoveryManager(db).AbandonInterrupted()
	if err != nil {
		logger.Warn("recover interrupted sessions", zap.Error(err))
	} else if abandoned > 0 {
		logger.Info("marked interrupted sessions abandoned", zap.Int("count", abandoned))
	}
	return db, nil
}

