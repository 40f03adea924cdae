package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"todosync/internal/cache"
	"todosync/internal/remote"
	"todosync/internal/sync"
)

// session bundles the collaborators one command invocation needs. The
// syncer is already loaded when newSession returns.
type session struct {
	cfg    *Config
	syncer *sync.Syncer
	store  *cache.Store
	logger *zap.Logger
}

func newSession(ctx context.Context, opts *RootOptions) (*session, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger := newLogger(opts.Verbose)

	store, err := cache.Open(cfg.CachePath, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open cache at "+cfg.CachePath, err)
	}

	client := remote.NewClient(cfg.ServerURL, logger)
	syncer := sync.New(client, store, logger)

	// One probe decides the starting state; the syncer keeps working
	// from the cache when it fails.
	if !cfg.Offline {
		monitor := remote.NewMonitor(cfg.ServerURL, syncer, 0, logger)
		if monitor.Probe(ctx) {
			syncer.SetOnline(true)
		}
	}
	syncer.Load(ctx)

	return &session{cfg: cfg, syncer: syncer, store: store, logger: logger}, nil
}

func (s *session) Close() error {
	_ = s.logger.Sync()
	return s.store.Close()
}

// warnAdvisory prints the syncer's pending-change note to stderr so it
// never mixes with parseable stdout output.
func warnAdvisory(cmd *cobra.Command, s *sync.Syncer) {
	if msg := s.LastError(); msg != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("! "+msg))
	}
}

// newLogger builds the client logger: stderr, warnings only unless
// verbose is set.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
