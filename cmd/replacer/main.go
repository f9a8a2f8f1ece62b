// Command replacer applies conditional element replacement to numeric
// sequences, either given on the command line or kept in a local store.
//
// Usage:
//
//	replacer [command] [flags]
//
// Examples:
//
//	# Replace every 1 with 4
//	replacer replace --old 1 --new 4 1 2 1 3 2
//
//	# Zero everything below 5, choosing positions from a stencil
//	replacer replace-if --op lt --than 5 --new 0 --stencil 5,4,6,3,7 1 3 4 6 5
//
//	# Work on a stored sequence
//	replacer put scores 1 3 4 6 5
//	replacer replace-copy-if --name scores --into low --op lt --than 5 --new 0
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orneryd/replacer/pkg/cache"
	"github.com/orneryd/replacer/pkg/config"
	"github.com/orneryd/replacer/pkg/gpu"
	"github.com/orneryd/replacer/pkg/logging"
	"github.com/orneryd/replacer/pkg/storage"
	"github.com/orneryd/replacer/pkg/system"
)

// app holds flag values and everything built from them for one invocation.
type app struct {
	configPath string
	backend    string
	workers    int
	dataDir    string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	sys    system.System
	accel  *gpu.Accelerator
	store  storage.Engine
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.teardown()
	if err != nil {
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree around a. Callers must run
// a.teardown after Execute, which cobra skips post-run hooks for on error.
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "replacer",
		Short: "Conditional element replacement on host, parallel and GPU backends",
		Long: `replacer rewrites numeric sequences element by element.

Every position is decided independently: an element is replaced when it
equals a value (replace, replace-copy) or when a predicate holds for it or
for the matching element of a stencil (replace-if, replace-copy-if).

Sequences are read from arguments or from a local store (put, get, list,
delete). The execution backend comes from the config file, REPLACER_BACKEND
or --backend.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "replacer.yaml", "Config file")
	rootCmd.PersistentFlags().StringVarP(&a.backend, "backend", "b", "", "Execution backend: host, parallel, gpu")
	rootCmd.PersistentFlags().IntVarP(&a.workers, "workers", "w", 0, "Worker limit for parallel backends (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().StringVarP(&a.dataDir, "data", "d", "", "Sequence store directory")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(newReplaceCmd(a))
	rootCmd.AddCommand(newReplaceCopyCmd(a))
	rootCmd.AddCommand(newReplaceIfCmd(a))
	rootCmd.AddCommand(newReplaceCopyIfCmd(a))
	rootCmd.AddCommand(newPutCmd(a))
	rootCmd.AddCommand(newGetCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newDeleteCmd(a))
	rootCmd.AddCommand(newInfoCmd(a))

	return rootCmd
}

// setup loads configuration, applies flag overrides and builds the logger
// and execution system.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Execution.Backend = a.backend
	}
	if flags.Changed("workers") {
		cfg.Execution.Workers = a.workers
	}
	if flags.Changed("data") {
		cfg.Storage.DataDir = a.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(logging.Verbose(cfg.Logging, a.verbose))
	if err != nil {
		return err
	}
	a.logger = logger

	sys, accel, err := newSystem(cfg, logger)
	if err != nil {
		return err
	}
	a.sys, a.accel = sys, accel

	logger.Debug("replacer configured",
		zap.String("backend", cfg.Execution.Backend),
		zap.String("system", sys.Name()),
		zap.Int("workers", cfg.Execution.Workers))
	return nil
}

// teardown releases everything setup and openStore acquired. It is safe to
// call more than once.
func (a *app) teardown() {
	if a.store != nil {
		if err := a.store.Close(); err != nil && a.logger != nil {
			a.logger.Warn("closing store", zap.Error(err))
		}
		a.store = nil
	}
	if a.accel != nil {
		a.accel.Release()
		a.accel = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// openStore opens the sequence store on first use.
func (a *app) openStore() (storage.Engine, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := storage.Open(storage.BadgerOptions{
		DataDir:  a.cfg.Storage.DataDir,
		InMemory: a.cfg.Storage.InMemory,
		Logger:   a.logger,
	})
	if err != nil {
		return nil, err
	}
	if size := a.cfg.Storage.CacheSize; size > 0 {
		store = storage.NewCachedEngine(store, cache.New[*storage.Sequence](size, a.cfg.GetCacheTTL()))
	}
	a.store = store
	return store, nil
}

// newSystem builds the execution system named by cfg. The accelerator is
// returned separately for the gpu backend so callers can place data on it.
func newSystem(cfg *config.Config, logger *zap.Logger) (system.System, *gpu.Accelerator, error) {
	switch strings.ToLower(cfg.Execution.Backend) {
	case config.BackendHost:
		return system.Host{}, nil, nil
	case config.BackendGPU:
		gc, err := cfg.AcceleratorConfig()
		if err != nil {
			return nil, nil, err
		}
		gc.Logger = logger
		accel, err := gpu.NewAccelerator(gc)
		if err != nil {
			return nil, nil, err
		}
		return accel, accel, nil
	case config.BackendParallel:
		return system.NewParallel(
			system.WithWorkers(cfg.Execution.Workers),
			system.WithGrainSize(cfg.Execution.GrainSize),
			system.WithLogger(logger),
		), nil, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown execution backend %q", config.ErrInvalidConfig, cfg.Execution.Backend)
}
