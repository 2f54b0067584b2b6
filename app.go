package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"xsmodels/core"
	"xsmodels/db"
	"xsmodels/logging"
	"xsmodels/metrics"
	"xsmodels/native"
	"xsmodels/shutdown"
	"xsmodels/xspec"
)

// app carries what every command shares.
type app struct {
	out    io.Writer
	errOut io.Writer

	envFile   string
	noEnvFile bool
	jsonOut   bool
	verbose   bool

	cfg    *core.Config
	logger *logging.Logger
}

// usageError marks a bad command line.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	a := &app{out: out, errOut: errOut}
	cmd := a.command()
	err := cmd.Run(ctx, args)
	code := exitCode(err)
	if a.logger != nil {
		a.logger.Zap().Debug("exiting", zap.Int("code", code), zap.String("status", core.ExitCodeName(code)))
		a.logger.Sync()
	}
	if err == nil || core.IsSignalExit(code) {
		return code
	}
	color.New(color.FgRed).Fprintf(errOut, "error: %v\n", err)
	if cfgErr, ok := core.IsConfigError(err); ok && cfgErr.Code != "" {
		fmt.Fprintf(errOut, "code: %s\n", cfgErr.Code)
	}
	return code
}

// exitCode maps an error onto the documented exit statuses.
func exitCode(err error) int {
	var ue *usageError
	var se *signalExit
	switch {
	case err == nil:
		return core.ExitCodeSuccess
	case errors.As(err, &se):
		return shutdown.ExitCodeFor(se.sig)
	case errors.As(err, &ue), errors.Is(err, xspec.ErrInvalidShape):
		return core.ExitCodeUsage
	case errors.Is(err, xspec.ErrEnvironment):
		return core.ExitCodeUnavailable
	default:
		if _, ok := core.IsConfigError(err); ok {
			return core.ExitCodeConfig
		}
		return core.ExitCodeError
	}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "xsmodels",
		Usage:     "Evaluate XSPEC models and manage the model library",
		Version:   core.GetVersion(),
		Writer:    a.out,
		ErrWriter: a.errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "env-file",
				Usage:       "load environment variables from this file if it exists",
				Value:       ".env",
				Destination: &a.envFile,
			},
			&cli.BoolFlag{
				Name:        "no-env-file",
				Usage:       "do not load an environment file",
				Destination: &a.noEnvFile,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print results as JSON",
				Destination: &a.jsonOut,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "log at the configured level instead of warnings only",
				Destination: &a.verbose,
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			a.versionCmd(),
			a.modelsCmd(),
			a.infoCmd(),
			a.evalCmd(),
			a.tableCmd(),
			a.settingsCmd(),
			a.elementsCmd(),
			a.historyCmd(),
			a.checkCmd(),
			a.serveCmd(),
		},
	}
}

// before loads .env and the configuration and builds the logger. CLI
// logs go to stderr so that stdout carries only results.
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if !a.noEnvFile && a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return ctx, fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}
	cfg, err := core.LoadConfig()
	if err != nil {
		return ctx, err
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if !a.verbose && level < zapcore.WarnLevel {
		level = zapcore.WarnLevel
	}
	logger, err := logging.NewLogger(logging.Config{
		Development: cfg.DevMode,
		Level:       &level,
		FilePath:    cfg.LogFile,
		Console:     zapcore.AddSync(a.errOut),
	})
	if err != nil {
		return ctx, fmt.Errorf("create logger: %w", err)
	}
	a.logger = logger
	return ctx, nil
}

// runtime is an open model library with its session.
type runtime struct {
	session *xspec.Session
	metrics *metrics.Store
	history *db.Store
	writer  *db.AsyncWriter[db.CallRecord]
	closers []func() error
}

// open starts the model library and applies the configured profile. Every
// recorded call is also handed to sinks.
func (a *app) open(ctx context.Context, sinks ...func(metrics.CallRecord)) (*runtime, error) {
	lib, err := native.Open(native.Config{StatePath: a.cfg.StateDB})
	if err != nil {
		return nil, err
	}
	rt := &runtime{closers: []func() error{lib.Close}}

	storeCfg := metrics.DefaultStoreConfig()
	storeCfg.Version = core.GetVersion()
	storeCfg.Backend = native.Backend

	if a.cfg.RecordCalls {
		if err := rt.openHistory(ctx, a.cfg, a.logger.Zap()); err != nil {
			rt.Close()
			return nil, err
		}
		sinks = append(sinks, func(rec metrics.CallRecord) { rt.writer.Write(historyRecord(rec)) })
	}
	if len(sinks) > 0 {
		storeCfg.Sink = func(rec metrics.CallRecord) {
			for _, sink := range sinks {
				sink(rec)
			}
		}
	}

	storeCfg.Ready = func() bool { return rt.session != nil && rt.session.Guard().Ready() }

	rt.metrics = metrics.NewStore(storeCfg, time.Now())
	rt.session = xspec.NewSession(lib,
		xspec.WithLogger(a.logger.Zap().Named("xspec")),
		xspec.WithDefaultSpectrum(a.cfg.DefaultSpectrum),
		xspec.WithRecorder(rt.metrics),
	)

	profile, err := a.cfg.LoadProfile()
	if err != nil {
		rt.Close()
		return nil, err
	}
	if err := xspec.ApplyProfile(rt.session, profile); err != nil {
		rt.Close()
		return nil, fmt.Errorf("apply profile: %w", err)
	}
	return rt, nil
}

// openHistory opens the call history table and starts its writer and the
// retention pass.
func (rt *runtime) openHistory(ctx context.Context, cfg *core.Config, logger *zap.Logger) error {
	database, err := db.Open(cfg.StateDB)
	if err != nil {
		return fmt.Errorf("open call history: %w", err)
	}
	rt.history = db.NewStore(database)
	rt.writer = db.NewAsyncWriter(db.HistoryWriteHandler(rt.history, func(err error) {
		logger.Warn("failed to persist call", zap.Error(err))
	}))
	rt.writer.Start()

	pruneCtx, cancel := context.WithCancel(ctx)
	pc := db.DefaultPruneSchedulerConfig()
	pc.RetentionDays = cfg.HistoryDays
	pc.OnPrune = func(res db.PruneResult, err error) {
		if err != nil {
			logger.Warn("call history prune failed", zap.Error(err))
			return
		}
		if res.Deleted > 0 {
			logger.Info("pruned call history", zap.Int64("deleted", res.Deleted))
		}
	}
	rt.history.StartPruneScheduler(pruneCtx, pc)

	rt.closers = append(rt.closers,
		database.Close,
		func() error { rt.writer.Stop(); return nil },
		func() error { cancel(); return nil },
	)
	return nil
}

func historyRecord(rec metrics.CallRecord) db.CallRecord {
	return db.CallRecord{
		CallID:       rec.ID,
		Model:        rec.Model,
		Convention:   rec.Convention,
		Bins:         rec.Bins,
		Spectrum:     rec.Spectrum,
		Status:       rec.Status,
		ErrorMessage: rec.ErrorMsg,
		Duration:     rec.Duration,
	}
}

// Close releases everything open, newest first.
func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// withRuntime opens the library for the length of fn.
func (a *app) withRuntime(ctx context.Context, fn func(rt *runtime) error) error {
	rt, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}
