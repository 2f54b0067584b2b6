package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"xsmodels/api"
	"xsmodels/core"
	"xsmodels/logging"
	"xsmodels/shutdown"
)

// EnvShutdownTimeout bounds the graceful stop of serve.
const EnvShutdownTimeout = "XSMODELS_SHUTDOWN_TIMEOUT"

func (a *app) serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the model library over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address (default from XSMODELS_ADDR)"},
			&cli.DurationFlag{Name: "read-timeout", Usage: "read header timeout", Value: 30 * time.Second},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			addr := a.cfg.Addr
			if v := cmd.String("addr"); v != "" {
				addr = v
			}
			// The server logs to stdout at the configured level: element
			// lookups capture stderr while they run.
			logger, err := logging.NewLogger(logging.Config{
				Development: a.cfg.DevMode,
				Level:       &a.cfg.LogLevel,
				FilePath:    a.cfg.LogFile,
				Console:     zapcore.Lock(zapcore.AddSync(a.out)),
			})
			if err != nil {
				return err
			}
			a.logger = logger

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			return a.serve(ctx, ln, cmd.Duration("read-timeout"))
		},
	}
}

// serve runs the API on ln until ctx is cancelled or a stop signal
// arrives.
func (a *app) serve(ctx context.Context, ln net.Listener, readTimeout time.Duration) error {
	log := a.logger.Zap()
	feed := api.NewFeed(api.DefaultFeedConfig(), log.Named("feed"))
	rt, err := a.open(ctx, feed.Publish)
	if err != nil {
		ln.Close()
		return err
	}

	mgr := shutdown.NewManager(log.Named("shutdown"),
		shutdown.WithTimeout(core.ParseDurationEnv(EnvShutdownTimeout, 30*time.Second)))
	mgr.Start()

	srv := api.NewServer(api.Config{
		Session:  rt.session,
		Metrics:  rt.metrics,
		Logger:   log.Named("api"),
		Tracker:  mgr,
		Feed:     feed,
		TableDir: a.cfg.TableDir,
	})
	httpServer := &http.Server{
		Handler:           srv.NewEcho(),
		ReadHeaderTimeout: readTimeout,
	}

	// Hijacked feed connections are not closed by http.Server.Shutdown.
	mgr.Register("feed", 0, shutdown.Close(feed))
	mgr.Register("http", 0, shutdown.StopServer(httpServer))
	mgr.Register("library", 20, func(context.Context) error { return rt.Close() })
	mgr.Register("logger", 30, shutdown.Func(func() error {
		a.logger.Sync()
		return nil
	}))

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving", zap.String("addr", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case <-mgr.Context().Done():
	case serveErr = <-errCh:
	}
	if err := mgr.Shutdown(); err != nil && serveErr == nil {
		serveErr = err
	}
	if sig := mgr.Signal(); sig != nil && serveErr == nil {
		return &signalExit{sig: sig}
	}
	return serveErr
}

// signalExit reports a clean stop caused by a signal, so the process can
// exit with 128+signo.
type signalExit struct{ sig os.Signal }

func (e *signalExit) Error() string { return "stopped by " + e.sig.String() }
