package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battcal/battcal/pkg/config"
	"github.com/battcal/battcal/pkg/shell"
	"github.com/battcal/battcal/pkg/telemetry"
)

// Run bootstraps the calibration state and runs the battery level loop
// until SIGINT or SIGTERM.
func Run(conf config.Config) error {
	engine := NewEngine(conf, telemetry.NewSysfs(), shell.NewRetrying(&shell.Shell{}))
	return run(conf, engine)
}

func run(conf config.Config, engine *Engine) error {
	engine.Bootstrap()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *http.Server
	if socketPath := conf.StatusSocket(); socketPath != "" {
		var err error
		srv, err = serveStatus(engine, conf, socketPath)
		if err != nil {
			// The loop matters more than the status API.
			logrus.WithError(err).Error("failed to start status server")
		}
	}

	logrus.WithFields(logrus.Fields{
		"pollInterval":             conf.PollInterval().String(),
		"dischargeRepeatThreshold": conf.DischargeRepeatThreshold(),
	}).Info("battery level loop starts")

	engine.Run(ctx)

	logrus.Info("caught signal, shutting down")

	if srv != nil {
		logrus.Info("shutting down status server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("failed to shutdown status server: %v", err)
		}
		cancel()
	}

	logrus.Info("exiting")
	return nil
}

func serveStatus(engine *Engine, conf config.Config, socketPath string) (*http.Server, error) {
	// A socket left behind by a previous instance blocks Listen.
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, pkgerrors.Wrapf(err, "failed to remove stale socket %s", socketPath)
	}

	l, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to listen on %s", socketPath)
	}

	// The daemon runs with umask 0, keep the socket root-only.
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = l.Close()
		return nil, pkgerrors.Wrapf(err, "failed to chmod %s", socketPath)
	}

	srv := &http.Server{
		Handler:           setupRoutes(engine, conf),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logrus.Infof("status server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("status server stopped: %v", err)
		}
	}()

	return srv, nil
}
