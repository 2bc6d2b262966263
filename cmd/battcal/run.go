package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/battcal/battcal/pkg/android"
	"github.com/battcal/battcal/pkg/config"
	"github.com/battcal/battcal/pkg/daemonize"
	"github.com/battcal/battcal/pkg/shell"
	"github.com/battcal/battcal/pkg/version"
)

func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "run",
		Short:   "Apply boot-time settings and start the monitor in the background",
		GroupID: gBasic,
		Long: `Apply boot-time settings and start the monitor in the background.

Disables the platform's charge compensation, counts the boot, resets battery
statistics every few boots, then detaches the battery level monitor unless
ENABLE_MONITOR is false. Must run as root.`,
		Run: func(_ *cobra.Command, _ []string) {
			if os.Geteuid() != 0 {
				fmt.Fprintln(os.Stderr, "Error: battcal must run as root")
				os.Exit(1)
			}

			conf, err := config.NewFile(configPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			logToFile(conf)
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("battcal starting")
			logrus.WithFields(conf.LogrusFields()).Info("config loaded")

			startup := &android.Startup{
				Gateway: shell.NewRetrying(&shell.Shell{}),
				Conf:    conf,
			}
			startup.Run()

			if !conf.EnableMonitor() {
				logrus.Info("battery level monitor disabled, exiting")
				return
			}

			args, err := daemonArgs(configPath, logLevel)
			if err != nil {
				logrus.WithError(err).Error("failed to resolve config path")
				os.Exit(1)
			}
			if err := daemonize.Detach(args); err != nil {
				logrus.WithError(err).Error("failed to start battery level monitor")
				os.Exit(1)
			}
			logrus.Info("battery level monitor started in the background")
		},
	}
}

// daemonArgs builds the arguments for the detached daemon. The daemon runs
// from /, so the config path must be absolute.
func daemonArgs(configPath, logLevel string) ([]string, error) {
	absConfig, err := filepath.Abs(configPath)
	if err != nil {
		return nil, err
	}
	return []string{"daemon", "--config", absConfig, "--log-level", logLevel}, nil
}
