package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/battcal/battcal/pkg/config"
	"github.com/battcal/battcal/pkg/daemon"
	"github.com/battcal/battcal/pkg/daemonize"
	"github.com/battcal/battcal/pkg/version"
)

// NewDaemonCommand runs the battery level loop in the foreground. It is also
// what "run" re-executes while detaching.
func NewDaemonCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "daemon",
		Hidden:  true,
		Short:   "Run the battery level loop in the foreground",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, _ []string) error {
			done, err := daemonize.Continue(os.Args[1:])
			if done {
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
				return nil
			}

			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			if daemonize.Current() != daemonize.StageNone {
				logToFile(conf)
			}

			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
				"pid":     os.Getpid(),
			}).Info("battcal daemon starting")

			return daemon.Run(conf)
		},
	}
}
