package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	daemonutils "github.com/battcal/battcal/pkg/utils/daemon"
)

var gInstallation = "Installation:"

func init() {
	commandGroups = append(commandGroups, gInstallation)
}

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	serviceDir := daemonutils.DefaultServiceDir

	cmd := &cobra.Command{
		Use:     "install",
		Short:   "Run battcal on every boot",
		GroupID: gInstallation,
		Long: `Install a Magisk boot script that runs "battcal run" once boot has completed.

The script points at the current binary and config file, so do not move either
afterwards. You must run this command as root.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			absConfig, err := filepath.Abs(configPath)
			if err != nil {
				return err
			}

			if err := daemonutils.Install(serviceDir, absConfig); err != nil {
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to install boot script: %v", err)
			}

			logrus.Infof("installation succeeded")
			cmd.Printf("battcal will start on next boot from %s\n", daemonutils.ScriptPath(serviceDir))

			return nil
		},
	}

	cmd.Flags().StringVar(&serviceDir, "service-dir", serviceDir, "boot script directory")

	return cmd
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	serviceDir := daemonutils.DefaultServiceDir

	cmd := &cobra.Command{
		Use:     "uninstall",
		Short:   "Stop running battcal on boot",
		GroupID: gInstallation,
		Long: `Remove the boot script installed by "battcal install".

A running daemon keeps running until the next reboot. You must run this command as root.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := daemonutils.Uninstall(serviceDir); err != nil {
				return fmt.Errorf("failed to uninstall boot script: %v", err)
			}

			cmd.Printf("successfully uninstalled. Your config is kept in %s.\n", configPath)

			return nil
		},
	}

	cmd.Flags().StringVar(&serviceDir, "service-dir", serviceDir, "boot script directory")

	return cmd
}
