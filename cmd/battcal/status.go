package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/distatus/battery"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/battcal/battcal/pkg/calibration"
	"github.com/battcal/battcal/pkg/client"
	"github.com/battcal/battcal/pkg/config"
	"github.com/battcal/battcal/pkg/version"
)

type statusData struct {
	status      *calibration.Status
	batteryInfo *battery.Battery
	config      *config.RawFileConfig
}

// socketPath picks the status socket from the flag, falling back to the
// config file.
func socketPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	conf, err := config.NewFile(configPath)
	if err != nil {
		return "", err
	}
	if conf.StatusSocket() == "" {
		return "", fmt.Errorf("status API is disabled, set status_socket in %s", configPath)
	}
	return conf.StatusSocket(), nil
}

func fetchStatusData(apiClient *client.Client) (*statusData, error) {
	st, err := apiClient.GetStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to get calibration status: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	// Not every kernel exposes what the battery library needs.
	bat, err := apiClient.GetBatteryInfo()
	if err != nil {
		logrus.WithError(err).Debug("battery info unavailable")
		bat = nil
	}

	return &statusData{
		status:      st,
		batteryInfo: bat,
		config:      conf,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	var socket string

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of the battery level monitor",
		Long:    `Get calibration state, battery info, and configuration from a running daemon.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := socketPath(socket)
			if err != nil {
				return err
			}

			apiClient := client.NewClient(path)
			data, err := fetchStatusData(apiClient)
			if err != nil {
				return err
			}

			if daemonVersion, err := apiClient.GetVersion(); err == nil {
				warnVersionMismatch(daemonVersion)
			} else if errors.Is(err, client.ErrNotFound) {
				logrus.Error("battcal daemon is too old to report its version. Restart it with this binary.")
			}

			conf := config.NewFileFromConfig(data.config, "")
			st := data.status

			cmd.Println(bold("Calibration:"))
			cmd.Printf("  Learned full capacity: %s\n", bold("%d mAh", st.State.MaxChargeCapacityMah))
			cmd.Println("  Holding full charge: " + bool2Text(st.State.IsInFullState))
			cmd.Printf("  Discharge streak: %s\n", bold("%d/%d", st.State.DischargeStreak, conf.DischargeRepeatThreshold()))
			cmd.Printf("  Last action: %s\n", bold("%s", st.LastAction))
			if st.LastLevel > 0 {
				cmd.Printf("  Last level set: %s\n", bold("%d%%", st.LastLevel))
			}
			cmd.Printf("  Cycles: %d since %s\n", st.Cycles, st.StartedAt.Format(time.DateTime))
			cmd.Println()

			r := st.LastReading
			cmd.Println(bold("Battery status:"))
			cmd.Printf("  Status: %s\n", bold("%s", orUnknown(r.Status)))
			cmd.Printf("  Reported level: %s\n", bold("%d%%", r.Capacity))
			cmd.Printf("  Charge: %s\n", bold("%d mAh", r.ChargeMah))
			cmd.Printf("  Health: %s\n", bold("%s", orUnknown(r.Health)))
			if r.VoltageUv > 0 {
				cmd.Printf("  Voltage: %s\n", bold("%.3f V", float64(r.VoltageUv)/1e6))
			}
			if st.State.MaxChargeCapacityMah > 0 {
				cmd.Printf("  Real level: %s\n", bold("%d%%", calibration.SyntheticLevel(r.ChargeMah, st.State.MaxChargeCapacityMah)))
			}
			cmd.Println("  Screen on: " + bool2Text(r.Brightness > 0))
			if bat := data.batteryInfo; bat != nil {
				cmd.Printf("  State: %s\n", bold("%s", bat.State))
				if bat.ChargeRate != 0 {
					cmd.Printf("  Rate: %s\n", bold("%.1f mW", bat.ChargeRate))
				}
			}
			cmd.Println()

			cmd.Println(bold("Config:"))
			cmd.Println("  Monitor enabled: " + bool2Text(conf.EnableMonitor()))
			cmd.Println("  Disable temperature compensation: " + bool2Text(conf.EnableTempComp()))
			cmd.Printf("  Poll interval: %s\n", bold("%s", conf.PollInterval()))
			if n := conf.ResetStatsAfterBoots(); n > 0 {
				cmd.Printf("  Reset battery statistics every: %s\n", bold("%d boots", n))
			} else {
				cmd.Println("  Reset battery statistics: " + bool2Text(false))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&socket, "status-socket", "", "status API unix socket (defaults to status_socket from the config)")

	return cmd
}

// warnVersionMismatch reports whether the daemon runs a different build than
// this binary, logging a warning if so.
func warnVersionMismatch(daemonVersion string) bool {
	if daemonVersion == version.Version {
		return false
	}
	logrus.WithFields(logrus.Fields{
		"clientVersion": version.Version,
		"daemonVersion": daemonVersion,
	}).Warn("Version mismatch between client and daemon. Reboot or run \"battcal run\" again so both use the same binary.")
	return true
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
