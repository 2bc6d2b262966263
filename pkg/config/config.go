package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Config is a read-only configuration snapshot taken once at startup.
type Config interface {
	// EnableMonitor reports whether the daemon should detach and run the
	// battery level loop after the startup sequence.
	EnableMonitor() bool
	// EnableTempComp reports whether temperature compensation should be
	// disabled at startup.
	EnableTempComp() bool
	PollInterval() time.Duration
	// DischargeRepeatThreshold is the number of discharging cycles between
	// two level updates.
	DischargeRepeatThreshold() int

	LogFile() string
	RebootCounterFile() string
	MaxChargeCounterFile() string
	// StatusSocket is the unix socket of the status API, empty when disabled.
	StatusSocket() string

	// ResetStatsAfterBoots is the reboot count that triggers a battery
	// statistics reset, 0 when disabled.
	ResetStatsAfterBoots() int
	StatsServiceWait() time.Duration
	PowerServicePackage() string

	LogrusFields() logrus.Fields
}
