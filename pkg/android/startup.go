package android

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/battcal/battcal/pkg/config"
	"github.com/battcal/battcal/pkg/counter"
	"github.com/battcal/battcal/pkg/shell"
)

// Startup runs the one-shot commands issued before the daemon detaches.
type Startup struct {
	Gateway shell.Gateway
	Conf    config.Config
	// Sleep is used for the statistics service wait, time.Sleep when nil.
	Sleep func(time.Duration)
}

// Run applies the property toggles, bumps the reboot counter and resets
// the battery statistics when enough reboots have accumulated.
func (s *Startup) Run() {
	s.DisableCompensation()
	count := s.BumpRebootCounter()
	s.ResetStatisticsIfDue(count)
}

// DisableCompensation turns off the vendor's temperature and voltage
// compensation and resets the aging factor.
func (s *Startup) DisableCompensation() {
	if s.Conf.EnableTempComp() {
		s.Gateway.Apply("disable temperature compensation", CmdDisableTempComp)
	} else {
		logrus.Info("temperature compensation toggle not enabled, skipping")
	}
	s.Gateway.Apply("disable voltage compensation", CmdDisableVoltageComp)
	s.Gateway.Apply("reset aging factor to 100", CmdResetAgeFactor)
}

// BumpRebootCounter increments the persisted reboot counter and returns
// the new value.
func (s *Startup) BumpRebootCounter() int {
	path := s.Conf.RebootCounterFile()
	count, err := counter.Increment(path)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Warn("failed to persist reboot counter")
	}
	logrus.WithField("rebootCount", count).Info("reboot counter updated")
	return count
}

// ResetStatisticsIfDue resets the platform battery statistics once count
// reaches the configured number of boots, then restarts the count.
func (s *Startup) ResetStatisticsIfDue(count int) bool {
	every := s.Conf.ResetStatsAfterBoots()
	if every <= 0 || count < every {
		return false
	}

	log := logrus.WithFields(logrus.Fields{
		"rebootCount": count,
		"threshold":   every,
	})

	wait := s.Conf.StatsServiceWait()
	log.WithField("wait", wait.String()).Info("waiting for battery statistics service before reset")
	s.sleep(wait)

	pkg := s.Conf.PowerServicePackage()
	if pkg != "" {
		s.Gateway.Apply("disable power service", DisablePackage(pkg))
	}
	s.Gateway.Apply("delete battery statistics file", RemoveFile(StatsFile))
	s.Gateway.Apply("reset battery statistics", CmdStatsReset)
	if pkg != "" {
		s.Gateway.Apply("enable power service", EnablePackage(pkg))
	}
	s.Gateway.Apply("broadcast battery changed", Broadcast(BatteryChangedIntent))

	if err := counter.WriteAtomic(s.Conf.RebootCounterFile(), 0); err != nil {
		log.WithError(err).Warn("failed to reset reboot counter")
	}
	log.Info("battery statistics reset")

	return true
}

func (s *Startup) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if s.Sleep == nil {
		time.Sleep(d)
		return
	}
	s.Sleep(d)
}
