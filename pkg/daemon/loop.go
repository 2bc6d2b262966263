package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/battcal/battcal/pkg/android"
	"github.com/battcal/battcal/pkg/calibration"
	"github.com/battcal/battcal/pkg/config"
	"github.com/battcal/battcal/pkg/counter"
	"github.com/battcal/battcal/pkg/shell"
	"github.com/battcal/battcal/pkg/telemetry"
)

// minCycleWait is the shortest pause between two cycles.
const minCycleWait = time.Second

// Engine is the battery level state machine. Cycle and Run must be called
// from a single goroutine; Status is safe to call from anywhere.
type Engine struct {
	conf    config.Config
	source  telemetry.Source
	gateway shell.Gateway

	state calibration.State

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu     sync.RWMutex
	status calibration.Status

	lastLogged loopStatus
}

// NewEngine returns an Engine with an empty calibration state. Call
// Bootstrap before the first cycle.
func NewEngine(conf config.Config, source telemetry.Source, gateway shell.Gateway) *Engine {
	e := &Engine{
		conf:    conf,
		source:  source,
		gateway: gateway,
		now:     time.Now,
		after:   time.After,
	}
	e.status.StartedAt = e.now()
	e.status.LastAction = calibration.ActionNoop
	return e
}

// Bootstrap loads the persisted capacity baseline. On first run, when no
// baseline exists, the design capacity is used and persisted right away.
func (e *Engine) Bootstrap() {
	path := e.conf.MaxChargeCounterFile()
	log := logrus.WithField("path", path)

	if raw := counter.ReadOrDefault(path); raw > 0 {
		e.state.SetBaseline(raw)
		log.WithFields(logrus.Fields{
			"maxChargeCapacityRaw": e.state.MaxChargeCapacityRaw,
			"maxChargeCapacityMah": e.state.MaxChargeCapacityMah,
		}).Info("loaded capacity baseline")
		e.publish(calibration.Reading{}, calibration.ActionNoop, 0, false)
		return
	}

	design, err := e.source.DesignCapacity()
	if err != nil {
		log.WithError(err).Error("failed to read design capacity, no capacity baseline")
		return
	}

	e.state.SetBaseline(design)
	e.persistBaseline()
	log.WithFields(logrus.Fields{
		"maxChargeCapacityRaw": e.state.MaxChargeCapacityRaw,
		"maxChargeCapacityMah": e.state.MaxChargeCapacityMah,
	}).Info("no capacity baseline found, seeded from design capacity")
	e.publish(calibration.Reading{}, calibration.ActionNoop, 0, false)
}

// Run cycles until ctx is cancelled. Cancellation is only observed between
// cycles.
func (e *Engine) Run(ctx context.Context) {
	interval := e.conf.PollInterval()
	for {
		start := e.now()
		e.Cycle()

		select {
		case <-ctx.Done():
			return
		case <-e.after(nextWait(interval, e.now().Sub(start))):
		}
	}
}

// nextWait keeps cycles on a fixed cadence so slow commands do not stretch
// the interval.
func nextWait(interval, elapsed time.Duration) time.Duration {
	wait := interval - elapsed
	if wait < minCycleWait {
		return minCycleWait
	}
	return wait
}

// Cycle runs a single poll cycle: read telemetry, update the state, issue
// the resulting command. It returns the action that was taken.
func (e *Engine) Cycle() calibration.Action {
	r := e.read()

	if e.state.TrackFull(r.Status, r.Capacity, r.ChargeRaw) {
		e.persistBaseline()
		logrus.WithFields(logrus.Fields{
			"maxChargeCapacityRaw": e.state.MaxChargeCapacityRaw,
			"maxChargeCapacityMah": e.state.MaxChargeCapacityMah,
			"status":               r.Status,
		}).Info("battery full, capacity baseline updated")
	}

	// Unknown brightness (-1) counts as screen off.
	screenOn := r.Brightness > 0
	action := e.state.Advance(r.Status, screenOn, e.conf.DischargeRepeatThreshold())

	level := 0
	applied := false
	switch action {
	case calibration.ActionReset:
		logrus.WithFields(logrus.Fields{
			"from": e.state.PreviousStatus,
			"to":   r.Status,
		}).Info("charger connected, resetting battery level")
		applied = e.gateway.Apply("reset battery level", android.CmdBatteryReset)
	case calibration.ActionSetLevel:
		level = calibration.SyntheticLevel(r.ChargeMah, e.state.MaxChargeCapacityMah)
		logrus.WithFields(logrus.Fields{
			"from":            e.state.PreviousStatus,
			"to":              r.Status,
			"level":           level,
			"chargeMah":       r.ChargeMah,
			"maxChargeMah":    e.state.MaxChargeCapacityMah,
			"dischargeStreak": e.state.DischargeStreak,
		}).Info("updating battery level")
		applied = e.gateway.Apply("set battery level", android.SetLevel(level))
	}

	e.state.Commit(r.Status)
	e.publish(r, action, level, applied)
	e.logCycle(r, action)

	return action
}

// read collects this cycle's telemetry. A failed read is logged and
// replaced by its zero value.
func (e *Engine) read() calibration.Reading {
	r := calibration.Reading{Time: e.now()}

	var err error
	if r.ChargeRaw, err = e.source.ChargeCounter(); err != nil {
		logrus.WithError(err).Error("failed to read charge counter")
		r.ChargeRaw = 0
	}
	r.ChargeMah = calibration.NormalizeMah(r.ChargeRaw)

	if r.Capacity, err = e.source.Capacity(); err != nil {
		logrus.WithError(err).Error("failed to read capacity")
		r.Capacity = 0
	}

	if r.Status, err = e.source.Status(); err != nil {
		logrus.WithError(err).Error("failed to read charging status")
		r.Status = ""
	}

	if r.Health, err = e.source.Health(); err != nil {
		logrus.WithError(err).Debug("failed to read battery health")
		r.Health = ""
	}

	if r.VoltageUv, err = e.source.Voltage(); err != nil {
		logrus.WithError(err).Debug("failed to read battery voltage")
		r.VoltageUv = 0
	}

	if r.Brightness, err = e.source.Brightness(); err != nil {
		logrus.WithError(err).Error("failed to read brightness")
		r.Brightness = telemetry.BrightnessUnknown
	}

	return r
}

func (e *Engine) persistBaseline() {
	path := e.conf.MaxChargeCounterFile()
	if err := counter.WriteAtomic(path, e.state.MaxChargeCapacityRaw); err != nil {
		// The in-memory baseline still moves on.
		logrus.WithError(err).WithField("path", path).Debug("failed to persist capacity baseline")
	}
}

func (e *Engine) publish(r calibration.Reading, action calibration.Action, level int, applied bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.status.State = e.state
	if !r.Time.IsZero() {
		e.status.LastReading = r
		e.status.Cycles++
	}
	if action != calibration.ActionNoop {
		e.status.LastAction = action
	}
	if action == calibration.ActionSetLevel && applied {
		e.status.LastLevel = level
	}
}

// Status returns a copy of the state as of the last cycle.
func (e *Engine) Status() calibration.Status {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.status
}

type loopStatus struct {
	status        string
	capacity      int
	isInFullState bool
	action        calibration.Action
}

// logCycle logs at debug level when something changed, trace otherwise.
func (e *Engine) logCycle(r calibration.Reading, action calibration.Action) {
	current := loopStatus{
		status:        r.Status,
		capacity:      r.Capacity,
		isInFullState: e.state.IsInFullState,
		action:        action,
	}

	entry := logrus.WithFields(logrus.Fields{
		"status":          r.Status,
		"capacity":        r.Capacity,
		"chargeMah":       r.ChargeMah,
		"brightness":      r.Brightness,
		"dischargeStreak": e.state.DischargeStreak,
		"isInFullState":   e.state.IsInFullState,
		"action":          action,
	})

	if current == e.lastLogged {
		entry.Trace("battery loop status")
		return
	}

	entry.Debug("battery loop status")
	e.lastLogged = current
}
