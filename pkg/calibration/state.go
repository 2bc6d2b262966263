package calibration

import "math"

const (
	// microAmpHourThreshold separates µAh counters from mAh counters.
	microAmpHourThreshold = 20000
	// MinLevel replaces a computed level of 0.
	MinLevel = 5
	// MaxLevel is the highest level ever reported.
	MaxLevel = 100
)

// NormalizeMah converts a raw charge counter reading to mAh. Readings above
// 20000 are taken to be µAh.
func NormalizeMah(raw int) int {
	if raw > microAmpHourThreshold {
		return raw / 1000
	}
	return raw
}

// SyntheticLevel computes the percentage reported to the OS.
func SyntheticLevel(chargeMah, maxChargeMah int) int {
	level := 0
	if maxChargeMah > 0 {
		level = int(math.Round(float64(chargeMah) * 100 / float64(maxChargeMah)))
	}

	// Only an exact 0 is floored, 0% makes the system shut down.
	if level == 0 {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// Transition is the classification of a (previous, current) status pair.
type Transition int

const (
	TransitionOther Transition = iota
	TransitionPlugIn
	TransitionUnplug
	TransitionStillCharging
	TransitionStillDischarging
)

// Classify returns the transition between two cycles' statuses.
func Classify(prev, cur ChargeStatus) Transition {
	switch {
	case prev == StatusDischarging && cur == StatusCharging:
		return TransitionPlugIn
	case prev == StatusCharging && cur == StatusDischarging:
		return TransitionUnplug
	case prev == StatusCharging && cur == StatusCharging:
		return TransitionStillCharging
	case prev == StatusDischarging && cur == StatusDischarging:
		return TransitionStillDischarging
	default:
		return TransitionOther
	}
}

// SetBaseline replaces the full-charge capacity baseline.
func (s *State) SetBaseline(raw int) {
	s.MaxChargeCapacityRaw = raw
	s.MaxChargeCapacityMah = NormalizeMah(raw)
}

// TrackFull updates the full-state bookkeeping for this cycle. It reports
// true when raw became the new baseline and must be persisted.
func (s *State) TrackFull(status string, capacity, raw int) bool {
	st := ParseStatus(status)
	if (st != StatusNotCharging && st != StatusFull) || capacity != 100 {
		s.IsInFullState = false
		return false
	}

	// Capacity can still creep up while the device stays "full".
	if s.IsInFullState && raw == s.TempFullChargeRaw {
		return false
	}

	s.SetBaseline(raw)
	s.IsInFullState = true
	s.TempFullChargeRaw = raw
	return true
}

// Advance classifies the move from PreviousStatus to status and updates the
// discharge streak. With the screen off only a plug-in is acted upon.
// PreviousStatus is left untouched, see Commit.
func (s *State) Advance(status string, screenOn bool, dischargeThreshold int) Action {
	switch Classify(ParseStatus(s.PreviousStatus), ParseStatus(status)) {
	case TransitionPlugIn:
		s.DischargeStreak = 0
		return ActionReset
	case TransitionUnplug:
		if !screenOn {
			return ActionNoop
		}
		s.DischargeStreak = 0
		return ActionSetLevel
	case TransitionStillDischarging:
		if !screenOn {
			return ActionNoop
		}
		s.DischargeStreak++
		if dischargeThreshold > 0 && s.DischargeStreak%dischargeThreshold == 0 {
			return ActionSetLevel
		}
	}
	return ActionNoop
}

// Commit records status as the previous status for the next cycle.
func (s *State) Commit(status string) {
	s.PreviousStatus = status
}
