package calibration

import "time"

// ChargeStatus is the parsed charging status label.
type ChargeStatus int

const (
	StatusUnknown ChargeStatus = iota
	StatusCharging
	StatusDischarging
	StatusNotCharging
	StatusFull
)

// ParseStatus maps a power_supply status label to a ChargeStatus. Labels it
// does not know map to StatusUnknown.
func ParseStatus(label string) ChargeStatus {
	switch label {
	case "Charging":
		return StatusCharging
	case "Discharging":
		return StatusDischarging
	case "Not charging":
		return StatusNotCharging
	case "Full":
		return StatusFull
	default:
		return StatusUnknown
	}
}

func (s ChargeStatus) String() string {
	switch s {
	case StatusCharging:
		return "Charging"
	case StatusDischarging:
		return "Discharging"
	case StatusNotCharging:
		return "Not charging"
	case StatusFull:
		return "Full"
	default:
		return "Unknown"
	}
}

// Action is the OS side effect requested for one cycle.
type Action string

const (
	ActionNoop     Action = "Noop"
	ActionReset    Action = "Reset"
	ActionSetLevel Action = "SetLevel"
)

// State is the calibration state owned by the daemon loop.
type State struct {
	// MaxChargeCapacityRaw is the last known full-charge capacity in the
	// charge counter's native unit.
	MaxChargeCapacityRaw int `json:"maxChargeCapacityRaw"`
	// MaxChargeCapacityMah is MaxChargeCapacityRaw normalized to mAh.
	MaxChargeCapacityMah int `json:"maxChargeCapacityMah"`
	// IsInFullState is true while the device keeps reporting full.
	IsInFullState bool `json:"isInFullState"`
	// TempFullChargeRaw is the raw reading at the latest full-state commit.
	TempFullChargeRaw int `json:"tempFullChargeRaw"`
	// DischargeStreak counts consecutive discharging cycles.
	DischargeStreak int `json:"dischargeStreak"`
	// PreviousStatus is the status label seen on the previous cycle.
	PreviousStatus string `json:"previousStatus"`
}

// Reading is one cycle's worth of telemetry, after defaults were applied
// to failed reads.
type Reading struct {
	ChargeRaw  int       `json:"chargeRaw"`
	ChargeMah  int       `json:"chargeMah"`
	Capacity   int       `json:"capacity"`
	Status     string    `json:"status"`
	Health     string    `json:"health"`
	VoltageUv  int       `json:"voltageUv"`
	Brightness int       `json:"brightness"`
	Time       time.Time `json:"time"`
}

// Status is the view model served by the status API.
type Status struct {
	State       State     `json:"state"`
	LastReading Reading   `json:"lastReading"`
	LastAction  Action    `json:"lastAction"`
	LastLevel   int       `json:"lastLevel"`
	Cycles      int64     `json:"cycles"`
	StartedAt   time.Time `json:"startedAt"`
}
