// Package telemetry reads the single-value sysfs nodes that describe the
// battery and the display backlight.
package telemetry

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// BrightnessUnknown is returned when no backlight node exists.
const BrightnessUnknown = -1

const (
	DefaultRoot        = "/"
	batteryDir         = "sys/class/power_supply/battery"
	chargeCounterNode  = "charge_counter"
	designCapacityNode = "charge_full_design"
	capacityNode       = "capacity"
	statusNode         = "status"
	healthNode         = "health"
	voltageNode        = "voltage_now"
	brightnessNode     = "brightness"
)

// brightnessDirs are probed in order, the first existing node wins.
var brightnessDirs = []string{
	"sys/class/backlight/panel0-backlight",
	"sys/class/leds/lcd-backlight",
	"sys/devices/platform/soc/soc:mtk_leds/leds/lcd-backlight",
}

// Source provides raw battery and display readings.
type Source interface {
	// ChargeCounter is the present charge in the device's native unit
	// (mAh or µAh).
	ChargeCounter() (int, error)
	// DesignCapacity is the full-charge design capacity in native units.
	DesignCapacity() (int, error)
	// Capacity is the OS-reported percentage.
	Capacity() (int, error)
	// Status is the charging status label, e.g. "Charging" or "Not charging".
	Status() (string, error)
	Health() (string, error)
	Voltage() (int, error)
	// Brightness returns the first available backlight reading, or
	// BrightnessUnknown with a nil error when no backlight node exists.
	Brightness() (int, error)
}

// Sysfs reads from a sysfs tree mounted at Root.
type Sysfs struct {
	Root string
}

var _ Source = &Sysfs{}

// NewSysfs returns a Source reading from the real /sys.
func NewSysfs() *Sysfs {
	return &Sysfs{Root: DefaultRoot}
}

func (s *Sysfs) ChargeCounter() (int, error) {
	return s.readInt(filepath.Join(batteryDir, chargeCounterNode))
}

func (s *Sysfs) DesignCapacity() (int, error) {
	return s.readInt(filepath.Join(batteryDir, designCapacityNode))
}

func (s *Sysfs) Capacity() (int, error) {
	return s.readInt(filepath.Join(batteryDir, capacityNode))
}

func (s *Sysfs) Status() (string, error) {
	return s.readString(filepath.Join(batteryDir, statusNode))
}

func (s *Sysfs) Health() (string, error) {
	return s.readString(filepath.Join(batteryDir, healthNode))
}

func (s *Sysfs) Voltage() (int, error) {
	return s.readInt(filepath.Join(batteryDir, voltageNode))
}

func (s *Sysfs) Brightness() (int, error) {
	for _, dir := range brightnessDirs {
		rel := filepath.Join(dir, brightnessNode)
		if _, err := os.Stat(s.path(rel)); err != nil {
			continue
		}
		v, err := s.readInt(rel)
		if err != nil {
			return BrightnessUnknown, err
		}
		return v, nil
	}
	return BrightnessUnknown, nil
}

func (s *Sysfs) path(rel string) string {
	root := s.Root
	if root == "" {
		root = DefaultRoot
	}
	return filepath.Join(root, rel)
}

func (s *Sysfs) readString(rel string) (string, error) {
	p := s.path(rel)
	b, err := os.ReadFile(p)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to read %s", p)
	}
	v := strings.TrimSpace(string(b))
	if v == "" {
		return "", pkgerrors.Errorf("empty value in %s", p)
	}
	return v, nil
}

func (s *Sysfs) readInt(rel string) (int, error) {
	str, err := s.readString(rel)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(str)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to parse %s", s.path(rel))
	}
	return v, nil
}
