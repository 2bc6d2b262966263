// Package android builds the shell commands that drive the Android battery
// tooling, and runs the one-shot startup sequence.
package android

import "fmt"

const (
	CmdDisableTempComp    = "setprop persist.vendor.power.disable_temp_comp 1"
	CmdDisableVoltageComp = "setprop persist.vendor.power.disable_voltage_comp 1"
	CmdResetAgeFactor     = "setprop persist.vendor.battery.age_factor 100"

	CmdBatteryReset = "dumpsys battery reset"
	CmdStatsReset   = "dumpsys batterystats --reset"

	// StatsFile is the persisted battery statistics of the platform.
	StatsFile = "/data/system/batterystats.bin"

	BatteryChangedIntent = "android.intent.action.BATTERY_CHANGED"
)

// SetLevel overrides the battery level reported by the OS.
func SetLevel(level int) string {
	return fmt.Sprintf("dumpsys battery set level %d", level)
}

func DisablePackage(pkg string) string {
	return fmt.Sprintf("pm disable %s", pkg)
}

func EnablePackage(pkg string) string {
	return fmt.Sprintf("pm enable %s", pkg)
}

func RemoveFile(path string) string {
	return fmt.Sprintf("rm -f %s", path)
}

func Broadcast(action string) string {
	return fmt.Sprintf("am broadcast -a %s", action)
}
