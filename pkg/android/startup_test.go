package android

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battcal/battcal/pkg/config"
	"github.com/battcal/battcal/pkg/counter"
	"github.com/battcal/battcal/pkg/utils/ptr"
)

type recordingGateway struct {
	commands []string
}

func (g *recordingGateway) Apply(_, command string) bool {
	g.commands = append(g.commands, command)
	return true
}

func newStartup(t *testing.T, raw *config.RawFileConfig) (*Startup, *recordingGateway, *[]time.Duration) {
	t.Helper()
	if raw.RebootCounterFile == nil {
		raw.RebootCounterFile = ptr.To(filepath.Join(t.TempDir(), "counter"))
	}
	g := &recordingGateway{}
	var sleeps []time.Duration
	s := &Startup{
		Gateway: g,
		Conf:    config.NewFileFromConfig(raw, ""),
		Sleep:   func(d time.Duration) { sleeps = append(sleeps, d) },
	}
	return s, g, &sleeps
}

func TestCommandTemplates(t *testing.T) {
	assert.Equal(t, "dumpsys battery set level 42", SetLevel(42))
	assert.Equal(t, "pm disable com.example", DisablePackage("com.example"))
	assert.Equal(t, "pm enable com.example", EnablePackage("com.example"))
	assert.Equal(t, "rm -f /data/system/batterystats.bin", RemoveFile(StatsFile))
	assert.Equal(t, "am broadcast -a android.intent.action.BATTERY_CHANGED", Broadcast(BatteryChangedIntent))
}

func TestDisableCompensation(t *testing.T) {
	s, g, _ := newStartup(t, &config.RawFileConfig{})
	s.DisableCompensation()
	assert.Equal(t, []string{CmdDisableTempComp, CmdDisableVoltageComp, CmdResetAgeFactor}, g.commands)

	s, g, _ = newStartup(t, &config.RawFileConfig{EnableTempComp: ptr.To(false)})
	s.DisableCompensation()
	assert.Equal(t, []string{CmdDisableVoltageComp, CmdResetAgeFactor}, g.commands)
}

func TestBumpRebootCounter(t *testing.T) {
	s, _, _ := newStartup(t, &config.RawFileConfig{})
	assert.Equal(t, 1, s.BumpRebootCounter())
	assert.Equal(t, 2, s.BumpRebootCounter())
	assert.Equal(t, 2, counter.ReadOrDefault(s.Conf.RebootCounterFile()))
}

func TestResetStatisticsNotDue(t *testing.T) {
	s, g, sleeps := newStartup(t, &config.RawFileConfig{ResetStatsAfterBoots: ptr.To(3)})
	assert.False(t, s.ResetStatisticsIfDue(2))
	assert.Empty(t, g.commands)
	assert.Empty(t, *sleeps)

	s, g, _ = newStartup(t, &config.RawFileConfig{ResetStatsAfterBoots: ptr.To(0)})
	assert.False(t, s.ResetStatisticsIfDue(100))
	assert.Empty(t, g.commands)
}

func TestResetStatisticsDue(t *testing.T) {
	s, g, sleeps := newStartup(t, &config.RawFileConfig{
		ResetStatsAfterBoots: ptr.To(3),
		StatsWaitSeconds:     ptr.To(60),
		PowerServicePackage:  ptr.To("com.vendor.power"),
	})
	require.NoError(t, counter.WriteAtomic(s.Conf.RebootCounterFile(), 3))

	assert.True(t, s.ResetStatisticsIfDue(3))
	assert.Equal(t, []time.Duration{time.Minute}, *sleeps)
	assert.Equal(t, []string{
		"pm disable com.vendor.power",
		"rm -f /data/system/batterystats.bin",
		CmdStatsReset,
		"pm enable com.vendor.power",
		"am broadcast -a android.intent.action.BATTERY_CHANGED",
	}, g.commands)
	assert.Equal(t, 0, counter.ReadOrDefault(s.Conf.RebootCounterFile()))
}

func TestResetStatisticsWithoutPackage(t *testing.T) {
	s, g, _ := newStartup(t, &config.RawFileConfig{
		ResetStatsAfterBoots: ptr.To(1),
		StatsWaitSeconds:     ptr.To(0),
		PowerServicePackage:  ptr.To(""),
	})

	assert.True(t, s.ResetStatisticsIfDue(1))
	assert.Equal(t, []string{
		"rm -f /data/system/batterystats.bin",
		CmdStatsReset,
		"am broadcast -a android.intent.action.BATTERY_CHANGED",
	}, g.commands)
}

func TestRun(t *testing.T) {
	s, g, _ := newStartup(t, &config.RawFileConfig{ResetStatsAfterBoots: ptr.To(1), StatsWaitSeconds: ptr.To(0)})
	s.Run()

	assert.Contains(t, g.commands, CmdStatsReset)
	assert.Equal(t, CmdDisableTempComp, g.commands[0])
	assert.Equal(t, 0, counter.ReadOrDefault(s.Conf.RebootCounterFile()))
}
