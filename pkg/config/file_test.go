package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsWhenMissing(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "absent.ini"))
	require.NoError(t, err)

	assert.True(t, f.EnableMonitor())
	assert.True(t, f.EnableTempComp())
	assert.Equal(t, 2*time.Second, f.PollInterval())
	assert.Equal(t, 15, f.DischargeRepeatThreshold())
	assert.Equal(t, "/data/adb/battery_calibrate.log", f.LogFile())
	assert.Equal(t, "/data/adb/battery_calibrate.counter", f.RebootCounterFile())
	assert.Equal(t, "/data/adb/battery_max_charge_counter", f.MaxChargeCounterFile())
	assert.Equal(t, "", f.StatusSocket())
	assert.Equal(t, 3, f.ResetStatsAfterBoots())
	assert.Equal(t, time.Minute, f.StatsServiceWait())
	assert.Equal(t, "com.miui.powerkeeper", f.PowerServicePackage())
}

func TestDefaultsWhenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.ini")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0644))

	f, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, 15, f.DischargeRepeatThreshold())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battery_config.ini")
	content := `# battery calibration
ENABLE_MONITOR = false
ENABLE_TEMP_COMP=1
long_sleep = 5
discharge_threshold = 30
status_socket = /dev/socket/battcal.sock
reset_stats_after_boots = 0
power_service_package =
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	f, err := NewFile(path)
	require.NoError(t, err)

	assert.False(t, f.EnableMonitor())
	assert.True(t, f.EnableTempComp())
	assert.Equal(t, 5*time.Second, f.PollInterval())
	assert.Equal(t, 30, f.DischargeRepeatThreshold())
	assert.Equal(t, "/dev/socket/battcal.sock", f.StatusSocket())
	assert.Equal(t, 0, f.ResetStatsAfterBoots())
	assert.Equal(t, "", f.PowerServicePackage())
	// untouched keys keep defaults
	assert.Equal(t, "/data/adb/battery_calibrate.log", f.LogFile())
	assert.Equal(t, path, f.Path())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero interval", "long_sleep = 0"},
		{"negative threshold", "discharge_threshold = -2"},
		{"not a number", "long_sleep = soon"},
		{"negative reset", "reset_stats_after_boots = -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestParseBooleans(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"TRUE", true},
		{"false", false},
		{"0", false},
		{"enabled", false},
		{"yes", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			c, err := Parse([]byte("ENABLE_MONITOR = " + tt.value + "\nENABLE_TEMP_COMP = " + tt.value + "\n"))
			require.NoError(t, err)
			require.NotNil(t, c.EnableMonitor)
			assert.Equal(t, tt.want, *c.EnableMonitor)
			assert.Equal(t, tt.want, *c.EnableTempComp)
		})
	}
}

func TestNewFileReportsParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ini")
	require.NoError(t, os.WriteFile(path, []byte("discharge_threshold = 0\n"), 0644))

	_, err := NewFile(path)
	assert.ErrorContains(t, err, "discharge_threshold")
}

func TestRawFileConfigRoundTrip(t *testing.T) {
	f := NewFileFromConfig(nil, "")
	raw, err := NewRawFileConfigFromConfig(f)
	require.NoError(t, err)

	again := NewFileFromConfig(raw, "")
	assert.Equal(t, f.LogrusFields(), again.LogrusFields())

	_, err = NewRawFileConfigFromConfig(nil)
	assert.Error(t, err)
}
