package config

import (
	"os"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"github.com/battcal/battcal/pkg/utils/ptr"
)

// DefaultPath is where the config file lives on the device.
const DefaultPath = "/data/adb/battery_config.ini"

const (
	keyEnableMonitor        = "ENABLE_MONITOR"
	keyEnableTempComp       = "ENABLE_TEMP_COMP"
	keyPollInterval         = "long_sleep"
	keyDischargeThreshold   = "discharge_threshold"
	keyLogFile              = "log_file"
	keyRebootCounterFile    = "counter_file"
	keyMaxChargeCounterFile = "max_charge_counter_file"
	keyStatusSocket         = "status_socket"
	keyResetStatsAfterBoots = "reset_stats_after_boots"
	keyStatsWaitSeconds     = "stats_wait_seconds"
	keyPowerServicePackage  = "power_service_package"
)

var (
	defaultFileConfig = &RawFileConfig{
		EnableMonitor:            ptr.To(true),
		EnableTempComp:           ptr.To(true),
		PollIntervalSeconds:      ptr.To(2),
		DischargeRepeatThreshold: ptr.To(15),
		LogFile:                  ptr.To("/data/adb/battery_calibrate.log"),
		RebootCounterFile:        ptr.To("/data/adb/battery_calibrate.counter"),
		MaxChargeCounterFile:     ptr.To("/data/adb/battery_max_charge_counter"),
		StatusSocket:             ptr.To(""),
		ResetStatsAfterBoots:     ptr.To(3),
		StatsWaitSeconds:         ptr.To(60),
		PowerServicePackage:      ptr.To("com.miui.powerkeeper"),
	}
)

var _ Config = &File{}

// File is a Config read from an INI file. Unset keys fall back to defaults.
type File struct {
	c        *RawFileConfig
	filepath string
}

// RawFileConfig holds the values present in the file; nil means unset.
type RawFileConfig struct {
	EnableMonitor            *bool   `json:"enableMonitor,omitempty"`
	EnableTempComp           *bool   `json:"enableTempComp,omitempty"`
	PollIntervalSeconds      *int    `json:"pollIntervalSeconds,omitempty"`
	DischargeRepeatThreshold *int    `json:"dischargeRepeatThreshold,omitempty"`
	LogFile                  *string `json:"logFile,omitempty"`
	RebootCounterFile        *string `json:"rebootCounterFile,omitempty"`
	MaxChargeCounterFile     *string `json:"maxChargeCounterFile,omitempty"`
	StatusSocket             *string `json:"statusSocket,omitempty"`
	ResetStatsAfterBoots     *int    `json:"resetStatsAfterBoots,omitempty"`
	StatsWaitSeconds         *int    `json:"statsWaitSeconds,omitempty"`
	PowerServicePackage      *string `json:"powerServicePackage,omitempty"`
}

// NewFile loads the config at configPath. A missing or empty file yields
// the defaults.
func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
	}
	if err := f.load(); err != nil {
		return nil, err
	}

	return f, nil
}

// NewFileFromConfig wraps an already parsed config, defaults when c is nil.
func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	return &File{
		c:        c,
		filepath: configPath,
	}
}

// NewRawFileConfigFromConfig resolves every value of c, defaults included.
func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	return &RawFileConfig{
		EnableMonitor:            ptr.To(c.EnableMonitor()),
		EnableTempComp:           ptr.To(c.EnableTempComp()),
		PollIntervalSeconds:      ptr.To(int(c.PollInterval() / time.Second)),
		DischargeRepeatThreshold: ptr.To(c.DischargeRepeatThreshold()),
		LogFile:                  ptr.To(c.LogFile()),
		RebootCounterFile:        ptr.To(c.RebootCounterFile()),
		MaxChargeCounterFile:     ptr.To(c.MaxChargeCounterFile()),
		StatusSocket:             ptr.To(c.StatusSocket()),
		ResetStatsAfterBoots:     ptr.To(c.ResetStatsAfterBoots()),
		StatsWaitSeconds:         ptr.To(int(c.StatsServiceWait() / time.Second)),
		PowerServicePackage:      ptr.To(c.PowerServicePackage()),
	}, nil
}

func pick[T any](v, def *T) T {
	if v != nil {
		return *v
	}
	return *def
}

func (f *File) EnableMonitor() bool {
	return pick(f.c.EnableMonitor, defaultFileConfig.EnableMonitor)
}

func (f *File) EnableTempComp() bool {
	return pick(f.c.EnableTempComp, defaultFileConfig.EnableTempComp)
}

func (f *File) PollInterval() time.Duration {
	return time.Duration(pick(f.c.PollIntervalSeconds, defaultFileConfig.PollIntervalSeconds)) * time.Second
}

func (f *File) DischargeRepeatThreshold() int {
	return pick(f.c.DischargeRepeatThreshold, defaultFileConfig.DischargeRepeatThreshold)
}

func (f *File) LogFile() string {
	return pick(f.c.LogFile, defaultFileConfig.LogFile)
}

func (f *File) RebootCounterFile() string {
	return pick(f.c.RebootCounterFile, defaultFileConfig.RebootCounterFile)
}

func (f *File) MaxChargeCounterFile() string {
	return pick(f.c.MaxChargeCounterFile, defaultFileConfig.MaxChargeCounterFile)
}

func (f *File) StatusSocket() string {
	return pick(f.c.StatusSocket, defaultFileConfig.StatusSocket)
}

func (f *File) ResetStatsAfterBoots() int {
	return pick(f.c.ResetStatsAfterBoots, defaultFileConfig.ResetStatsAfterBoots)
}

func (f *File) StatsServiceWait() time.Duration {
	return time.Duration(pick(f.c.StatsWaitSeconds, defaultFileConfig.StatsWaitSeconds)) * time.Second
}

func (f *File) PowerServicePackage() string {
	return pick(f.c.PowerServicePackage, defaultFileConfig.PowerServicePackage)
}

// Path returns the file the config was loaded from.
func (f *File) Path() string {
	return f.filepath
}

func (f *File) load() error {
	b, err := os.ReadFile(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf, err := Parse(b)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to parse config from file %s", f.filepath)
	}
	f.c = conf

	return nil
}

// Parse decodes the INI content in b. Keys live in the default section.
func Parse(b []byte) (*RawFileConfig, error) {
	file, err := ini.Load(b)
	if err != nil {
		return nil, err
	}
	sec := file.Section(ini.DefaultSection)

	c := &RawFileConfig{}
	var errs []string
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	readBool(sec, keyEnableMonitor, &c.EnableMonitor)
	readBool(sec, keyEnableTempComp, &c.EnableTempComp)
	collect(readInt(sec, keyPollInterval, 1, &c.PollIntervalSeconds))
	collect(readInt(sec, keyDischargeThreshold, 1, &c.DischargeRepeatThreshold))
	collect(readInt(sec, keyResetStatsAfterBoots, 0, &c.ResetStatsAfterBoots))
	collect(readInt(sec, keyStatsWaitSeconds, 0, &c.StatsWaitSeconds))
	readString(sec, keyLogFile, &c.LogFile)
	readString(sec, keyRebootCounterFile, &c.RebootCounterFile)
	readString(sec, keyMaxChargeCounterFile, &c.MaxChargeCounterFile)
	readString(sec, keyStatusSocket, &c.StatusSocket)
	readString(sec, keyPowerServicePackage, &c.PowerServicePackage)

	if len(errs) > 0 {
		return nil, pkgerrors.New(strings.Join(errs, "; "))
	}

	return c, nil
}

// readBool accepts "true" and "1" as true. Anything else is false, with a
// warning for values that are not "false" or "0" either.
func readBool(sec *ini.Section, key string, dst **bool) {
	if !sec.HasKey(key) {
		return
	}
	raw := sec.Key(key).String()
	v := false
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		v = true
	case "false", "0":
	default:
		logrus.WithFields(logrus.Fields{
			"key":   key,
			"value": raw,
		}).Warn("unrecognized boolean, treating as false")
	}
	*dst = &v
}

func readInt(sec *ini.Section, key string, minimum int, dst **int) error {
	if !sec.HasKey(key) {
		return nil
	}
	v, err := sec.Key(key).Int()
	if err != nil {
		return pkgerrors.Errorf("%s: invalid integer %q", key, sec.Key(key).String())
	}
	if v < minimum {
		return pkgerrors.Errorf("%s: must be at least %d, got %d", key, minimum, v)
	}
	*dst = &v
	return nil
}

func readString(sec *ini.Section, key string, dst **string) {
	if !sec.HasKey(key) {
		return
	}
	v := sec.Key(key).String()
	*dst = &v
}

func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"enableMonitor":            f.EnableMonitor(),
		"enableTempComp":           f.EnableTempComp(),
		"pollInterval":             f.PollInterval().String(),
		"dischargeRepeatThreshold": f.DischargeRepeatThreshold(),
		"logFile":                  f.LogFile(),
		"statusSocket":             f.StatusSocket(),
		"resetStatsAfterBoots":     f.ResetStatsAfterBoots(),
		"statsServiceWait":         f.StatsServiceWait().String(),
		"powerServicePackage":      f.PowerServicePackage(),
	}
}
