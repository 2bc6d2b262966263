package daemon

import (
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultServiceDir is where Magisk runs late_start boot scripts from.
	DefaultServiceDir = "/data/adb/service.d"

	scriptName = "battcal.sh"
)

const bootScriptTemplate = `#!/system/bin/sh
# Installed by battcal. Remove with "battcal uninstall".
until [ "$(getprop sys.boot_completed)" = "1" ]; do
  sleep 5
done
exec "/path/to/battcal" run --config "/path/to/config"
`

// ScriptPath returns the boot script location inside serviceDir.
func ScriptPath(serviceDir string) string {
	return filepath.Join(serviceDir, scriptName)
}

// Install writes a boot script into serviceDir that runs the current
// executable with the given config file once boot has completed.
func Install(serviceDir, configPath string) error {
	exePath, err := os.Executable()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to get the path to the current executable")
	}
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to get the absolute path to the current executable")
	}

	if err := os.Chmod(exePath, 0755); err != nil {
		return pkgerrors.Wrap(err, "failed to chmod the current executable to 0755")
	}

	logrus.Infof("current executable path: %s", exePath)

	return writeScript(serviceDir, exePath, configPath)
}

func writeScript(serviceDir, exePath, configPath string) error {
	script := strings.NewReplacer(
		"/path/to/battcal", exePath,
		"/path/to/config", configPath,
	).Replace(bootScriptTemplate)

	if err := os.MkdirAll(serviceDir, 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create %s", serviceDir)
	}

	path := ScriptPath(serviceDir)
	if _, err := os.Stat(path); err == nil {
		logrus.Warnf("%s already exists, overwriting", path)
	}

	logrus.Infof("writing boot script to %s", path)

	// service.d only runs executable scripts.
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to write %s", path)
	}
	if err := os.Chmod(path, 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to chmod %s", path)
	}

	return nil
}
