package daemon

import (
	"errors"
	"io/fs"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Uninstall removes the boot script from serviceDir. A running daemon is
// left alone and simply won't come back after the next reboot.
func Uninstall(serviceDir string) error {
	path := ScriptPath(serviceDir)

	logrus.Infof("removing boot script %s", path)

	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return pkgerrors.Wrapf(err, "failed to remove %s. Are you root?", path)
	}

	return nil
}
