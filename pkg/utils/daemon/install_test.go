package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteScript(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "service.d")

	require.NoError(t, writeScript(dir, "/data/adb/battcal", "/data/adb/battery_config.ini"))

	path := ScriptPath(dir)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `exec "/data/adb/battcal" run --config "/data/adb/battery_config.ini"`)
	assert.Contains(t, string(b), "sys.boot_completed")
	assert.NotContains(t, string(b), "/path/to/")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	// second install overwrites
	require.NoError(t, writeScript(dir, "/other/battcal", "/c.ini"))
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `exec "/other/battcal" run --config "/c.ini"`)
}

func TestUninstall(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeScript(dir, "/bin/battcal", "/c.ini"))

	require.NoError(t, Uninstall(dir))
	_, err := os.Stat(ScriptPath(dir))
	assert.True(t, os.IsNotExist(err))

	// nothing installed is fine
	assert.NoError(t, Uninstall(dir))
}
