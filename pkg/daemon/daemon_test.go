package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battcal/battcal/pkg/client"
	"github.com/battcal/battcal/pkg/version"
)

func TestServeStatus(t *testing.T) {
	e, _, _, conf := newTestEngine(t, 15)
	e.Bootstrap()

	// unix socket paths are length limited, t.TempDir can be too long
	dir, err := os.MkdirTemp("", "battcal")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	sock := filepath.Join(dir, "status.sock")

	// stale file from a previous run
	require.NoError(t, os.WriteFile(sock, nil, 0644))

	srv, err := serveStatus(e, conf, sock)
	require.NoError(t, err)
	defer func() { _ = srv.Shutdown(context.Background()) }()

	info, err := os.Stat(sock)
	require.NoError(t, err)
	assert.Equal(t, os.ModeSocket, info.Mode()&os.ModeSocket)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	c := client.NewClient(sock)
	v, err := c.GetVersion()
	require.NoError(t, err)
	assert.Equal(t, version.Version, v)

	st, err := c.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 4500, st.State.MaxChargeCapacityMah)
}
