package autostart

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls [][]string
	fail  string
}

func (r *recorder) run(args ...string) ([]byte, error) {
	r.calls = append(r.calls, args)
	if r.fail != "" && strings.Join(args, " ") == r.fail {
		return []byte("boom"), errors.New("exit status 1")
	}
	return nil, nil
}

func TestRenderUnit(t *testing.T) {
	unit, err := renderUnit("/usr/local/bin/rubox")
	require.NoError(t, err)

	assert.Contains(t, string(unit), "[Service]\n")
	assert.Contains(t, string(unit), `ExecStart="/usr/local/bin/rubox" run`)
	assert.Contains(t, string(unit), "WantedBy=default.target")
}

func TestLinuxInstallAndUninstall(t *testing.T) {
	rec := &recorder{}
	l := &LinuxAutoStarter{Dir: t.TempDir(), run: rec.run}

	installed, err := l.IsInstalled()
	require.NoError(t, err)
	assert.False(t, installed)

	require.NoError(t, l.Install("/opt/rubox"))

	data, err := os.ReadFile(filepath.Join(l.Dir, ServiceName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"/opt/rubox" run`)
	assert.Equal(t, []string{"systemctl", "--user", "enable", ServiceName}, rec.calls[1])

	installed, err = l.IsInstalled()
	require.NoError(t, err)
	assert.True(t, installed)

	require.NoError(t, l.Uninstall())
	installed, err = l.IsInstalled()
	require.NoError(t, err)
	assert.False(t, installed)

	assert.NoError(t, l.Uninstall())
}

func TestLinuxInstallReportsSystemctlFailure(t *testing.T) {
	rec := &recorder{fail: "systemctl --user start " + ServiceName}
	l := &LinuxAutoStarter{Dir: t.TempDir(), run: rec.run}

	err := l.Install("/opt/rubox")
	assert.ErrorContains(t, err, "boom")
}

func TestWindowsInstall(t *testing.T) {
	rec := &recorder{}
	w := &WindowsAutoStarter{run: rec.run}

	require.NoError(t, w.Install(`C:\Program Files\rubox.exe`))
	require.Len(t, rec.calls, 1)
	assert.Contains(t, rec.calls[0], `"C:\Program Files\rubox.exe" run`)
	assert.Contains(t, rec.calls[0], "ONLOGON")

	installed, err := w.IsInstalled()
	require.NoError(t, err)
	assert.True(t, installed)

	rec.fail = "schtasks /Query /TN " + TaskName
	installed, err = w.IsInstalled()
	require.NoError(t, err)
	assert.False(t, installed)
}
