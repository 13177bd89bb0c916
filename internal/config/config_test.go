package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.SyncIntervalMinutes)
	assert.Equal(t, Default.APIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, 9101, cfg.DaemonPort)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, filepath.Join(dir, "rubox.db"), cfg.DBPath)
	assert.Equal(t, 5*time.Minute, cfg.Interval())
}

func TestLoadLegacyEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "API_KEY=token-123\nDIR_SKAN=/data/photos\nDISK_DIR=Backup/photos\nINTERVAL_SYNCHRONISATION_MINUTES=2\nLOG_FILE_PATH=/tmp/rubox\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0600))

	for _, name := range []string{"API_KEY", "DIR_SKAN", "DISK_DIR", "INTERVAL_SYNCHRONISATION_MINUTES", "LOG_FILE_PATH"} {
		name := name
		t.Cleanup(func() { _ = os.Unsetenv(name) })
	}

	cfg, err := Load(LoadOptions{Dir: dir, EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, "token-123", cfg.APIKey)
	assert.Equal(t, "/data/photos", cfg.LocalRoot)
	assert.Equal(t, "Backup/photos", cfg.RemoteRoot)
	assert.Equal(t, 2, cfg.SyncIntervalMinutes)
	assert.Equal(t, "/tmp/rubox", cfg.LogPath)
	assert.NoError(t, cfg.Validate())
}

func TestLoadPrefixedEnvWins(t *testing.T) {
	t.Setenv("RUBOX_REMOTE_ROOT", "Primary")
	t.Setenv("DISK_DIR", "Legacy")

	cfg, err := Load(LoadOptions{Dir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, "Primary", cfg.RemoteRoot)
}

func TestLoadMissingEnvFileIgnored(t *testing.T) {
	_, err := Load(LoadOptions{Dir: t.TempDir(), EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	assert.NoError(t, err)
}

func TestSetPersists(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Set(dir, "local_root", "/srv/share"))
	require.NoError(t, Set(dir, "sync_interval_minutes", "15"))
	require.NoError(t, Set(dir, "ignore_list", "*.bak,*.part"))

	cfg, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, "/srv/share", cfg.LocalRoot)
	assert.Equal(t, 15, cfg.SyncIntervalMinutes)
	assert.Equal(t, []string{"*.bak", "*.part"}, cfg.IgnoreList)
}

func TestSetUnknownKey(t *testing.T) {
	assert.Error(t, Set(t.TempDir(), "colour", "blue"))
}

func TestValidate(t *testing.T) {
	valid := Config{
		LocalRoot:           "/data",
		RemoteRoot:          "Backup",
		SyncIntervalMinutes: 1,
		APIBaseURL:          Default.APIBaseURL,
	}
	assert.NoError(t, valid.Validate())

	noLocal := valid
	noLocal.LocalRoot = ""
	assert.Error(t, noLocal.Validate())

	noRemote := valid
	noRemote.RemoteRoot = ""
	assert.Error(t, noRemote.Validate())

	zeroInterval := valid
	zeroInterval.SyncIntervalMinutes = 0
	assert.Error(t, zeroInterval.Validate())

	badPattern := valid
	badPattern.IgnoreList = []string{"*.tmp", "[a-"}
	assert.ErrorContains(t, badPattern.Validate(), "[a-")
}
