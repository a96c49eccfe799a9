package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "apptlog.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apptlog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_file: /tmp/x.csv\nevent_minutes: -3\nlog_level: loud\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.csv", cfg.LogFile)
	assert.Equal(t, defaultListen, cfg.Listen)
	assert.Equal(t, defaultRemindCron, cfg.RemindCron)
	assert.Equal(t, defaultEventMinutes, cfg.EventMinutes)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
}

func TestLoadEmptyRemindDisablesScheduler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apptlog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("remind: \"\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.RemindCron)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apptlog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unterminated\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apptlog.yaml")
	cfg := DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.RemindAheadDays = 2
	cfg.BasicAuth = &BasicAuthConfig{Username: "admin", Password: "secret"}

	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestSaveNil(t *testing.T) {
	assert.Error(t, Save(filepath.Join(t.TempDir(), "x.yaml"), nil))
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	cfg.Timezone = "Not/AZone"
	_, err = cfg.Location()
	assert.Error(t, err)
}

func TestEventDuration(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 30*time.Minute, cfg.EventDuration())
}
