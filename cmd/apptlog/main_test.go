package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apptlog/internal/appointment"
	"apptlog/internal/config"
)

func setup(t *testing.T) (cfgPath, logPath string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "apptlog.yaml")
	logPath = filepath.Join(dir, "appointments.csv")

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.LogFile = logPath
	require.NoError(t, cfg.Save(cfgPath))
	return cfgPath, logPath
}

func TestRunSubmit(t *testing.T) {
	cfgPath, logPath := setup(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfgPath, "submit", "-day", "monday", "-time", "9:30", "-reason", "Checkup, annual"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Monday 9:30 AM")

	code = run([]string{"-config", cfgPath, "submit", "-day", "6", "-time", "12", "-meridiem", "PM"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\r\n"), "\r\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Day,Time,Reason", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], `,Monday,9:30 AM,"Checkup, annual"`), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], ",Sunday,12 PM,"), lines[2])
}

func TestRunSubmitNoWeekdayIsSilent(t *testing.T) {
	cfgPath, logPath := setup(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfgPath, "submit", "-time", "9:30"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())

	// Other bad fields do not matter once the day is missing.
	code = run([]string{"-config", cfgPath, "submit", "-time", "13:00", "-meridiem", ""}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Empty(t, stderr.String())

	_, err := os.Stat(logPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunSubmitInvalidTime(t *testing.T) {
	cfgPath, logPath := setup(t)

	for _, tm := range []string{"13:00", "0:00", "5:60", "abc", ""} {
		var stdout, stderr bytes.Buffer
		code := run([]string{"-config", cfgPath, "submit", "-day", "tue", "-time", tm}, &stdout, &stderr)
		assert.Equal(t, 2, code, tm)
		assert.Equal(t, appointment.InvalidTimeMessage+"\n", stderr.String(), tm)
	}

	_, err := os.Stat(logPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunExport(t *testing.T) {
	cfgPath, _ := setup(t)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-config", cfgPath, "submit", "-day", "fri", "-time", "2:15", "-meridiem", "PM", "-reason", "Dentist"}, &stdout, &stderr))

	stdout.Reset()
	require.Equal(t, 0, run([]string{"-config", cfgPath, "export"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, stdout.String(), "SUMMARY:Dentist")

	out := filepath.Join(filepath.Dir(cfgPath), "appointments.ics")
	require.Equal(t, 0, run([]string{"-config", cfgPath, "export", "-o", out}, &stdout, &stderr))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SUMMARY:Dentist")
}

func TestRunRemindOnce(t *testing.T) {
	cfgPath, _ := setup(t)

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"-config", cfgPath, "remind", "-once"}, &stdout, &stderr))
}

func TestRunUsage(t *testing.T) {
	cfgPath, _ := setup(t)

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"-config", cfgPath}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: apptlog")

	stderr.Reset()
	assert.Equal(t, 2, run([]string{"-config", cfgPath, "frobnicate"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `unknown command "frobnicate"`)
}
