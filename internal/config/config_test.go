package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chorewheel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalYAML = `
keep:
  base_url: https://keep.example.test
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	require.Equal(t, "./cleaning-schedule.csv", cfg.Catalog)
	require.Equal(t, "monday", cfg.ResetDay)
	require.Equal(t, "info", cfg.Logging.Level)
	require.NotNil(t, cfg.Logging.Console)
	require.True(t, *cfg.Logging.Console)
	require.Equal(t, 5, cfg.Keep.RatePerSec)
	require.Equal(t, 2, cfg.Keep.ParallelSync)
	require.Equal(t, "06:00", cfg.Serve.At)

	day, err := cfg.ResetWeekday()
	require.NoError(t, err)
	require.Equal(t, time.Monday, day)
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
catalog: /data/schedule.csv
reset_day: sunday
timezone: UTC
logging:
  level: debug
  console: false
  file:
    enabled: true
    path: /var/log/chorewheel.log
keep:
  base_url: https://keep.example.test/
  rate_per_sec: 2
  timeout: 10s
  parallel_sync: 4
journal:
  driver: file
  path: /data/runs.jsonl
serve:
  at: "07:30"
people:
  Alice: "Alice's Chores"
  Bob: "Bob's Chores"
`))
	require.NoError(t, err)

	require.Equal(t, "/data/schedule.csv", cfg.Catalog)

	day, err := cfg.ResetWeekday()
	require.NoError(t, err)
	require.Equal(t, time.Sunday, day)

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, "UTC", loc.String())

	timeout, err := cfg.KeepTimeout()
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, timeout)

	require.False(t, *cfg.Logging.Console)
	require.Equal(t, "file", cfg.Journal.Driver)
	require.Equal(t, "07:30", cfg.Serve.At)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, `
keep:
  base_url: https://keep.example.test
  tokem: typo-key
`))
	require.Error(t, err)
}

func TestLoadRejectsBadResetDay(t *testing.T) {
	_, err := Load(writeConfig(t, `
reset_day: moonday
keep:
  base_url: https://keep.example.test
`))
	require.Error(t, err)
}

func TestLoadRequiresBaseURL(t *testing.T) {
	_, err := Load(writeConfig(t, "catalog: ./x.csv\n"))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestCredentialsComeFromEnv(t *testing.T) {
	t.Setenv(EnvToken, "tok-123")
	t.Setenv(EnvEmail, "a@b.c")
	t.Setenv(EnvPassword, "hunter2")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)
	require.Equal(t, "tok-123", cfg.Keep.Token)
	require.Equal(t, "a@b.c", cfg.Keep.Email)
	require.Equal(t, "hunter2", cfg.Keep.Password)
}

func TestListTitle(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML+`
people:
  Alice: "Alice's Chores"
`))
	require.NoError(t, err)

	title, ok := cfg.ListTitle("Alice")
	require.True(t, ok)
	require.Equal(t, "Alice's Chores", title)

	_, ok = cfg.ListTitle("Bob")
	require.False(t, ok)

	// The NOTE_<PERSON> environment override wins over the map.
	t.Setenv("NOTE_ALICE", "Alice Override")
	title, ok = cfg.ListTitle("Alice")
	require.True(t, ok)
	require.Equal(t, "Alice Override", title)

	t.Setenv("NOTE_MARY_JANE", "MJ's Chores")
	title, ok = cfg.ListTitle("Mary Jane")
	require.True(t, ok)
	require.Equal(t, "MJ's Chores", title)
}
