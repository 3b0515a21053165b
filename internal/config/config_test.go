package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Конфигурация без секций telegram_bot, daily_job и storage валидна:
// дашборд поднимается и без рассылки.
func TestNewManagerWithoutTelegramSection(t *testing.T) {
	path := writeConfig(t, `
http_server:
  address: "127.0.0.1:8080"
  read_timeout_seconds: 5
  write_timeout_seconds: 5
dataset:
  sample_size: 200
report:
  save_dir: "/var/lib/hr_dashboard/reports"
`)

	m, err := NewManager(path, testLogger())
	require.NoError(t, err)

	cfg := m.Current()
	assert.Equal(t, "127.0.0.1:8080", cfg.HttpServer.Address)
	assert.Equal(t, 200, cfg.Dataset.SampleSize)
	assert.Empty(t, cfg.TelegramBot.Token)
	assert.Empty(t, cfg.Storage.DBPath)
}

func TestNewManagerFullConfig(t *testing.T) {
	path := writeConfig(t, `
http_server:
  address: ":8080"
dataset:
  sample_size: 500
  preload_sample: true
report:
  save_dir: "/var/lib/hr_dashboard/reports"
telegram_bot:
  token: "123456:test-token"
  message: "Ежедневный HR-отчет"
daily_job:
  hour: 9
  minute: 30
storage:
  db_path: "/var/lib/hr_dashboard/chats.db"
`)

	m, err := NewManager(path, testLogger())
	require.NoError(t, err)

	cfg := m.Current()
	assert.Equal(t, "123456:test-token", cfg.TelegramBot.Token)
	assert.Equal(t, 9, cfg.DailyJob.Hour)
	assert.Equal(t, 30, cfg.DailyJob.Minute)
	assert.True(t, cfg.Dataset.PreloadSample)
	assert.Equal(t, "/var/lib/hr_dashboard/chats.db", cfg.Storage.DBPath)
}

func TestNewManagerRequiresServerAddress(t *testing.T) {
	path := writeConfig(t, `
report:
  save_dir: "/var/lib/hr_dashboard/reports"
`)

	_, err := NewManager(path, testLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}
