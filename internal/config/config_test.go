package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, serverAddrEnv, databaseDSNEnv,
		openAIAPIKeyEnv, openAIModelEnv, telegramTokenEnv, telegramChatIDEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "06:00", cfg.Scheduler.IngestAt)
	require.Equal(t, "Sunday", cfg.Scheduler.CleanupDay)
	require.Equal(t, "02:00", cfg.Scheduler.CleanupAt)
	require.Equal(t, "Asia/Kolkata", cfg.Scheduler.Location().String())

	require.Equal(t, 8, cfg.Pipeline.PerFeedLimit)
	require.Equal(t, 5, cfg.Pipeline.BatchSize)
	require.Equal(t, 2*time.Second, cfg.Pipeline.BatchDelay())
	require.Equal(t, 3, cfg.Pipeline.MaxMCQs)
	require.Equal(t, 3, cfg.Pipeline.MaxFlashcards)
	require.Equal(t, 200, cfg.Pipeline.MaxSummaryLength)
	require.Equal(t, 100, cfg.Pipeline.MinContentLength)
	require.Equal(t, 2, cfg.Pipeline.ImportanceThreshold)
	require.Equal(t, 30, cfg.Pipeline.RetentionDays)
	require.NotEmpty(t, cfg.Pipeline.ImportantKeywords)
	require.NotEmpty(t, cfg.Pipeline.ImportantTitleKeywords)

	require.Len(t, cfg.Sources, 2)
	require.Equal(t, "The Hindu", cfg.Sources[0].Name)
	require.Len(t, cfg.Extraction, 2)
	require.Equal(t, "thehindu.com", cfg.Extraction[0].Match)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(serverAddrEnv, "127.0.0.1:9999")
	t.Setenv(databaseDSNEnv, "postgres://override")
	t.Setenv(openAIAPIKeyEnv, "sk-test")
	t.Setenv(openAIModelEnv, "gpt-4o")
	t.Setenv(telegramTokenEnv, "bot-token")
	t.Setenv(telegramChatIDEnv, "chat-42")

	cfg := Load()

	require.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	require.Equal(t, "postgres://override", cfg.Database.DSN)
	require.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	require.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	require.Equal(t, "bot-token", cfg.Notifications.Telegram.BotToken)
	require.Equal(t, "chat-42", cfg.Notifications.Telegram.ChatID)
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	raw := `
server:
  addr: "0.0.0.0:9000"
logging:
  level: debug
scheduler:
  timezone: UTC
  ingestAt: "07:30"
pipeline:
  batchSize: 10
  retentionDays: 14
sources:
  - name: Custom
    feeds:
      - label: main
        url: https://example.com/rss
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	t.Setenv(configPathEnv, path)

	cfg := Load()

	require.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "07:30", cfg.Scheduler.IngestAt)
	require.Equal(t, "UTC", cfg.Scheduler.Location().String())

	// Partial overrides keep the remaining defaults.
	require.Equal(t, 10, cfg.Pipeline.BatchSize)
	require.Equal(t, 14, cfg.Pipeline.RetentionDays)
	require.Equal(t, 8, cfg.Pipeline.PerFeedLimit)

	require.Len(t, cfg.Sources, 1)
	require.Equal(t, "Custom", cfg.Sources[0].Name)
}

func TestLoadUnknownTimezoneFallsBack(t *testing.T) {
	clearEnv(t)

	raw := "scheduler:\n  timezone: Mars/Olympus\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	t.Setenv(configPathEnv, path)

	cfg := Load()
	require.Equal(t, "Asia/Kolkata", cfg.Scheduler.Location().String())
}

func TestLoadUnreadableFileFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
}
