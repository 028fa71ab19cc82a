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
	cfg := Load("")

	assert.Equal(t, "feed.xml", cfg.Feed.Output)
	assert.Equal(t, 200, cfg.Feed.MaxItems)
	assert.Equal(t, "Orange News - Commentaries", cfg.Feed.Title)
	assert.Equal(t, "zh-cn", cfg.Feed.Language)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout())
	assert.Empty(t, cfg.Archive.Path)

	require.Len(t, cfg.Sites, 1)
	assert.Equal(t, "orangenews", cfg.Sites[0].Name)
	assert.Equal(t, "orangenews", cfg.Sites[0].Scanner)
	assert.Equal(t, "https://www.orangenews.hk", cfg.Sites[0].BaseURL)
}

func TestLoadFromFile(t *testing.T) {
	raw := `
logging:
  level: debug
fetch:
  timeoutSeconds: 10
feed:
  output: out/custom.xml
  maxItems: 50
archive:
  path: archive.db
sites:
  - name: example
    scanner: orangenews
    url: https://example.com/news
    baseUrl: https://example.com
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg := Load(path)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout())
	assert.Equal(t, "out/custom.xml", cfg.Feed.Output)
	assert.Equal(t, 50, cfg.Feed.MaxItems)
	assert.Equal(t, "archive.db", cfg.Archive.Path)

	// Fields the file does not mention keep their defaults.
	assert.Equal(t, "Orange News - Commentaries", cfg.Feed.Title)

	require.Len(t, cfg.Sites, 1)
	assert.Equal(t, "example", cfg.Sites[0].Name)
	assert.Equal(t, "https://example.com/news", cfg.Sites[0].URL)
}

func TestLoadPathFromEnv(t *testing.T) {
	raw := "feed:\n  output: env-feed.xml\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	t.Setenv("FEED_UPDATER_CONFIG", path)

	cfg := Load("")

	assert.Equal(t, "env-feed.xml", cfg.Feed.Output)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FEED_OUTPUT", "override.xml")
	t.Setenv("ARCHIVE_PATH", "override.db")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token123")
	t.Setenv("TELEGRAM_CHAT_ID", "chat456")

	cfg := Load("")

	assert.Equal(t, "override.xml", cfg.Feed.Output)
	assert.Equal(t, "override.db", cfg.Archive.Path)
	assert.Equal(t, "token123", cfg.Notifications.Telegram.BotToken)
	assert.Equal(t, "chat456", cfg.Notifications.Telegram.ChatID)
}

func TestLoadUnreadableFileFallsBack(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, "feed.xml", cfg.Feed.Output)
	require.Len(t, cfg.Sites, 1)
}
