package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "FEED_UPDATER_CONFIG"
	feedOutputEnv    = "FEED_OUTPUT"
	archivePathEnv   = "ARCHIVE_PATH"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"

	defaultTimeoutSeconds = 30
	defaultMaxItems       = 200
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Fetch         FetchConfig        `yaml:"fetch"`
	Feed          FeedConfig         `yaml:"feed"`
	Archive       ArchiveConfig      `yaml:"archive"`
	Notifications NotificationConfig `yaml:"notifications"`
	Sites         []SiteConfig       `yaml:"sites"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FetchConfig describes the outbound HTTP behavior shared by scanners.
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	UserAgent      string `yaml:"userAgent"`
	AcceptLanguage string `yaml:"acceptLanguage"`
}

// Timeout resolves the configured fetch timeout as a duration.
func (f FetchConfig) Timeout() time.Duration {
	if f.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// FeedConfig defines the output document: where it lives and the channel
// metadata written on every run.
type FeedConfig struct {
	Output      string `yaml:"output"`
	MaxItems    int    `yaml:"maxItems"`
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
}

// ArchiveConfig points at the optional SQLite item archive.
// An empty path disables archiving.
type ArchiveConfig struct {
	Path string `yaml:"path"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SiteConfig describes a single page to scrape with its scanner strategy.
type SiteConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	URL     string            `yaml:"url"`
	BaseURL string            `yaml:"baseUrl"`
	Options map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. An empty path falls back to the FEED_UPDATER_CONFIG env var;
// missing or unreadable files revert to defaults with a logged notice.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(feedOutputEnv); v != "" {
		c.Feed.Output = v
	}

	if v := os.Getenv(archivePathEnv); v != "" {
		c.Archive.Path = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Fetch.TimeoutSeconds > 0 {
		base.Fetch.TimeoutSeconds = override.Fetch.TimeoutSeconds
	}
	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}
	if override.Fetch.AcceptLanguage != "" {
		base.Fetch.AcceptLanguage = override.Fetch.AcceptLanguage
	}

	if override.Feed.Output != "" {
		base.Feed.Output = override.Feed.Output
	}
	if override.Feed.MaxItems != 0 {
		base.Feed.MaxItems = override.Feed.MaxItems
	}
	if override.Feed.Title != "" {
		base.Feed.Title = override.Feed.Title
	}
	if override.Feed.Link != "" {
		base.Feed.Link = override.Feed.Link
	}
	if override.Feed.Description != "" {
		base.Feed.Description = override.Feed.Description
	}
	if override.Feed.Language != "" {
		base.Feed.Language = override.Feed.Language
	}

	if override.Archive.Path != "" {
		base.Archive = override.Archive
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Fetch: FetchConfig{
			TimeoutSeconds: defaultTimeoutSeconds,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			AcceptLanguage: "zh-HK,zh;q=0.9,en-US;q=0.8,en;q=0.7",
		},
		Feed: FeedConfig{
			Output:      "feed.xml",
			MaxItems:    defaultMaxItems,
			Title:       "Orange News - Commentaries",
			Link:        "https://www.orangenews.hk/html/topic/index.html",
			Description: "Latest commentaries from Orange News HK",
			Language:    "zh-cn",
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Sites: []SiteConfig{
			{
				Name:    "orangenews",
				Scanner: "orangenews",
				URL:     "https://www.orangenews.hk/html/topic/index.html",
				BaseURL: "https://www.orangenews.hk",
			},
		},
	}
}
