package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahfong-coder/fetch-orangenews/internal/config"
	"github.com/ahfong-coder/fetch-orangenews/internal/domain"
	"github.com/ahfong-coder/fetch-orangenews/internal/infrastructure/feedstore"
	"github.com/ahfong-coder/fetch-orangenews/internal/infrastructure/parser"
	"github.com/ahfong-coder/fetch-orangenews/internal/infrastructure/storage"
	"github.com/ahfong-coder/fetch-orangenews/internal/infrastructure/telegram"
	"github.com/ahfong-coder/fetch-orangenews/internal/logging"
	"github.com/ahfong-coder/fetch-orangenews/internal/scanner"
	"github.com/ahfong-coder/fetch-orangenews/internal/usecase"
)

// Application wires configs to the update pipeline and owned resources.
type Application struct {
	cfg     config.Config
	updater *usecase.Updater
	archive *storage.SQLiteArchive
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewOrangeScanner(nil, cfg.Fetch, baseLogger.With("component", "scanner.orangenews")))

	source := parser.NewStrategySource(registry, cfg.Sites, baseLogger.With("component", "source"))

	store := feedstore.NewRSSStore(cfg.Feed.Output, domain.Feed{
		Title:       cfg.Feed.Title,
		Link:        cfg.Feed.Link,
		Description: cfg.Feed.Description,
		Language:    cfg.Feed.Language,
	}, baseLogger.With("component", "feedstore"))

	deps := usecase.UpdaterDeps{
		Source:   source,
		Store:    store,
		MaxItems: cfg.Feed.MaxItems,
		Logger:   baseLogger.With("component", "updater"),
	}

	app := &Application{cfg: cfg}

	if cfg.Archive.Path != "" {
		archive, err := storage.Open(cfg.Archive.Path)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		app.archive = archive
		deps.Archive = archive
	}

	tg := cfg.Notifications.Telegram
	if tg.BotToken != "" && tg.ChatID != "" {
		deps.Notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	app.updater = usecase.NewUpdater(deps)
	return app, nil
}

// Run performs a single feed update.
func (a *Application) Run(ctx context.Context) error {
	return a.updater.Run(ctx)
}

// Close releases resources owned by the application.
func (a *Application) Close() error {
	if a.archive != nil {
		return a.archive.Close()
	}
	return nil
}
