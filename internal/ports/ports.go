package ports

import (
	"context"
	"time"

	"github.com/ahfong-coder/fetch-orangenews/internal/domain"
)

// ItemSource pulls fresh items from the configured upstream pages.
// ref is the reference time used for entries without a discoverable date.
type ItemSource interface {
	FetchAll(ctx context.Context, ref time.Time) ([]domain.FeedItem, error)
}

// FeedStore loads and atomically replaces the persisted feed document.
type FeedStore interface {
	// Load returns the stored feed and whether a document existed on disk.
	// When nothing exists yet the configured channel metadata is returned
	// with no items.
	Load() (domain.Feed, bool, error)
	Write(feed domain.Feed) error
}

// Archive persists every discovered item beyond the feed's size cap,
// so items that aged out of the document are not re-added later.
type Archive interface {
	SeenLinks(ctx context.Context, links []string) (map[string]bool, error)
	SaveItems(ctx context.Context, items []domain.FeedItem) error
}

// Notifier streams new-item digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}
