package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahfong-coder/fetch-orangenews/internal/domain"
	"github.com/ahfong-coder/fetch-orangenews/internal/ports"
)

// UpdaterDeps wires all driven adapters into the update pipeline.
type UpdaterDeps struct {
	Source   ports.ItemSource
	Store    ports.FeedStore
	Archive  ports.Archive
	Notifier ports.Notifier
	MaxItems int
	Now      func() time.Time
	Logger   *slog.Logger
}

// Updater implements the fetch-merge-write workflow for one invocation.
type Updater struct {
	source   ports.ItemSource
	store    ports.FeedStore
	archive  ports.Archive
	notifier ports.Notifier
	maxItems int
	now      func() time.Time
	logger   *slog.Logger
}

// NewUpdater constructs the orchestration component.
func NewUpdater(deps UpdaterDeps) *Updater {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Updater{
		source:   deps.Source,
		store:    deps.Store,
		archive:  deps.Archive,
		notifier: deps.Notifier,
		maxItems: deps.MaxItems,
		now:      now,
		logger:   deps.Logger,
	}
}

// Run executes a single feed update. Fetch and store failures abort before
// the output file is touched; finding no items is reported but not fatal.
func (u *Updater) Run(ctx context.Context) error {
	if u.source == nil || u.store == nil {
		return fmt.Errorf("updater is not fully wired")
	}

	items, err := u.source.FetchAll(ctx, u.now())
	if err != nil {
		return fmt.Errorf("fetch items: %w", err)
	}

	if len(items) == 0 {
		u.warn("no items extracted, feed left untouched")
		return nil
	}
	u.info("items extracted", "count", len(items))

	if u.archive != nil {
		items, err = u.dropArchived(ctx, items)
		if err != nil {
			return fmt.Errorf("consult archive: %w", err)
		}
	}

	feed, existed, err := u.store.Load()
	if err != nil {
		return fmt.Errorf("load feed: %w", err)
	}
	if !existed {
		u.info("no existing feed, starting fresh")
	}

	merged, added := feed.Merge(items, u.maxItems)

	if err := u.store.Write(merged); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	u.info("feed updated", "new_items", len(added), "total_items", len(merged.Items))

	// Archive only after the feed replace succeeded. Recording links first
	// would make a failed write permanent: the next run would treat the
	// never-published items as already seen and drop them.
	if u.archive != nil && len(added) > 0 {
		if err := u.archive.SaveItems(ctx, added); err != nil {
			return fmt.Errorf("archive items: %w", err)
		}
	}

	if u.notifier != nil && len(added) > 0 {
		if err := u.notifier.PublishDigest(ctx, buildDigest(added)); err != nil {
			u.warn("digest notification failed", "error", err)
		}
	}

	return nil
}

// dropArchived removes items whose links were archived on earlier runs,
// including ones the size cap already pushed out of the feed document.
func (u *Updater) dropArchived(ctx context.Context, items []domain.FeedItem) ([]domain.FeedItem, error) {
	links := make([]string, len(items))
	for i, item := range items {
		links[i] = item.Link
	}

	seen, err := u.archive.SeenLinks(ctx, links)
	if err != nil {
		return nil, err
	}

	fresh := items[:0]
	for _, item := range items {
		if seen[item.Link] {
			continue
		}
		fresh = append(fresh, item)
	}
	return fresh, nil
}

func buildDigest(items []domain.FeedItem) string {
	var formatted string
	for _, item := range items {
		formatted += fmt.Sprintf("- %s\n%s\n\n", item.Title, item.Link)
	}
	return formatted
}

func (u *Updater) info(msg string, args ...interface{}) {
	if u.logger != nil {
		u.logger.Info(msg, args...)
	}
}

func (u *Updater) warn(msg string, args ...interface{}) {
	if u.logger != nil {
		u.logger.Warn(msg, args...)
	}
}
