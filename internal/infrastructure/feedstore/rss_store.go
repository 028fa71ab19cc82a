package feedstore

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/feeds"
	"github.com/mmcdole/gofeed"

	"github.com/ahfong-coder/fetch-orangenews/internal/domain"
	"github.com/ahfong-coder/fetch-orangenews/internal/ports"
)

// RSSStore persists the feed as an RSS 2.0 document on disk.
// Channel metadata always comes from configuration, never from the stored
// file, so repeated runs serialize deterministically.
type RSSStore struct {
	path   string
	meta   domain.Feed
	logger *slog.Logger
}

var _ ports.FeedStore = (*RSSStore)(nil)

// NewRSSStore binds the store to an output path and channel metadata.
func NewRSSStore(path string, meta domain.Feed, logger *slog.Logger) *RSSStore {
	meta.Items = nil
	return &RSSStore{path: path, meta: meta, logger: logger}
}

// Load reads the previously written document and returns its items under
// the configured channel metadata. A missing file is not an error; an
// unparseable one is, since its items could not be preserved by a rewrite.
func (r *RSSStore) Load() (domain.Feed, bool, error) {
	feed := r.meta

	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return feed, false, nil
	}
	if err != nil {
		return domain.Feed{}, false, fmt.Errorf("%w: read %s: %v", domain.ErrStore, r.path, err)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return domain.Feed{}, false, fmt.Errorf("%w: existing feed %s is not parseable: %v", domain.ErrStore, r.path, err)
	}

	feed.Items = make([]domain.FeedItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		link := item.Link
		if link == "" {
			link = item.GUID
		}
		if link == "" {
			r.warn("dropping stored item without link", "title", item.Title)
			continue
		}

		var published time.Time
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		}

		feed.Items = append(feed.Items, domain.FeedItem{
			Title:       item.Title,
			Link:        link,
			Summary:     item.Description,
			PublishedAt: published,
		})
	}

	return feed, true, nil
}

// Write serializes the feed and replaces the output file atomically:
// the document is staged in a temp file next to the target and renamed
// into place only after a fully successful write.
func (r *RSSStore) Write(feed domain.Feed) error {
	out := &feeds.Feed{
		Title:       feed.Title,
		Link:        &feeds.Link{Href: feed.Link},
		Description: feed.Description,
		Updated:     newestItemTime(feed.Items),
	}

	for _, item := range feed.Items {
		out.Items = append(out.Items, &feeds.Item{
			Title:       item.Title,
			Link:        &feeds.Link{Href: item.Link},
			Description: item.Summary,
			Id:          item.Link,
			IsPermaLink: "true",
			Created:     item.PublishedAt,
		})
	}

	rss := (&feeds.Rss{Feed: out}).RssFeed()
	rss.Language = feed.Language

	var buf bytes.Buffer
	if err := feeds.WriteXML(rss, &buf); err != nil {
		return fmt.Errorf("%w: serialize feed: %v", domain.ErrStore, err)
	}
	buf.WriteByte('\n')

	if err := replaceFile(r.path, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	r.debug("feed written", "path", r.path, "items", len(feed.Items))
	return nil
}

// newestItemTime backs lastBuildDate. Deriving it from item timestamps
// instead of the wall clock keeps reruns over unchanged content
// byte-identical.
func newestItemTime(items []domain.FeedItem) time.Time {
	var newest time.Time
	for _, item := range items {
		if item.PublishedAt.After(newest) {
			newest = item.PublishedAt
		}
	}
	return newest
}

func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %v", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %v", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close %s: %v", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %v", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename %s to %s: %v", tmpPath, path, err)
	}
	return nil
}

func (r *RSSStore) warn(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}

func (r *RSSStore) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
