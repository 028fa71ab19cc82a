package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ahfong-coder/fetch-orangenews/internal/domain"
)

func openTestArchive(t *testing.T) *SQLiteArchive {
	t.Helper()

	archive, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() {
		if err := archive.Close(); err != nil {
			t.Errorf("close archive: %v", err)
		}
	})
	return archive
}

func archivedItem(link string) domain.FeedItem {
	return domain.FeedItem{
		Title:       "title " + link,
		Link:        link,
		Summary:     "summary",
		Source:      "orangenews",
		PublishedAt: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestArchiveSaveAndSeen(t *testing.T) {
	archive := openTestArchive(t)
	ctx := context.Background()

	err := archive.SaveItems(ctx, []domain.FeedItem{
		archivedItem("https://x/a"),
		archivedItem("https://x/b"),
	})
	if err != nil {
		t.Fatalf("save items: %v", err)
	}

	seen, err := archive.SeenLinks(ctx, []string{"https://x/a", "https://x/b", "https://x/c"})
	if err != nil {
		t.Fatalf("seen links: %v", err)
	}

	if !seen["https://x/a"] || !seen["https://x/b"] {
		t.Fatalf("expected a and b to be seen, got %v", seen)
	}
	if seen["https://x/c"] {
		t.Fatalf("c should not be seen")
	}
}

func TestArchiveSaveIsIdempotent(t *testing.T) {
	archive := openTestArchive(t)
	ctx := context.Background()

	items := []domain.FeedItem{archivedItem("https://x/a")}
	if err := archive.SaveItems(ctx, items); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := archive.SaveItems(ctx, items); err != nil {
		t.Fatalf("second save should not conflict: %v", err)
	}

	seen, err := archive.SeenLinks(ctx, []string{"https://x/a"})
	if err != nil {
		t.Fatalf("seen links: %v", err)
	}
	if !seen["https://x/a"] {
		t.Fatalf("expected a to be seen")
	}
}

func TestArchiveSeenLinksEmptyInput(t *testing.T) {
	archive := openTestArchive(t)

	seen, err := archive.SeenLinks(context.Background(), nil)
	if err != nil {
		t.Fatalf("seen links: %v", err)
	}
	if len(seen) != 0 {
		t.Fatalf("expected empty map, got %v", seen)
	}
}
