package feedstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahfong-coder/fetch-orangenews/internal/domain"
)

func channelMeta() domain.Feed {
	return domain.Feed{
		Title:       "Orange News - Commentaries",
		Link:        "https://www.orangenews.hk/html/topic/index.html",
		Description: "Latest commentaries from Orange News HK",
		Language:    "zh-cn",
	}
}

func sampleItems() []domain.FeedItem {
	return []domain.FeedItem{
		{
			Title:       "評論文章一",
			Link:        "https://www.orangenews.hk/html/2025/topic/111.html",
			Summary:     "評論文章一",
			PublishedAt: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC),
		},
		{
			Title:       "評論文章二",
			Link:        "https://www.orangenews.hk/html/2025/topic/222.html",
			Summary:     "評論文章二",
			PublishedAt: time.Date(2025, time.March, 9, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestRSSStoreLoadMissingFile(t *testing.T) {
	store := NewRSSStore(filepath.Join(t.TempDir(), "feed.xml"), channelMeta(), nil)

	feed, existed, err := store.Load()

	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, "Orange News - Commentaries", feed.Title)
	assert.Empty(t, feed.Items)
}

func TestRSSStoreWriteLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	store := NewRSSStore(path, channelMeta(), nil)

	feed := channelMeta()
	feed.Items = sampleItems()
	require.NoError(t, store.Write(feed))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "<?xml"), "output should start with XML declaration")
	assert.Contains(t, string(raw), `<rss version="2.0"`)
	assert.Contains(t, string(raw), `isPermaLink="true"`)
	assert.Contains(t, string(raw), "<language>zh-cn</language>")

	loaded, existed, err := store.Load()
	require.NoError(t, err)
	assert.True(t, existed)
	require.Len(t, loaded.Items, 2)

	for i, want := range feed.Items {
		assert.Equal(t, want.Title, loaded.Items[i].Title)
		assert.Equal(t, want.Link, loaded.Items[i].Link)
		assert.Equal(t, want.Summary, loaded.Items[i].Summary)
		assert.True(t, want.PublishedAt.Equal(loaded.Items[i].PublishedAt),
			"published time should round-trip, want %v got %v", want.PublishedAt, loaded.Items[i].PublishedAt)
	}
}

func TestRSSStoreWriteIsByteIdentical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	store := NewRSSStore(path, channelMeta(), nil)

	feed := channelMeta()
	feed.Items = sampleItems()

	require.NoError(t, store.Write(feed))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, store.Write(feed))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second, "rewriting the same feed must produce identical bytes")
}

func TestRSSStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	require.NoError(t, os.WriteFile(path, []byte("this is not a feed"), 0o644))

	store := NewRSSStore(path, channelMeta(), nil)
	_, _, err := store.Load()

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStore))
}

func TestRSSStoreWriteLeavesNoTempResidue(t *testing.T) {
	dir := t.TempDir()
	store := NewRSSStore(filepath.Join(dir, "feed.xml"), channelMeta(), nil)

	feed := channelMeta()
	feed.Items = sampleItems()
	require.NoError(t, store.Write(feed))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "feed.xml", entries[0].Name())
}

func TestRSSStoreWriteFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.xml")
	store := NewRSSStore(path, channelMeta(), nil)

	feed := channelMeta()
	feed.Items = sampleItems()
	require.NoError(t, store.Write(feed))
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	// Turning the target into a directory makes the rename fail after the
	// temp file was staged.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))
	err = store.Write(feed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStore))

	require.NoError(t, os.RemoveAll(path))
	require.NoError(t, os.WriteFile(path, original, 0o644))

	loaded, existed, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.True(t, existed)
	assert.Len(t, loaded.Items, 2)
}
