package domain

import "time"

// FeedItem is a core entity describing one syndicated entry.
// The link doubles as the item identity used for deduplication.
type FeedItem struct {
	Title       string
	Link        string
	Summary     string
	Source      string
	PublishedAt time.Time
}

// Feed is an ordered collection of items, most recent first, plus the
// channel metadata emitted into the RSS document.
type Feed struct {
	Title       string
	Link        string
	Description string
	Language    string
	Items       []FeedItem
}

// Merge folds freshly extracted items into the feed. Items whose link is
// already present are dropped; the rest are prepended in extraction order,
// keeping existing items in their relative order. When maxItems is positive
// the merged list is truncated to its newest maxItems entries.
// Returns the merged feed and the items that were actually added.
func (f Feed) Merge(incoming []FeedItem, maxItems int) (Feed, []FeedItem) {
	seen := make(map[string]struct{}, len(f.Items))
	for _, item := range f.Items {
		seen[item.Link] = struct{}{}
	}

	var added []FeedItem
	for _, item := range incoming {
		if _, ok := seen[item.Link]; ok {
			continue
		}
		seen[item.Link] = struct{}{}
		added = append(added, item)
	}

	merged := make([]FeedItem, 0, len(added)+len(f.Items))
	merged = append(merged, added...)
	merged = append(merged, f.Items...)
	if maxItems > 0 && len(merged) > maxItems {
		merged = merged[:maxItems]
	}

	out := f
	out.Items = merged
	return out, added
}
