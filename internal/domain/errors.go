package domain

import "errors"

// Error classes adapters wrap so callers can distinguish failure modes
// with errors.Is without depending on adapter packages.
var (
	// ErrFetch marks network-level failures: connection errors, timeouts,
	// non-2xx responses. Fatal for the run, the feed file stays untouched.
	ErrFetch = errors.New("source fetch failed")

	// ErrParse marks content that could not be interpreted. Per-item parse
	// problems are logged and skipped instead of being wrapped in this.
	ErrParse = errors.New("content parse failed")

	// ErrStore marks failures reading or replacing the persisted feed.
	ErrStore = errors.New("feed store failed")
)
