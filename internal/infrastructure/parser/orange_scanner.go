package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/ahfong-coder/fetch-orangenews/internal/config"
	"github.com/ahfong-coder/fetch-orangenews/internal/domain"
	"github.com/ahfong-coder/fetch-orangenews/internal/scanner"
)

const minTitleRunes = 5

var dateExpr = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Navigation labels that show up as anchors on every page and never
// point at an article.
var navigationLabels = map[string]struct{}{
	"查看更多": {},
	"下載APP": {},
	"登入":   {},
	"首頁":   {},
}

// OrangeScanner extracts article entries from Orange News listing pages.
// The layout carries no semantic item markup, so it walks every anchor
// and keeps the ones that look like article links.
type OrangeScanner struct {
	client         *http.Client
	logger         *slog.Logger
	userAgent      string
	acceptLanguage string
}

// NewOrangeScanner wires an HTTP client configured per fetch settings.
func NewOrangeScanner(client *http.Client, cfg config.FetchConfig, logger *slog.Logger) *OrangeScanner {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}
	return &OrangeScanner{
		client:         client,
		logger:         logger,
		userAgent:      cfg.UserAgent,
		acceptLanguage: cfg.AcceptLanguage,
	}
}

// Name identifies the strategy inside the registry.
func (o *OrangeScanner) Name() string {
	return "orangenews"
}

// Scan fetches the listing page and returns the extracted items in page
// order. Entries that cannot be interpreted are skipped with a warning.
func (o *OrangeScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.FeedItem, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no url provided for site %s", req.SiteName)
	}

	if req.BaseURL == "" {
		return nil, fmt.Errorf("no base url provided for site %s", req.SiteName)
	}
	base, err := url.Parse(req.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("site %s: invalid base url %q: %w", req.SiteName, req.BaseURL, err)
	}

	doc, err := o.fetchDocument(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", req.SiteName, err)
	}

	return o.extractItems(doc, base, req), nil
}

func (o *OrangeScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if o.userAgent != "" {
		req.Header.Set("User-Agent", o.userAgent)
	}
	if o.acceptLanguage != "" {
		req.Header.Set("Accept-Language", o.acceptLanguage)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request %s: %v", domain.ErrFetch, pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", domain.ErrFetch, pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse document: %v", domain.ErrParse, err)
	}

	return doc, nil
}

func (o *OrangeScanner) extractItems(doc *goquery.Document, base *url.URL, req scanner.Request) []domain.FeedItem {
	var items []domain.FeedItem
	seen := map[string]struct{}{}

	doc.Find("a").Each(func(i int, link *goquery.Selection) {
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}
		if _, nav := navigationLabels[title]; nav {
			return
		}
		if utf8.RuneCountInString(title) < minTitleRunes {
			return
		}

		href, ok := link.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" || href == "#" {
			return
		}

		if !strings.HasPrefix(href, "http") {
			rel, err := url.Parse(href)
			if err != nil {
				o.warn("skipping entry with unparseable href", "href", href, "title", title, "error", err)
				return
			}
			href = base.ResolveReference(rel).String()
		}

		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}

		items = append(items, domain.FeedItem{
			Title:       title,
			Link:        href,
			Summary:     title,
			Source:      req.SiteName,
			PublishedAt: publishedAt(link, req.Ref),
		})
	})

	return items
}

// publishedAt looks for a yyyy-mm-dd date in the anchor's ancestors
// (up to five levels) and normalizes it to noon UTC of that day. Entries
// without a discoverable date fall back to the run's reference time.
func publishedAt(link *goquery.Selection, ref time.Time) time.Time {
	parent := link.Parent()
	for depth := 0; depth < 5 && parent.Length() > 0; depth++ {
		if match := dateExpr.FindString(parent.Text()); match != "" {
			if day, err := time.Parse("2006-01-02", match); err == nil {
				return time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.UTC)
			}
		}
		parent = parent.Parent()
	}
	return ref.UTC()
}

func (o *OrangeScanner) warn(msg string, args ...interface{}) {
	if o.logger != nil {
		o.logger.Warn(msg, args...)
	}
}
