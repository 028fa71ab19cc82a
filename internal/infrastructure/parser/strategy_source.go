package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahfong-coder/fetch-orangenews/internal/config"
	"github.com/ahfong-coder/fetch-orangenews/internal/domain"
	"github.com/ahfong-coder/fetch-orangenews/internal/ports"
	"github.com/ahfong-coder/fetch-orangenews/internal/scanner"
)

// StrategySource implements ItemSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.ItemSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// FetchAll iterates over configured sites and executes their scanners.
// A failing site aborts the whole run so the existing feed stays intact.
func (s *StrategySource) FetchAll(ctx context.Context, ref time.Time) ([]domain.FeedItem, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch all", "sites", len(s.sites))

	var aggregated []domain.FeedItem
	for _, site := range s.sites {
		s.debug("process site", "site", site.Name, "scanner", site.Scanner, "url", site.URL)
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		req := scanner.Request{
			Ref:      ref,
			SiteName: site.Name,
			URL:      site.URL,
			BaseURL:  site.BaseURL,
			Options:  site.Options,
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("scan site %s: %w", site.Name, err)
		}

		for i := range results {
			if results[i].Source == "" {
				results[i].Source = site.Name
			}
		}
		s.debug("site produced items", "site", site.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("strategy source done", "total_items", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
