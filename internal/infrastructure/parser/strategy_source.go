package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"LayoffTracker/internal/config"
	"LayoffTracker/internal/domain"
	"LayoffTracker/internal/ports"
	"LayoffTracker/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sources.
func NewStrategySource(reg *scanner.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// FetchCandidates runs every configured query independently and concatenates
// the results in query order. A failing query is logged and contributes
// nothing; missing credentials abort the fetch.
func (s *StrategySource) FetchCandidates(ctx context.Context) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	var aggregated []domain.Article
	for _, source := range s.sources {
		strategy, err := s.registry.Resolve(source.Scanner)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", source.Name, err)
		}

		s.debug("process source", "source", source.Name, "scanner", source.Scanner, "queries", len(source.Queries))
		for i, query := range source.Queries {
			results, err := strategy.Scan(ctx, scanner.Request{
				SourceName: source.Name,
				Query:      query,
				Options:    source.Options,
			})
			if errors.Is(err, scanner.ErrMissingCredentials) {
				return nil, err
			}
			if err != nil {
				s.warn("query failed", "source", source.Name, "query_index", i, "error", err)
				continue
			}
			s.debug("query produced articles", "source", source.Name, "query_index", i, "count", len(results))
			aggregated = append(aggregated, results...)
		}
	}

	s.debug("strategy source done", "total_articles", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
