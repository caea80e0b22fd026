package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"LayoffTracker/internal/config"
	"LayoffTracker/internal/domain"
	"LayoffTracker/internal/scanner"
)

// NewsAPIScanner runs free-text searches against the NewsAPI "everything" endpoint.
type NewsAPIScanner struct {
	client   *http.Client
	endpoint string
	apiKey   string
	language string
	sortBy   string
	pageSize int
	logger   *slog.Logger
}

// NewNewsAPIScanner wires an HTTP client; a nil client gets the configured timeout.
func NewNewsAPIScanner(client *http.Client, cfg config.NewsAPIConfig, logger *slog.Logger) *NewsAPIScanner {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	return &NewsAPIScanner{
		client:   client,
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		sortBy:   cfg.SortBy,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Name identifies the strategy inside the registry.
func (n *NewsAPIScanner) Name() string {
	return "newsapi"
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// Scan executes one query and returns the articles in response order.
func (n *NewsAPIScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if n.apiKey == "" {
		return nil, fmt.Errorf("NEWS_API_KEY is missing: %w", scanner.ErrMissingCredentials)
	}

	pageURL, err := n.buildSearchURL(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "LayoffTracker/1.0")

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request search: %w", err)
	}
	defer resp.Body.Close()

	var payload newsAPIResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("newsapi returned %s: decode body: %w", resp.Status, err)
	}

	if resp.StatusCode != http.StatusOK || payload.Status == "error" {
		return nil, fmt.Errorf("newsapi returned %s: %s %s", resp.Status, payload.Code, payload.Message)
	}

	articles := make([]domain.Article, 0, len(payload.Articles))
	for _, raw := range payload.Articles {
		articles = append(articles, n.toArticle(raw, req.SourceName))
	}
	return articles, nil
}

func (n *NewsAPIScanner) toArticle(raw newsAPIArticle, sourceName string) domain.Article {
	publishedAt := time.Now().UTC()
	if raw.PublishedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, raw.PublishedAt); err == nil {
			publishedAt = parsed.UTC()
		} else if n.logger != nil {
			n.logger.Debug("unparseable publishedAt", "url", raw.URL, "value", raw.PublishedAt)
		}
	}

	source := sourceName
	if raw.Source.Name != "" {
		source = fmt.Sprintf("%s/%s", sourceName, raw.Source.Name)
	}

	return domain.Article{
		Title:       PlainText(raw.Title),
		Description: PlainText(raw.Description),
		URL:         raw.URL,
		Source:      source,
		PublishedAt: publishedAt,
	}
}

func (n *NewsAPIScanner) buildSearchURL(req scanner.Request) (string, error) {
	parsed, err := url.Parse(n.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid newsapi endpoint %s: %w", n.endpoint, err)
	}

	language := optionOr(req.Options, "language", n.language)
	sortBy := optionOr(req.Options, "sortBy", n.sortBy)
	pageSize := optionOr(req.Options, "pageSize", strconv.Itoa(n.pageSize))

	query := parsed.Query()
	query.Set("q", req.Query)
	if sortBy != "" {
		query.Set("sortBy", sortBy)
	}
	if language != "" {
		query.Set("language", language)
	}
	query.Set("pageSize", pageSize)
	query.Set("apiKey", n.apiKey)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func optionOr(options map[string]string, key, fallback string) string {
	if v, ok := options[key]; ok && v != "" {
		return v
	}
	return fallback
}

// PlainText strips HTML markup and entities and collapses whitespace.
func PlainText(value string) string {
	if strings.ContainsAny(value, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(value)); err == nil {
			value = doc.Text()
		}
	}
	return strings.Join(strings.Fields(value), " ")
}
