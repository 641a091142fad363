package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/16bitOni/finance-brifer-agent/internal/config"
)

// MarketauxClient is the primary news source. It carries per-article
// sentiment and entity-tagged events, which Finnhub lacks.
type MarketauxClient struct {
	client *resty.Client
	cache  *CacheManager
	apiKey string
}

// NewMarketauxClient creates a new Marketaux client.
func NewMarketauxClient(cfg *config.Config) *MarketauxClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "marketaux")
	cache := NewCacheManager(cacheDir, 30*time.Minute, cfg.CacheEnabled)

	client := resty.New()
	client.SetBaseURL("https://api.marketaux.com/v1")
	client.SetTimeout(30 * time.Second)

	return &MarketauxClient{
		client: client,
		cache:  cache,
		apiKey: cfg.MarketauxAPIKey,
	}
}

// SetBaseURL overrides the API endpoint, used in tests.
func (mc *MarketauxClient) SetBaseURL(url string) {
	mc.client.SetBaseURL(url)
}

type marketauxEntity struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type marketauxArticle struct {
	Title     string            `json:"title"`
	Sentiment string            `json:"sentiment"`
	Entities  []marketauxEntity `json:"entities"`
}

type marketauxResponse struct {
	Data []marketauxArticle `json:"data"`
}

// GetNews returns a digest of recent headlines for the given symbols.
func (mc *MarketauxClient) GetNews(ctx context.Context, symbols []string) (*NewsDigest, error) {
	if mc.apiKey == "" {
		return nil, fmt.Errorf("Marketaux API key not configured")
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol is required")
	}

	normalized := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if err := ValidateSymbol(symbol); err == nil {
			normalized = append(normalized, NormalizeSymbol(symbol))
		}
	}
	if len(normalized) == 0 {
		return nil, fmt.Errorf("no valid symbols in %v", symbols)
	}

	cacheKey := strings.Join(normalized, ",")
	var cached NewsDigest
	if mc.cache.Get("marketaux", "news", cacheKey, &cached) {
		return &cached, nil
	}

	var result *NewsDigest
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := mc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"api_token": mc.apiKey,
				"symbols":   cacheKey,
				"limit":     "10",
				"language":  "en",
			}).
			Get("/news/all")

		if err != nil {
			return fmt.Errorf("failed to fetch news for %s: %w", cacheKey, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
		}

		var payload marketauxResponse
		if err := json.Unmarshal(resp.Body(), &payload); err != nil {
			return fmt.Errorf("failed to parse news response: %w", err)
		}
		if len(payload.Data) == 0 {
			return fmt.Errorf("empty news payload for %s", cacheKey)
		}

		result = digestFromMarketaux(payload.Data)
		return nil
	})
	if err != nil {
		return nil, err
	}

	mc.cache.Set("marketaux", "news", cacheKey, result)
	return result, nil
}

func digestFromMarketaux(articles []marketauxArticle) *NewsDigest {
	digest := &NewsDigest{Source: "marketaux"}
	eventSeen := map[string]bool{}

	var sentiments []string
	for _, article := range articles {
		if article.Title != "" {
			digest.Headlines = append(digest.Headlines, article.Title)
		}
		if article.Sentiment != "" {
			sentiments = append(sentiments, article.Sentiment)
		}
		for _, entity := range article.Entities {
			if entity.Type == "event" && entity.Name != "" && !eventSeen[entity.Name] {
				eventSeen[entity.Name] = true
				digest.Events = append(digest.Events, entity.Name)
			}
		}
	}

	digest.Sentiment = overallSentiment(sentiments)
	return digest
}

func overallSentiment(sentiments []string) string {
	if len(sentiments) == 0 {
		return "Neutral"
	}

	var positive, negative int
	for _, s := range sentiments {
		switch strings.ToLower(s) {
		case "positive":
			positive++
		case "negative":
			negative++
		}
	}

	switch {
	case positive > negative:
		return "Positive"
	case negative > positive:
		return "Negative"
	default:
		return "Neutral"
	}
}
