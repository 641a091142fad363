package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/16bitOni/finance-brifer-agent/internal/config"
)

// FinnhubClient handles Finnhub API operations: earnings surprises, company
// metadata and fallback company news.
type FinnhubClient struct {
	client *resty.Client
	cache  *CacheManager
	apiKey string
}

// NewFinnhubClient creates a new Finnhub client.
func NewFinnhubClient(cfg *config.Config) *FinnhubClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "finnhub")
	cache := NewCacheManager(cacheDir, 6*time.Hour, cfg.CacheEnabled)

	client := resty.New()
	client.SetBaseURL("https://finnhub.io/api/v1")
	client.SetTimeout(30 * time.Second)

	return &FinnhubClient{
		client: client,
		cache:  cache,
		apiKey: cfg.FinnhubAPIKey,
	}
}

// SetBaseURL overrides the API endpoint, used in tests.
func (fc *FinnhubClient) SetBaseURL(url string) {
	fc.client.SetBaseURL(url)
}

type finnhubEarnings struct {
	Actual          float64 `json:"actual"`
	Estimate        float64 `json:"estimate"`
	Period          string  `json:"period"`
	Quarter         int     `json:"quarter"`
	SurprisePercent float64 `json:"surprisePercent"`
	Symbol          string  `json:"symbol"`
	Year            int     `json:"year"`
}

// GetEarnings returns up to `periods` past quarters of actual vs estimated
// EPS for a symbol.
func (fc *FinnhubClient) GetEarnings(ctx context.Context, symbol string, periods int) (*EarningsReport, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("Finnhub API key not configured")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	symbol = NormalizeSymbol(symbol)
	if periods <= 0 {
		periods = 4
	}

	cacheKey := map[string]interface{}{"symbol": symbol, "periods": periods}
	var cached EarningsReport
	if fc.cache.Get("finnhub", "earnings", cacheKey, &cached) {
		return &cached, nil
	}

	var result *EarningsReport
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := fc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"symbol": symbol,
				"token":  fc.apiKey,
			}).
			Get("/stock/earnings")

		if err != nil {
			return fmt.Errorf("failed to fetch earnings for %s: %w", symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
		}

		var quarters []finnhubEarnings
		if err := json.Unmarshal(resp.Body(), &quarters); err != nil {
			return fmt.Errorf("failed to parse earnings response: %w", err)
		}

		if len(quarters) > periods {
			quarters = quarters[:periods]
		}

		result = &EarningsReport{Symbol: symbol}
		for _, q := range quarters {
			result.Quarters = append(result.Quarters, EarningsQuarter{
				Period:          q.Period,
				ActualEPS:       q.Actual,
				EstimateEPS:     q.Estimate,
				SurprisePercent: q.SurprisePercent,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.Quarters) == 0 {
		return nil, fmt.Errorf("no earnings data available for %s", symbol)
	}

	fc.cache.Set("finnhub", "earnings", cacheKey, result)
	return result, nil
}

type finnhubProfile struct {
	Country              string  `json:"country"`
	Currency             string  `json:"currency"`
	Exchange             string  `json:"exchange"`
	FinnhubIndustry      string  `json:"finnhubIndustry"`
	MarketCapitalization float64 `json:"marketCapitalization"`
	Name                 string  `json:"name"`
	Ticker               string  `json:"ticker"`
	WebURL               string  `json:"weburl"`
}

// GetProfile returns company metadata for a symbol.
func (fc *FinnhubClient) GetProfile(ctx context.Context, symbol string) (*CompanyProfile, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("Finnhub API key not configured")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	symbol = NormalizeSymbol(symbol)

	var cached CompanyProfile
	if fc.cache.Get("finnhub", "profile", symbol, &cached) {
		return &cached, nil
	}

	var result *CompanyProfile
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := fc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"symbol": symbol,
				"token":  fc.apiKey,
			}).
			Get("/stock/profile2")

		if err != nil {
			return fmt.Errorf("failed to fetch profile for %s: %w", symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
		}

		var profile finnhubProfile
		if err := json.Unmarshal(resp.Body(), &profile); err != nil {
			return fmt.Errorf("failed to parse profile response: %w", err)
		}
		if profile.Name == "" {
			return fmt.Errorf("no profile data for %s", symbol)
		}

		// Finnhub reports market cap in millions.
		marketCap := decimal.NewFromFloat(profile.MarketCapitalization).
			Mul(decimal.NewFromInt(1_000_000))

		result = &CompanyProfile{
			Symbol:    symbol,
			Name:      profile.Name,
			Sector:    profile.FinnhubIndustry,
			Industry:  profile.FinnhubIndustry,
			Country:   profile.Country,
			MarketCap: marketCap,
			Currency:  profile.Currency,
			Exchange:  profile.Exchange,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fc.cache.Set("finnhub", "profile", symbol, result)
	return result, nil
}

type finnhubNews struct {
	Category string `json:"category"`
	DateTime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// GetCompanyNews returns a digest of recent headlines for the given symbols.
// Finnhub carries no sentiment, so the digest sentiment is always neutral.
func (fc *FinnhubClient) GetCompanyNews(ctx context.Context, symbols []string, days int) (*NewsDigest, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("Finnhub API key not configured")
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol is required")
	}
	if days <= 0 {
		days = 7
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	digest := &NewsDigest{Sentiment: "Neutral", Source: "finnhub"}
	eventSeen := map[string]bool{}

	for _, symbol := range symbols {
		if err := ValidateSymbol(symbol); err != nil {
			continue
		}
		symbol = NormalizeSymbol(symbol)

		var articles []finnhubNews
		err := WithRetry(DefaultRetryConfig(), func() error {
			resp, err := fc.client.R().
				SetContext(ctx).
				SetQueryParams(map[string]string{
					"symbol": symbol,
					"from":   start.Format("2006-01-02"),
					"to":     end.Format("2006-01-02"),
					"token":  fc.apiKey,
				}).
				Get("/company-news")

			if err != nil {
				return fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
			}
			return json.Unmarshal(resp.Body(), &articles)
		})
		if err != nil {
			continue
		}

		for _, article := range articles {
			if article.Headline == "" {
				continue
			}
			digest.Headlines = append(digest.Headlines, article.Headline)
			if article.Category != "" && !eventSeen[article.Category] {
				eventSeen[article.Category] = true
				digest.Events = append(digest.Events, article.Category)
			}
		}
	}

	if len(digest.Headlines) == 0 {
		return nil, fmt.Errorf("no news found for %v", symbols)
	}
	return digest, nil
}
