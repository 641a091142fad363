package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/16bitOni/finance-brifer-agent/internal/config"
)

// YahooClient serves latest quotes and trailing daily history from Yahoo
// Finance.
type YahooClient struct {
	cache *CacheManager
	log   *logrus.Entry
}

// NewYahooClient creates a new Yahoo Finance client.
func NewYahooClient(cfg *config.Config) *YahooClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "yahoo_finance")
	cache := NewCacheManager(cacheDir, 24*time.Hour, cfg.CacheEnabled)

	return &YahooClient{
		cache: cache,
		log:   logrus.WithField("source", "yahoo"),
	}
}

// GetSnapshot returns the latest OHLCV for symbol plus a trailing window of
// daily closes covering the last `days` calendar days.
func (yc *YahooClient) GetSnapshot(ctx context.Context, symbol string, days int) (*MarketSnapshot, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	symbol = NormalizeSymbol(symbol)
	if days <= 0 {
		days = 30
	}

	cacheKey := map[string]interface{}{"symbol": symbol, "days": days}
	var cached MarketSnapshot
	if yc.cache.Get("yahoo", "snapshot", cacheKey, &cached) {
		return &cached, nil
	}

	var result *MarketSnapshot
	err := WithRetry(DefaultRetryConfig(), func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("failed to get quote for %s: %w", symbol, err)
		}
		if q == nil {
			return fmt.Errorf("no quote data for %s", symbol)
		}

		result = &MarketSnapshot{
			Symbol:        symbol,
			Date:          time.Now(),
			Price:         decimal.NewFromFloat(q.RegularMarketPrice),
			Open:          decimal.NewFromFloat(q.RegularMarketOpen),
			High:          decimal.NewFromFloat(q.RegularMarketDayHigh),
			Low:           decimal.NewFromFloat(q.RegularMarketDayLow),
			Volume:        int64(q.RegularMarketVolume),
			ChangePercent: q.RegularMarketChangePercent,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	history, err := yc.getHistory(symbol, days)
	if err != nil {
		// A snapshot without history is still useful for price queries;
		// risk estimation skips symbols with short history anyway.
		yc.log.WithField("symbol", symbol).Warnf("history unavailable: %v", err)
	} else {
		result.History = history
	}

	yc.cache.Set("yahoo", "snapshot", cacheKey, result)
	return result, nil
}

func (yc *YahooClient) getHistory(symbol string, days int) ([]Candle, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	var result []Candle
	err := WithRetry(DefaultRetryConfig(), func() error {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}

		iter := chart.Get(params)

		result = make([]Candle, 0)
		for iter.Next() {
			bar := iter.Bar()
			result = append(result, Candle{
				Date:   time.Unix(int64(bar.Timestamp), 0),
				Open:   bar.Open,
				High:   bar.High,
				Low:    bar.Low,
				Close:  bar.Close,
				Volume: int64(bar.Volume),
			})
		}

		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to get historical data for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
