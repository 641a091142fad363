package dataflows

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// NewsSource fetches a digest of recent headlines for a set of symbols.
type NewsSource interface {
	GetNews(ctx context.Context, symbols []string) (*NewsDigest, error)
}

// finnhubNewsSource adapts FinnhubClient's per-symbol company news to the
// NewsSource shape.
type finnhubNewsSource struct {
	client *FinnhubClient
	days   int
}

func (s *finnhubNewsSource) GetNews(ctx context.Context, symbols []string) (*NewsDigest, error) {
	return s.client.GetCompanyNews(ctx, symbols, s.days)
}

// FallbackNewsSource tries the primary source first and falls back to the
// secondary on any failure. Both failing yields a single aggregate error.
type FallbackNewsSource struct {
	primary   NewsSource
	secondary NewsSource
	log       *logrus.Entry
}

// NewFallbackNewsSource composes Marketaux as primary with Finnhub company
// news as fallback.
func NewFallbackNewsSource(marketaux *MarketauxClient, finnhub *FinnhubClient) *FallbackNewsSource {
	return &FallbackNewsSource{
		primary:   marketaux,
		secondary: &finnhubNewsSource{client: finnhub, days: 7},
		log:       logrus.WithField("source", "news"),
	}
}

// NewFallbackNewsSourceFrom composes arbitrary sources, used in tests.
func NewFallbackNewsSourceFrom(primary, secondary NewsSource) *FallbackNewsSource {
	return &FallbackNewsSource{
		primary:   primary,
		secondary: secondary,
		log:       logrus.WithField("source", "news"),
	}
}

// GetNews implements NewsSource.
func (f *FallbackNewsSource) GetNews(ctx context.Context, symbols []string) (*NewsDigest, error) {
	digest, primaryErr := f.primary.GetNews(ctx, symbols)
	if primaryErr == nil {
		return digest, nil
	}
	f.log.WithField("symbols", symbols).Warnf("primary news source failed, trying fallback: %v", primaryErr)

	digest, secondaryErr := f.secondary.GetNews(ctx, symbols)
	if secondaryErr == nil {
		return digest, nil
	}

	return nil, fmt.Errorf("failed to fetch news for %v from all sources: primary: %v; fallback: %v",
		symbols, primaryErr, secondaryErr)
}
