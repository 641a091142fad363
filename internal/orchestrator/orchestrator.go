package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/16bitOni/finance-brifer-agent/internal/config"
	"github.com/16bitOni/finance-brifer-agent/internal/dataflows"
	"github.com/16bitOni/finance-brifer-agent/internal/llm"
	"github.com/16bitOni/finance-brifer-agent/internal/portfolio"
)

// portfolioQuery is the retrieval query used to pull holdings regardless of
// how the user phrased their question.
const portfolioQuery = "Get portfolio holdings and allocations"

const noDataMessage = "I couldn't find any holdings matching your question in your portfolio."

const defaultFetchTimeout = 15 * time.Second

// PortfolioSource provides the current portfolio snapshot.
type PortfolioSource interface {
	Retrieve(ctx context.Context, query string) (*portfolio.Snapshot, error)
}

// MarketSource provides quotes with trailing history.
type MarketSource interface {
	GetSnapshot(ctx context.Context, symbol string, days int) (*dataflows.MarketSnapshot, error)
}

// EarningsSource provides past reported quarters.
type EarningsSource interface {
	GetEarnings(ctx context.Context, symbol string, periods int) (*dataflows.EarningsReport, error)
}

// MetadataSource provides company profiles.
type MetadataSource interface {
	GetProfile(ctx context.Context, symbol string) (*dataflows.CompanyProfile, error)
}

// Sources bundles the data providers the orchestrator draws from. Nil entries
// disable the corresponding tool.
type Sources struct {
	Portfolio PortfolioSource
	Market    MarketSource
	Earnings  EarningsSource
	Metadata  MetadataSource
	News      dataflows.NewsSource
}

// Answer is everything collected and composed for one query.
type Answer struct {
	Query     string                                 `json:"query"`
	Intent    Intent                                 `json:"intent"`
	Analysis  QueryAnalysis                          `json:"analysis"`
	Portfolio *portfolio.Snapshot                    `json:"portfolio,omitempty"`
	Filtered  *portfolio.Snapshot                    `json:"filtered,omitempty"`
	Market    map[string]*dataflows.MarketSnapshot   `json:"market,omitempty"`
	Earnings  map[string]*dataflows.EarningsReport   `json:"earnings,omitempty"`
	Metadata  map[string]*dataflows.CompanyProfile   `json:"metadata,omitempty"`
	News      *dataflows.NewsDigest                  `json:"news,omitempty"`
	Risk      *RiskMetrics                           `json:"risk,omitempty"`
	Speech    string                                 `json:"speech"`
	Cached    bool                                   `json:"cached"`
}

// Orchestrator runs the full query pipeline: classify, retrieve, filter,
// fetch, assess, compose.
type Orchestrator struct {
	cfg        *config.Config
	classifier *Classifier
	composer   *Composer
	sources    Sources
	cache      *resultCache
	log        *logrus.Entry
}

// New creates an orchestrator. model may be nil, which disables both LLM
// classification and LLM composition in favor of the deterministic paths.
func New(cfg *config.Config, model llm.ChatModel, sources Sources) *Orchestrator {
	var cache *resultCache
	if cfg.CacheEnabled {
		cache = newResultCache(cfg.ResultCacheTTL)
	}
	return &Orchestrator{
		cfg:        cfg,
		classifier: NewClassifier(model),
		composer:   NewComposer(model),
		sources:    sources,
		cache:      cache,
		log:        logrus.WithField("component", "orchestrator"),
	}
}

// Process answers one query. Individual symbol fetch failures are logged and
// omitted from the answer; only portfolio retrieval failure is fatal.
func (o *Orchestrator) Process(ctx context.Context, query string) (*Answer, error) {
	analysis := o.classifier.Analyze(ctx, query)
	o.log.WithFields(logrus.Fields{
		"intent":  analysis.Intent,
		"tools":   analysis.Tools,
		"filters": analysis.Filters,
	}).Info("processing query")

	key := cacheKey(query, analysis.Filters)
	if cached, ok := o.cache.get(key); ok {
		o.log.Debug("serving answer from cache")
		hit := *cached
		hit.Cached = true
		return &hit, nil
	}

	if o.sources.Portfolio == nil {
		return nil, fmt.Errorf("no portfolio source configured")
	}
	snap, err := o.sources.Portfolio.Retrieve(ctx, portfolioQuery)
	if err != nil {
		return nil, fmt.Errorf("retrieve portfolio: %w", err)
	}
	filtered := snap.Filter(analysis.Filters)

	answer := &Answer{
		Query:     query,
		Intent:    analysis.Intent,
		Analysis:  analysis,
		Portfolio: snap,
		Filtered:  filtered,
	}

	symbols := analysis.Filters.Symbols
	if len(symbols) == 0 {
		symbols = filtered.Symbols
	}
	if len(symbols) == 0 {
		o.log.Warn("no symbols matched the query")
		answer.Speech = noDataMessage
		return answer, nil
	}

	if analysis.NeedsTool("stock") && o.sources.Market != nil {
		answer.Market = fetchPerSymbol(ctx, o, "stock", symbols,
			func(ctx context.Context, symbol string) (*dataflows.MarketSnapshot, error) {
				return o.sources.Market.GetSnapshot(ctx, symbol, o.cfg.HistoryDays)
			})
	}
	if analysis.NeedsTool("earnings") && o.sources.Earnings != nil {
		answer.Earnings = fetchPerSymbol(ctx, o, "earnings", symbols,
			func(ctx context.Context, symbol string) (*dataflows.EarningsReport, error) {
				return o.sources.Earnings.GetEarnings(ctx, symbol, o.cfg.EarningsPeriods)
			})
	}
	if analysis.NeedsTool("metadata") && o.sources.Metadata != nil {
		answer.Metadata = fetchPerSymbol(ctx, o, "metadata", symbols,
			func(ctx context.Context, symbol string) (*dataflows.CompanyProfile, error) {
				return o.sources.Metadata.GetProfile(ctx, symbol)
			})
	}
	if analysis.NeedsTool("news") && o.sources.News != nil {
		newsCtx, cancel := context.WithTimeout(ctx, o.fetchTimeout())
		digest, err := o.sources.News.GetNews(newsCtx, symbols)
		cancel()
		if err != nil {
			o.log.Warnf("news unavailable: %v", err)
		} else {
			answer.News = digest
		}
	}
	if analysis.NeedsTool("risk") {
		answer.Risk = AssessRisk(filtered, answer.Market)
	}

	answer.Speech = o.composer.Compose(ctx, answer)

	o.cache.set(key, answer)
	return answer, nil
}

// fetchTimeout returns the per-call fetch timeout, defaulting when the
// configured value would expire the context immediately.
func (o *Orchestrator) fetchTimeout() time.Duration {
	if o.cfg.FetchTimeout <= 0 {
		return defaultFetchTimeout
	}
	return o.cfg.FetchTimeout
}

// fetchPerSymbol fetches one value per symbol with bounded parallelism and a
// per-call timeout. Failed symbols are logged and left out; an empty map
// means every fetch failed.
func fetchPerSymbol[T any](ctx context.Context, o *Orchestrator, tool string, symbols []string,
	fetch func(ctx context.Context, symbol string) (T, error)) map[string]T {

	parallelism := o.cfg.FetchParallelism
	if parallelism <= 0 {
		parallelism = 1
	}
	timeout := o.fetchTimeout()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		sem     = make(chan struct{}, parallelism)
		results = make(map[string]T, len(symbols))
	)

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			value, err := fetch(callCtx, symbol)
			if err != nil {
				o.log.WithFields(logrus.Fields{
					"tool":   tool,
					"symbol": symbol,
				}).Warnf("fetch failed: %v", err)
				return
			}
			mu.Lock()
			results[symbol] = value
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	return results
}
