// Package orchestrator turns a natural-language question into tool calls over
// the portfolio, market data, earnings and news sources, and composes the
// answers into a speech-friendly reply.
package orchestrator

import (
	"strings"

	"github.com/16bitOni/finance-brifer-agent/internal/portfolio"
)

// Intent labels what the user is asking for.
type Intent string

const (
	IntentRiskExposure     Intent = "risk_exposure"
	IntentEarningsSurprise Intent = "earnings_surprise"
	IntentPortfolio        Intent = "portfolio"
	IntentNews             Intent = "news"
	IntentMetadata         Intent = "metadata"
	IntentStock            Intent = "stock"
	IntentUnknown          Intent = "unknown"
)

// ParseIntent maps a string label to a known intent, defaulting to unknown.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentRiskExposure, IntentEarningsSurprise, IntentPortfolio,
		IntentNews, IntentMetadata, IntentStock:
		return Intent(strings.ToLower(strings.TrimSpace(s)))
	default:
		return IntentUnknown
	}
}

// QueryAnalysis is the structured interpretation of a query: what the user
// wants, which tools to run, and how to narrow the portfolio first.
type QueryAnalysis struct {
	Intent     Intent            `json:"intent"`
	Tools      []string          `json:"tools"`
	Filters    portfolio.Filters `json:"filters"`
	TimePeriod string            `json:"time_period"`
	Metrics    []string          `json:"metrics"`
}

// NeedsTool reports whether the analysis selected the named tool.
func (qa QueryAnalysis) NeedsTool(name string) bool {
	for _, t := range qa.Tools {
		if t == name {
			return true
		}
	}
	return false
}

// defaultAnalysis is used when neither the model nor keyword matching can
// interpret the query.
func defaultAnalysis() QueryAnalysis {
	return QueryAnalysis{
		Intent:     IntentPortfolio,
		Tools:      []string{"portfolio", "stock"},
		TimePeriod: "latest",
		Metrics:    []string{"price", "change"},
	}
}

// keywordAnalysis interprets a query with keyword matching alone. It is the
// fallback when the model returns something unparseable.
func keywordAnalysis(query string) QueryAnalysis {
	lower := strings.ToLower(query)

	qa := QueryAnalysis{
		TimePeriod: "latest",
		Metrics:    []string{"price", "change"},
	}

	switch {
	case containsAny(lower, "risk", "exposure", "concentration"):
		qa.Intent = IntentRiskExposure
		qa.Tools = []string{"portfolio", "risk", "stock"}
	case containsAny(lower, "earnings", "surprise", "report"):
		qa.Intent = IntentEarningsSurprise
		qa.Tools = []string{"earnings", "stock"}
	case containsAny(lower, "news", "headline", "update"):
		qa.Intent = IntentNews
		qa.Tools = []string{"news"}
	case containsAny(lower, "stock", "price", "market"):
		qa.Intent = IntentStock
		qa.Tools = []string{"stock"}
	default:
		qa.Intent = IntentPortfolio
		qa.Tools = []string{"portfolio"}
	}

	qa.Filters = keywordFilters(query)
	if containsAny(lower, "today") {
		qa.TimePeriod = "today"
	} else if containsAny(lower, "week") {
		qa.TimePeriod = "week"
	} else if containsAny(lower, "month") {
		qa.TimePeriod = "month"
	}

	return qa
}

func keywordFilters(query string) portfolio.Filters {
	lower := strings.ToLower(query)

	var f portfolio.Filters
	if strings.Contains(lower, "asia") {
		f.Regions = append(f.Regions, "Asia")
	}
	if strings.Contains(lower, "europe") {
		f.Regions = append(f.Regions, "Europe")
	}
	if strings.Contains(lower, "america") || containsWord(query, "US") {
		f.Regions = append(f.Regions, "US")
	}

	if strings.Contains(lower, "tech") {
		f.Sectors = append(f.Sectors, "Technology")
	}
	if strings.Contains(lower, "financ") {
		f.Sectors = append(f.Sectors, "Financial")
	}
	if strings.Contains(lower, "health") {
		f.Sectors = append(f.Sectors, "Healthcare")
	}

	// Uppercase words up to five characters are treated as ticker symbols.
	for _, word := range strings.Fields(query) {
		trimmed := strings.Trim(word, ".,!?")
		if trimmed == "US" || len(trimmed) == 0 || len(trimmed) > 5 {
			continue
		}
		if trimmed == strings.ToUpper(trimmed) && trimmed != strings.ToLower(trimmed) {
			f.Symbols = append(f.Symbols, trimmed)
		}
	}
	return f
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func containsWord(query, word string) bool {
	for _, w := range strings.Fields(query) {
		if strings.Trim(w, ".,!?") == word {
			return true
		}
	}
	return false
}
