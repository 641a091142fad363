package orchestrator

import (
	"context"
	"encoding/json"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/sirupsen/logrus"

	"github.com/16bitOni/finance-brifer-agent/internal/llm"
)

const classifierSystemPrompt = `You are a financial analyst assistant. Analyze the query and determine the required tools and filters.

Available tools:
- portfolio: For portfolio holdings and allocations
- stock: For current stock prices and market data
- earnings: For earnings surprises and reports
- news: For recent news and headlines
- risk: For risk metrics and exposure analysis
- metadata: For company profiles, sectors and market capitalization

Return ONLY a valid JSON object with this exact structure:
{
    "intent": "risk_exposure" | "earnings_surprise" | "portfolio" | "news" | "metadata" | "stock" | "unknown",
    "tools": ["tool1", "tool2"],
    "filters": {
        "regions": ["region1"],
        "sectors": ["sector1"],
        "symbols": ["symbol1"]
    },
    "time_period": "period",
    "metrics": ["metric1"]
}

Example for "Show me risk exposure in Asia tech stocks":
{
    "intent": "risk_exposure",
    "tools": ["portfolio", "risk", "stock"],
    "filters": {
        "regions": ["Asia"],
        "sectors": ["Technology"]
    },
    "time_period": "latest",
    "metrics": ["volatility", "concentration"]
}

Example for "What are the earnings surprises for tech stocks":
{
    "intent": "earnings_surprise",
    "tools": ["earnings", "stock"],
    "filters": {
        "sectors": ["Technology"]
    },
    "time_period": "latest",
    "metrics": ["eps", "surprise"]
}`

// Classifier interprets queries, preferring the language model and degrading
// to keyword matching when the model fails or answers with invalid JSON.
type Classifier struct {
	model llm.ChatModel
	log   *logrus.Entry
}

// NewClassifier creates a classifier over the given chat model. A nil model
// is allowed and routes everything through keyword matching.
func NewClassifier(model llm.ChatModel) *Classifier {
	return &Classifier{
		model: model,
		log:   logrus.WithField("component", "classifier"),
	}
}

// Analyze interprets the query. It never fails: any model or parsing problem
// falls back to keyword analysis, and an empty query yields the default.
func (c *Classifier) Analyze(ctx context.Context, query string) QueryAnalysis {
	if query == "" {
		return defaultAnalysis()
	}
	if c.model == nil {
		return keywordAnalysis(query)
	}

	content, err := llm.Complete(ctx, c.model, classifierSystemPrompt, "Query: "+query)
	if err != nil {
		c.log.Warnf("query classification failed, using keyword fallback: %v", err)
		return keywordAnalysis(query)
	}

	qa, err := parseAnalysis(content)
	if err != nil {
		c.log.Warnf("unparseable classification %q, using keyword fallback: %v", content, err)
		return keywordAnalysis(query)
	}

	c.log.WithFields(logrus.Fields{
		"intent": qa.Intent,
		"tools":  qa.Tools,
	}).Info("query classified")
	return qa
}

func parseAnalysis(content string) (QueryAnalysis, error) {
	var qa QueryAnalysis
	if err := json.Unmarshal([]byte(content), &qa); err != nil {
		repaired, repairErr := jsonrepair.RepairJSON(content)
		if repairErr != nil {
			return QueryAnalysis{}, err
		}
		if err := json.Unmarshal([]byte(repaired), &qa); err != nil {
			return QueryAnalysis{}, err
		}
	}

	qa.Intent = ParseIntent(string(qa.Intent))
	if len(qa.Tools) == 0 {
		qa.Tools = defaultAnalysis().Tools
	}
	if qa.TimePeriod == "" {
		qa.TimePeriod = "latest"
	}
	if len(qa.Metrics) == 0 {
		qa.Metrics = []string{"price", "change"}
	}
	return qa, nil
}
