package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/16bitOni/finance-brifer-agent/internal/llm"
)

// companyNames maps symbols to names that read well aloud.
var companyNames = map[string]string{
	"AAPL":      "Apple",
	"MSFT":      "Microsoft",
	"GOOGL":     "Google",
	"AMZN":      "Amazon",
	"TSLA":      "Tesla",
	"META":      "Meta",
	"NVDA":      "Nvidia",
	"TSM":       "Taiwan Semiconductor",
	"ASML":      "ASML",
	"005930.KS": "Samsung Electronics",
	"9988.HK":   "Alibaba",
	"PDD":       "PDD Holdings",
	"BABA":      "Alibaba",
	"JD":        "JD dot com",
	"TCEHY":     "Tencent",
	"JPM":       "JPMorgan Chase",
	"BAC":       "Bank of America",
	"WFC":       "Wells Fargo",
	"GS":        "Goldman Sachs",
	"MS":        "Morgan Stanley",
	"JNJ":       "Johnson and Johnson",
	"PFE":       "Pfizer",
	"UNH":       "UnitedHealth",
	"CVX":       "Chevron",
	"XOM":       "ExxonMobil",
	"KO":        "Coca Cola",
	"PEP":       "PepsiCo",
	"WMT":       "Walmart",
	"HD":        "Home Depot",
	"V":         "Visa",
	"MA":        "Mastercard",
}

// FriendlyCompanyName converts a symbol into a name safe to read aloud.
// Unknown symbols keep their letters but lose punctuation that trips up
// speech synthesis.
func FriendlyCompanyName(symbol string) string {
	if name, ok := companyNames[symbol]; ok {
		return name
	}
	return strings.ReplaceAll(symbol, ".", " ")
}

// FormatCurrencyForSpeech renders a dollar amount the way it would be spoken.
func FormatCurrencyForSpeech(amount float64) string {
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("%.1f million dollars", amount/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("%.0f thousand dollars", amount/1_000)
	default:
		return fmt.Sprintf("%.0f dollars", amount)
	}
}

// FormatPercentForSpeech renders a signed percentage as spoken direction.
func FormatPercentForSpeech(percent float64) string {
	switch {
	case percent > 0:
		return fmt.Sprintf("up %.1f percent", percent)
	case percent < 0:
		return fmt.Sprintf("down %.1f percent", math.Abs(percent))
	default:
		return "unchanged"
	}
}

const ttsGuidelines = `CRITICAL SPEECH GUIDELINES:
- Use full company names from the symbol_names mapping, never stock symbols
- Spell out numbers, prices and currency clearly in speech-friendly form
- Write percentages as "percent" not "%", use "up" and "down" instead of "+" and "-"
- Use natural speech patterns with connecting words
- Avoid abbreviations, symbols, or technical formatting
- Keep it conversational and flowing

Your response will be converted to speech, so write exactly how you would speak out loud.`

var composerPrompts = map[Intent]string{
	IntentRiskExposure: `You are a friendly financial advisor speaking to a client.

` + ttsGuidelines + `

Provide a brief, natural response (2-3 sentences) about their portfolio risk exposure. Focus on:
- Current portfolio value using full dollar amounts in speech-friendly format
- Major allocation percentages in natural language
- Simple risk observation, mentioning any concentrated sectors or regions and volatile stocks

Example: "Your portfolio is worth three hundred thirty-four thousand dollars with about sixty-five percent in Asian technology stocks. The overall risk level looks moderate, though you have a couple of more volatile stocks. You might want to consider spreading things out a bit more across different sectors."`,

	IntentPortfolio: `You are a friendly financial advisor speaking to a client.

` + ttsGuidelines + `

The client asked about specific holdings. You have:
- requested_holdings: The specific stocks they asked about
- requested_value: Total value of those specific stocks
- total_portfolio_value: Their entire portfolio value
- symbol_names: Mapping of symbols to company names

Provide a brief, natural response (2-3 sentences) that includes:
- List the specific companies they asked about using full names, with "and" before the last
- The total value of those stocks in speech-friendly format
- What percentage of their total portfolio it represents

Example: "Your technology holdings include Apple, Microsoft, Taiwan Semiconductor, Samsung Electronics, Alibaba, and PDD Holdings. That's about two hundred forty-three thousand dollars worth of tech stocks, which makes up roughly seventy-three percent of your total three hundred thirty-four thousand dollar portfolio."`,

	IntentEarningsSurprise: `You are a friendly financial advisor speaking to a client.

` + ttsGuidelines + `

Provide a brief, natural response (2-3 sentences) about earnings surprises. Focus on:
- Which companies had notable earnings surprises using full names
- Brief impact or trend in conversational language
- One simple takeaway

Example: "Apple had a pleasant surprise with earnings coming in five point two percent higher than expected, while Microsoft was a bit disappointing at two percent below estimates. Overall, your tech holdings showed mixed results this quarter."`,

	IntentNews: `You are a friendly financial advisor speaking to a client.

` + ttsGuidelines + `

Provide a brief, natural response (2-3 sentences) about relevant news. Focus on:
- Key themes affecting their holdings using company names
- Brief impact or trend in simple language
- One practical takeaway

Example: "There's been quite a bit of positive news around Apple's new product launches and Microsoft's cloud business growth. Most of the headlines suggest your tech holdings are getting good attention from investors right now."`,

	IntentStock: `You are a friendly financial advisor speaking to a client.

` + ttsGuidelines + `

Provide a brief, natural response (2-3 sentences) about stock performance. Focus on:
- Current prices and changes for requested stocks using company names
- Brief trend or pattern in conversational language
- One simple observation

Example: "Apple is trading at one hundred fifty-two dollars and thirty cents, up about two point one percent today. Microsoft is at two hundred eighty-five dollars, down slightly by one point three percent."`,
}

const composerDefaultPrompt = `You are a friendly financial advisor speaking to a client.

` + ttsGuidelines + `

Provide a brief, natural response (2-3 sentences) about their query. Focus on:
- Key information they're asking about using natural language
- Brief analysis or trend in conversational terms
- One simple observation or suggestion`

const composerApology = "I apologize, but I'm having trouble analyzing your portfolio data right now."

// Composer turns collected answer data into a spoken reply.
type Composer struct {
	model llm.ChatModel
	log   *logrus.Entry
}

// NewComposer creates a composer. A nil model makes Compose fall back to the
// deterministic brief formatter.
func NewComposer(model llm.ChatModel) *Composer {
	return &Composer{
		model: model,
		log:   logrus.WithField("component", "composer"),
	}
}

// Compose produces the speech-friendly reply for an answer. Model failures
// degrade to the deterministic brief rather than surfacing an error.
func (c *Composer) Compose(ctx context.Context, answer *Answer) string {
	if c.model == nil {
		return FormatBrief(answer)
	}

	payload, err := json.MarshalIndent(c.analysisData(answer), "", "  ")
	if err != nil {
		c.log.Warnf("marshal analysis data: %v", err)
		return composerApology
	}

	prompt, ok := composerPrompts[answer.Intent]
	if !ok {
		prompt = composerDefaultPrompt
	}

	reply, err := llm.Complete(ctx, c.model, prompt,
		"Here is the data with company name mappings: "+string(payload))
	if err != nil {
		c.log.Warnf("compose reply: %v", err)
		return composerApology
	}
	return reply
}

// analysisData shapes the answer for the model. Portfolio queries get the
// filtered view with full-portfolio context; everything else gets the whole
// answer.
func (c *Composer) analysisData(answer *Answer) map[string]any {
	symbolNames := make(map[string]string)
	if answer.Portfolio != nil {
		for _, h := range answer.Portfolio.Holdings {
			symbolNames[h.Symbol] = FriendlyCompanyName(h.Symbol)
		}
	}
	if answer.Filtered != nil {
		for _, h := range answer.Filtered.Holdings {
			symbolNames[h.Symbol] = FriendlyCompanyName(h.Symbol)
		}
	}

	if answer.Intent == IntentPortfolio && answer.Filtered != nil && answer.Portfolio != nil {
		return map[string]any{
			"requested_holdings":    answer.Filtered.Holdings,
			"requested_value":       answer.Filtered.TotalValue,
			"total_portfolio_value": answer.Portfolio.TotalValue,
			"filters":               answer.Analysis.Filters,
			"intent":                answer.Intent,
			"symbol_names":          symbolNames,
		}
	}

	data := map[string]any{
		"intent":       answer.Intent,
		"symbol_names": symbolNames,
	}
	if answer.Portfolio != nil {
		data["portfolio"] = map[string]any{
			"total_value":        answer.Portfolio.TotalValue,
			"holdings":           answer.Portfolio.Holdings,
			"region_allocations": answer.Portfolio.RegionAllocations,
			"sector_allocations": answer.Portfolio.SectorAllocations,
		}
	}
	if answer.Filtered != nil {
		data["filtered_portfolio"] = answer.Filtered
	}
	if len(answer.Market) > 0 {
		data["stock"] = answer.Market
	}
	if len(answer.Earnings) > 0 {
		data["earnings"] = answer.Earnings
	}
	if answer.News != nil {
		data["news"] = answer.News
	}
	if len(answer.Metadata) > 0 {
		data["metadata"] = answer.Metadata
	}
	if answer.Risk != nil {
		data["risk"] = answer.Risk
	}
	return data
}

// FormatBrief renders an answer as a plain morning brief without the model.
func FormatBrief(answer *Answer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Morning Brief (%s):", time.Now().Format("January 2, 2006"))

	if answer.Filtered != nil && len(answer.Filtered.Holdings) > 0 {
		b.WriteString("\n\nHoldings:")
		for _, h := range answer.Filtered.Holdings {
			value, _ := h.Value().Float64()
			fmt.Fprintf(&b, "\n- %s: %d shares worth %s",
				FriendlyCompanyName(h.Symbol), h.Shares, FormatCurrencyForSpeech(value))
		}
		total, _ := answer.Filtered.TotalValue.Float64()
		fmt.Fprintf(&b, "\nTotal value: %s", FormatCurrencyForSpeech(total))
	}

	if answer.Risk != nil {
		b.WriteString("\n\nPortfolio Risk Exposure:")
		for _, flag := range answer.Risk.ConcentratedSectors {
			fmt.Fprintf(&b, "\n- High concentration in %s at %.1f percent", flag.Name, flag.Percent)
		}
		for _, flag := range answer.Risk.ConcentratedRegions {
			fmt.Fprintf(&b, "\n- High concentration in %s at %.1f percent", flag.Name, flag.Percent)
		}
		if len(answer.Risk.HighRiskSymbols) > 0 {
			b.WriteString("\n- Higher volatility stocks:")
			for _, symbol := range answer.Risk.HighRiskSymbols {
				fmt.Fprintf(&b, " %s.", FriendlyCompanyName(symbol))
			}
		}
	}

	if len(answer.Earnings) > 0 {
		b.WriteString("\n\nEarnings Surprises:")
		for _, symbol := range sortedSymbols(answer.Earnings) {
			report := answer.Earnings[symbol]
			if report == nil || len(report.Quarters) == 0 {
				continue
			}
			latest := report.Quarters[0]
			fmt.Fprintf(&b, "\n- %s: %s surprise in %s",
				FriendlyCompanyName(symbol), FormatPercentForSpeech(latest.SurprisePercent), latest.Period)
		}
	}

	if answer.News != nil && len(answer.News.Headlines) > 0 {
		b.WriteString("\n\nRelevant News:")
		headlines := answer.News.Headlines
		if len(headlines) > 3 {
			headlines = headlines[:3]
		}
		for _, headline := range headlines {
			fmt.Fprintf(&b, "\n- %s", headline)
		}
	}

	if len(answer.Market) > 0 {
		b.WriteString("\n\nMarket Prices:")
		for _, symbol := range sortedSymbols(answer.Market) {
			snap := answer.Market[symbol]
			if snap == nil {
				continue
			}
			fmt.Fprintf(&b, "\n- %s at %s, %s",
				FriendlyCompanyName(symbol), snap.Price.StringFixed(2), FormatPercentForSpeech(snap.ChangePercent))
		}
	}

	return b.String()
}

// sortedSymbols keeps brief sections in a stable order across runs.
func sortedSymbols[T any](m map[string]T) []string {
	symbols := make([]string, 0, len(m))
	for symbol := range m {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
