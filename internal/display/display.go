// Package display renders query results for the terminal.
package display

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/16bitOni/finance-brifer-agent/internal/orchestrator"
	"github.com/16bitOni/finance-brifer-agent/internal/workflow"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	speechStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#10B981")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// Banner returns the application banner.
func Banner() string {
	return titleStyle.Render("FinBrief — your voice-ready portfolio briefing")
}

// RenderResult formats one processed query for the terminal.
func RenderResult(result *workflow.QueryResult) string {
	var b strings.Builder

	if result.Error != "" {
		b.WriteString(errorStyle.Render("Error: " + result.Error))
		b.WriteString("\n")
	}

	b.WriteString(speechStyle.Render(result.Speech))
	b.WriteString("\n")

	if result.Answer != nil {
		b.WriteString(renderAnswer(result.Answer))
	}

	if result.Answer != nil && result.Answer.Cached {
		b.WriteString(dimStyle.Render("(served from cache)"))
		b.WriteString("\n")
	}
	if len(result.Audio) > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("(audio reply: %d bytes)", len(result.Audio))))
		b.WriteString("\n")
	}

	return b.String()
}

func renderAnswer(answer *orchestrator.Answer) string {
	var b strings.Builder

	if answer.Filtered != nil && len(answer.Filtered.Holdings) > 0 {
		b.WriteString(sectionStyle.Render("Holdings"))
		b.WriteString("\n")
		for _, h := range answer.Filtered.Holdings {
			b.WriteString(fmt.Sprintf("  %-10s %6d shares @ %-10s %s / %s\n",
				h.Symbol, h.Shares, h.AvgPrice.StringFixed(2), h.Sector, h.Region))
		}
		b.WriteString(fmt.Sprintf("  Total value: %s\n", answer.Filtered.TotalValue.StringFixed(2)))
	}

	if len(answer.Market) > 0 {
		b.WriteString(sectionStyle.Render("Market"))
		b.WriteString("\n")
		for _, symbol := range sortedKeys(answer.Market) {
			snap := answer.Market[symbol]
			if snap == nil {
				continue
			}
			b.WriteString(fmt.Sprintf("  %-10s %10s  %s\n",
				symbol, snap.Price.StringFixed(2), orchestrator.FormatPercentForSpeech(snap.ChangePercent)))
		}
	}

	if len(answer.Earnings) > 0 {
		b.WriteString(sectionStyle.Render("Earnings"))
		b.WriteString("\n")
		for _, symbol := range sortedKeys(answer.Earnings) {
			report := answer.Earnings[symbol]
			if report == nil || len(report.Quarters) == 0 {
				continue
			}
			latest := report.Quarters[0]
			b.WriteString(fmt.Sprintf("  %-10s %s: actual %.2f vs estimate %.2f (%+.1f%% surprise)\n",
				symbol, latest.Period, latest.ActualEPS, latest.EstimateEPS, latest.SurprisePercent))
		}
	}

	if answer.News != nil && len(answer.News.Headlines) > 0 {
		b.WriteString(sectionStyle.Render("News"))
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (%s, %s)", answer.News.Source, answer.News.Sentiment)))
		b.WriteString("\n")
		headlines := answer.News.Headlines
		if len(headlines) > 5 {
			headlines = headlines[:5]
		}
		for _, headline := range headlines {
			b.WriteString("  - " + headline + "\n")
		}
	}

	if answer.Risk != nil {
		b.WriteString(sectionStyle.Render("Risk"))
		b.WriteString("\n")
		for _, flag := range answer.Risk.ConcentratedSectors {
			b.WriteString("  " + warnStyle.Render(fmt.Sprintf("sector %s at %.1f%%", flag.Name, flag.Percent)) + "\n")
		}
		for _, flag := range answer.Risk.ConcentratedRegions {
			b.WriteString("  " + warnStyle.Render(fmt.Sprintf("region %s at %.1f%%", flag.Name, flag.Percent)) + "\n")
		}
		for _, symbol := range sortedKeys(answer.Risk.Volatility) {
			b.WriteString(fmt.Sprintf("  %-10s annualized volatility %.1f%%\n", symbol, answer.Risk.Volatility[symbol]*100))
		}
		if len(answer.Risk.HighRiskSymbols) > 0 {
			b.WriteString("  " + warnStyle.Render("high volatility: "+strings.Join(answer.Risk.HighRiskSymbols, ", ")) + "\n")
		}
	}

	return b.String()
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
