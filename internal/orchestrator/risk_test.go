package orchestrator

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/16bitOni/finance-brifer-agent/internal/dataflows"
	"github.com/16bitOni/finance-brifer-agent/internal/portfolio"
)

func historyFromCloses(closes []float64) []dataflows.Candle {
	history := make([]dataflows.Candle, len(closes))
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, close := range closes {
		history[i] = dataflows.Candle{
			Date:  day.AddDate(0, 0, i),
			Close: decimal.NewFromFloat(close),
		}
	}
	return history
}

func TestAnnualizedVolatility(t *testing.T) {
	closes := []float64{100, 105, 98, 102}
	// Daily returns: 0.05, -0.066666..., 0.040816...
	returns := []float64{5.0 / 100, -7.0 / 105, 4.0 / 98}
	mean := (returns[0] + returns[1] + returns[2]) / 3
	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= 3
	want := math.Sqrt(variance) * math.Sqrt(252)

	got, ok := AnnualizedVolatility(closes)
	if !ok {
		t.Fatal("expected volatility to be computable")
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("volatility = %f, want %f", got, want)
	}
}

func TestAnnualizedVolatilityTooFewCloses(t *testing.T) {
	if _, ok := AnnualizedVolatility([]float64{100}); ok {
		t.Error("single close should not yield a volatility")
	}
	if _, ok := AnnualizedVolatility(nil); ok {
		t.Error("empty history should not yield a volatility")
	}
}

func TestAssessRiskFlagsVolatileAndConcentrated(t *testing.T) {
	snap := portfolio.BuildSnapshot([]portfolio.Holding{
		{Symbol: "TSM", Shares: 200, AvgPrice: decimal.NewFromInt(100), Sector: "Technology", Region: "Asia"},
		{Symbol: "JPM", Shares: 50, AvgPrice: decimal.NewFromInt(140), Sector: "Financial", Region: "US"},
	}, decimal.Zero)

	market := map[string]*dataflows.MarketSnapshot{
		// Wild swings: clearly above the 30 percent annualized threshold.
		"TSM": {Symbol: "TSM", History: historyFromCloses([]float64{100, 130, 90, 125, 95})},
		// Nearly flat.
		"JPM": {Symbol: "JPM", History: historyFromCloses([]float64{140, 140.1, 140.05, 140.2})},
		// Too short to estimate, skipped silently.
		"XYZ": {Symbol: "XYZ", History: historyFromCloses([]float64{50})},
	}

	metrics := AssessRisk(snap, market)

	if len(metrics.HighRiskSymbols) != 1 || metrics.HighRiskSymbols[0] != "TSM" {
		t.Errorf("high risk symbols = %v, want [TSM]", metrics.HighRiskSymbols)
	}
	if _, ok := metrics.Volatility["XYZ"]; ok {
		t.Error("symbol with a single close should be skipped")
	}
	if _, ok := metrics.Volatility["JPM"]; !ok {
		t.Error("expected volatility estimate for JPM")
	}

	// Technology is 20000 of 27000, Asia likewise: both over threshold.
	if len(metrics.ConcentratedSectors) != 1 || metrics.ConcentratedSectors[0].Name != "Technology" {
		t.Errorf("concentrated sectors = %v, want Technology", metrics.ConcentratedSectors)
	}
	if len(metrics.ConcentratedRegions) != 1 || metrics.ConcentratedRegions[0].Name != "Asia" {
		t.Errorf("concentrated regions = %v, want Asia", metrics.ConcentratedRegions)
	}
}
