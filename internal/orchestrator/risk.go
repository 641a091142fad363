package orchestrator

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/16bitOni/finance-brifer-agent/internal/dataflows"
	"github.com/16bitOni/finance-brifer-agent/internal/portfolio"
)

const (
	tradingDaysPerYear = 252

	highVolatilityThreshold      = 0.30
	sectorConcentrationThreshold = 30.0
	regionConcentrationThreshold = 40.0
)

// ConcentrationFlag marks an allocation bucket that exceeds its threshold.
type ConcentrationFlag struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// RiskMetrics summarizes portfolio risk: per-symbol annualized volatility,
// the symbols above the volatility threshold, and allocation buckets
// concentrated beyond their thresholds.
type RiskMetrics struct {
	SectorConcentration map[string]float64  `json:"sector_concentration"`
	RegionConcentration map[string]float64  `json:"region_concentration"`
	TotalValue          decimal.Decimal     `json:"total_value"`
	Volatility          map[string]float64  `json:"volatility"`
	HighRiskSymbols     []string            `json:"high_risk_symbols"`
	ConcentratedSectors []ConcentrationFlag `json:"concentrated_sectors"`
	ConcentratedRegions []ConcentrationFlag `json:"concentrated_regions"`
}

// AnnualizedVolatility computes the standard deviation of daily close-to-close
// returns scaled to one trading year. It returns false when fewer than two
// closes are available.
func AnnualizedVolatility(closes []float64) (float64, bool) {
	if len(closes) < 2 {
		return 0, false
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			return 0, false
		}
		returns = append(returns, (closes[i]-prev)/prev)
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear), true
}

// AssessRisk derives risk metrics from a portfolio snapshot and whatever
// market history was fetched for its symbols. Symbols with too little history
// are skipped rather than failing the assessment.
func AssessRisk(snap *portfolio.Snapshot, market map[string]*dataflows.MarketSnapshot) *RiskMetrics {
	log := logrus.WithField("component", "risk")

	metrics := &RiskMetrics{
		SectorConcentration: snap.SectorAllocations,
		RegionConcentration: snap.RegionAllocations,
		TotalValue:          snap.TotalValue,
		Volatility:          make(map[string]float64),
		HighRiskSymbols:     []string{},
	}

	for symbol, data := range market {
		if data == nil || len(data.History) < 2 {
			continue
		}
		closes := make([]float64, len(data.History))
		for i, candle := range data.History {
			closes[i], _ = candle.Close.Float64()
		}
		vol, ok := AnnualizedVolatility(closes)
		if !ok {
			continue
		}
		metrics.Volatility[symbol] = vol
		if vol > highVolatilityThreshold {
			metrics.HighRiskSymbols = append(metrics.HighRiskSymbols, symbol)
		}
	}
	sort.Strings(metrics.HighRiskSymbols)

	for sector, alloc := range snap.SectorAllocations {
		if alloc > sectorConcentrationThreshold {
			metrics.ConcentratedSectors = append(metrics.ConcentratedSectors, ConcentrationFlag{Name: sector, Percent: alloc})
			log.Warnf("high sector concentration in %s: %.1f%%", sector, alloc)
		}
	}
	for region, alloc := range snap.RegionAllocations {
		if alloc > regionConcentrationThreshold {
			metrics.ConcentratedRegions = append(metrics.ConcentratedRegions, ConcentrationFlag{Name: region, Percent: alloc})
			log.Warnf("high region concentration in %s: %.1f%%", region, alloc)
		}
	}
	sort.Slice(metrics.ConcentratedSectors, func(i, j int) bool {
		return metrics.ConcentratedSectors[i].Name < metrics.ConcentratedSectors[j].Name
	})
	sort.Slice(metrics.ConcentratedRegions, func(i, j int) bool {
		return metrics.ConcentratedRegions[i].Name < metrics.ConcentratedRegions[j].Name
	})

	return metrics
}
