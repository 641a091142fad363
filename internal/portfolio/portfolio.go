// Package portfolio retrieves the user's holdings from the document store and
// derives value and allocation views over them.
package portfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCash is assumed when the stored portfolio documents carry no cash
// balance of their own.
var DefaultCash = decimal.NewFromInt(50000)

// Holding is one position in the portfolio.
type Holding struct {
	Symbol   string          `json:"symbol"`
	Shares   int             `json:"shares"`
	AvgPrice decimal.Decimal `json:"avg_price"`
	Sector   string          `json:"sector"`
	Region   string          `json:"region"`
}

// Value returns shares times average price.
func (h Holding) Value() decimal.Decimal {
	return h.AvgPrice.Mul(decimal.NewFromInt(int64(h.Shares)))
}

// Filters narrows a snapshot to holdings matching every non-empty dimension.
// An empty dimension places no constraint.
type Filters struct {
	Regions []string `json:"regions,omitempty"`
	Sectors []string `json:"sectors,omitempty"`
	Symbols []string `json:"symbols,omitempty"`
}

// Empty reports whether no dimension carries a constraint.
func (f Filters) Empty() bool {
	return len(f.Regions) == 0 && len(f.Sectors) == 0 && len(f.Symbols) == 0
}

func (f Filters) matches(h Holding) bool {
	if len(f.Symbols) > 0 && !contains(f.Symbols, h.Symbol) {
		return false
	}
	if len(f.Regions) > 0 && !contains(f.Regions, h.Region) {
		return false
	}
	if len(f.Sectors) > 0 && !contains(f.Sectors, h.Sector) {
		return false
	}
	return true
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

// Snapshot is the derived view of a set of holdings: total value, the symbols
// present and allocation percentages by region and sector.
type Snapshot struct {
	Symbols           []string           `json:"symbols"`
	Holdings          []Holding          `json:"holdings"`
	RegionAllocations map[string]float64 `json:"region_allocations"`
	SectorAllocations map[string]float64 `json:"sector_allocations"`
	TotalValue        decimal.Decimal    `json:"total_value"`
	Cash              decimal.Decimal    `json:"cash"`
	Timestamp         time.Time          `json:"timestamp"`
}

// BuildSnapshot computes total value and allocation percentages for the given
// holdings plus a cash balance. Allocation shares use the cash-inclusive total
// as denominator. A zero total yields empty allocation maps.
func BuildSnapshot(holdings []Holding, cash decimal.Decimal) *Snapshot {
	snap := &Snapshot{
		Symbols:           make([]string, 0, len(holdings)),
		Holdings:          holdings,
		RegionAllocations: make(map[string]float64),
		SectorAllocations: make(map[string]float64),
		Cash:              cash,
		Timestamp:         time.Now(),
	}

	total := cash
	regionValues := make(map[string]decimal.Decimal)
	sectorValues := make(map[string]decimal.Decimal)
	for _, h := range holdings {
		if h.Symbol == "" {
			continue
		}
		snap.Symbols = append(snap.Symbols, h.Symbol)
		value := h.Value()
		total = total.Add(value)
		if h.Region != "" {
			regionValues[h.Region] = regionValues[h.Region].Add(value)
		}
		if h.Sector != "" {
			sectorValues[h.Sector] = sectorValues[h.Sector].Add(value)
		}
	}
	snap.TotalValue = total

	if total.IsZero() {
		return snap
	}

	hundred := decimal.NewFromInt(100)
	for region, value := range regionValues {
		snap.RegionAllocations[region], _ = value.Div(total).Mul(hundred).Float64()
	}
	for sector, value := range sectorValues {
		snap.SectorAllocations[sector], _ = value.Div(total).Mul(hundred).Float64()
	}
	return snap
}

// Filter returns a new snapshot containing only the holdings that match f,
// with total value and allocations recomputed over the filtered set. Cash is
// excluded: the filtered view describes invested positions only.
func (s *Snapshot) Filter(f Filters) *Snapshot {
	if f.Empty() {
		return s
	}

	kept := make([]Holding, 0, len(s.Holdings))
	for _, h := range s.Holdings {
		if f.matches(h) {
			kept = append(kept, h)
		}
	}
	return BuildSnapshot(kept, decimal.Zero)
}
