package portfolio

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func testHoldings() []Holding {
	return []Holding{
		{Symbol: "AAPL", Shares: 100, AvgPrice: decimal.NewFromInt(150), Sector: "Technology", Region: "US"},
		{Symbol: "TSM", Shares: 200, AvgPrice: decimal.NewFromInt(100), Sector: "Technology", Region: "Asia"},
		{Symbol: "JPM", Shares: 50, AvgPrice: decimal.NewFromInt(140), Sector: "Financial", Region: "US"},
	}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuildSnapshotAllocations(t *testing.T) {
	snap := BuildSnapshot(testHoldings(), decimal.NewFromInt(8000))

	// 15000 + 20000 + 7000 + 8000 cash
	if !snap.TotalValue.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("total value = %s, want 50000", snap.TotalValue)
	}
	if len(snap.Symbols) != 3 {
		t.Fatalf("symbols = %v, want 3 entries", snap.Symbols)
	}
	if got := snap.SectorAllocations["Technology"]; !approxEqual(got, 70.0) {
		t.Errorf("Technology allocation = %f, want 70", got)
	}
	if got := snap.SectorAllocations["Financial"]; !approxEqual(got, 14.0) {
		t.Errorf("Financial allocation = %f, want 14", got)
	}
	if got := snap.RegionAllocations["US"]; !approxEqual(got, 44.0) {
		t.Errorf("US allocation = %f, want 44", got)
	}
	if got := snap.RegionAllocations["Asia"]; !approxEqual(got, 40.0) {
		t.Errorf("Asia allocation = %f, want 40", got)
	}
}

func TestBuildSnapshotAllocationsSumWithoutCash(t *testing.T) {
	snap := BuildSnapshot(testHoldings(), decimal.Zero)

	sectorSum := 0.0
	for _, pct := range snap.SectorAllocations {
		sectorSum += pct
	}
	if math.Abs(sectorSum-100.0) > 1e-9 {
		t.Errorf("sector allocations sum to %f, want 100", sectorSum)
	}

	regionSum := 0.0
	for _, pct := range snap.RegionAllocations {
		regionSum += pct
	}
	if math.Abs(regionSum-100.0) > 1e-9 {
		t.Errorf("region allocations sum to %f, want 100", regionSum)
	}
}

func TestBuildSnapshotZeroTotal(t *testing.T) {
	snap := BuildSnapshot(nil, decimal.Zero)

	if !snap.TotalValue.IsZero() {
		t.Errorf("total value = %s, want 0", snap.TotalValue)
	}
	if len(snap.RegionAllocations) != 0 || len(snap.SectorAllocations) != 0 {
		t.Error("expected empty allocation maps for zero-value portfolio")
	}
}

func TestFilterAndSemantics(t *testing.T) {
	snap := BuildSnapshot(testHoldings(), decimal.NewFromInt(8000))

	filtered := snap.Filter(Filters{Regions: []string{"US"}, Sectors: []string{"Technology"}})
	if len(filtered.Holdings) != 1 || filtered.Holdings[0].Symbol != "AAPL" {
		t.Fatalf("filtered holdings = %v, want only AAPL", filtered.Symbols)
	}
	// Filtered total excludes cash.
	if !filtered.TotalValue.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("filtered total = %s, want 15000", filtered.TotalValue)
	}
	if got := filtered.SectorAllocations["Technology"]; !approxEqual(got, 100.0) {
		t.Errorf("filtered Technology allocation = %f, want 100", got)
	}
}

func TestFilterEmptyDimensionIsNoConstraint(t *testing.T) {
	snap := BuildSnapshot(testHoldings(), decimal.NewFromInt(8000))

	filtered := snap.Filter(Filters{Sectors: []string{"Technology"}})
	if len(filtered.Holdings) != 2 {
		t.Fatalf("filtered holdings = %v, want AAPL and TSM", filtered.Symbols)
	}

	unfiltered := snap.Filter(Filters{})
	if len(unfiltered.Holdings) != 3 {
		t.Errorf("empty filter should keep all holdings, got %d", len(unfiltered.Holdings))
	}
	if !unfiltered.TotalValue.Equal(snap.TotalValue) {
		t.Errorf("empty filter changed total value: %s != %s", unfiltered.TotalValue, snap.TotalValue)
	}
}

func TestFilterNoMatches(t *testing.T) {
	snap := BuildSnapshot(testHoldings(), decimal.NewFromInt(8000))

	filtered := snap.Filter(Filters{Regions: []string{"Europe"}})
	if len(filtered.Holdings) != 0 {
		t.Errorf("expected no holdings, got %v", filtered.Symbols)
	}
	bySymbol := snap.Filter(Filters{Symbols: []string{"NFLX"}})
	if len(bySymbol.Holdings) != 0 || !bySymbol.TotalValue.IsZero() {
		t.Errorf("filtering by absent symbol should yield empty snapshot, got %v", bySymbol.Symbols)
	}
	if !filtered.TotalValue.IsZero() {
		t.Errorf("expected zero total, got %s", filtered.TotalValue)
	}
	if len(filtered.RegionAllocations) != 0 || len(filtered.SectorAllocations) != 0 {
		t.Error("expected empty allocation maps when nothing matches")
	}
}
