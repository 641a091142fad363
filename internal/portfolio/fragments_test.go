package portfolio

import (
	"testing"

	"github.com/16bitOni/finance-brifer-agent/internal/docstore"
)

func TestParseFragmentsWellFormedJSON(t *testing.T) {
	fragments := []docstore.Fragment{
		{ID: "doc_0", Text: `{"portfolio": {"holdings": [
			{"symbol": "AAPL", "shares": 100, "avg_price": 150.5, "sector": "Technology", "region": "US"},
			{"symbol": "TSM", "shares": 200, "avg_price": 100.0, "sector": "Technology", "region": "Asia"}
		], "cash": 50000}}`},
	}

	holdings := ParseFragments(fragments)
	if len(holdings) != 2 {
		t.Fatalf("got %d holdings, want 2", len(holdings))
	}
	if holdings[0].Symbol != "AAPL" || holdings[0].Shares != 100 {
		t.Errorf("unexpected first holding: %+v", holdings[0])
	}
	if holdings[1].Region != "Asia" {
		t.Errorf("unexpected second holding region: %q", holdings[1].Region)
	}
}

func TestParseFragmentsTruncatedChunk(t *testing.T) {
	// A fragment cut mid-document: no closing braces, but the holding objects
	// inside are intact.
	fragments := []docstore.Fragment{
		{ID: "doc_0", Text: `{"portfolio": {"holdings": [
			{"symbol": "MSFT", "shares": 80, "avg_price": 300.25, "sector": "Technology", "region": "US"},
			{"symbol": "JPM", "shares": 50, "avg_price": 140`},
	}

	holdings := ParseFragments(fragments)
	if len(holdings) == 0 {
		t.Fatal("expected at least one holding from truncated fragment")
	}
	if holdings[0].Symbol != "MSFT" {
		t.Errorf("first holding = %q, want MSFT", holdings[0].Symbol)
	}
	if holdings[0].Shares != 80 {
		t.Errorf("shares = %d, want 80", holdings[0].Shares)
	}
}

func TestParseFragmentsDeduplicatesAcrossChunks(t *testing.T) {
	chunk := `{"portfolio": {"holdings": [
		{"symbol": "AAPL", "shares": 100, "avg_price": 150.0, "sector": "Technology", "region": "US"}
	]}}`
	fragments := []docstore.Fragment{
		{ID: "doc_0", Text: chunk},
		{ID: "doc_1", Text: chunk},
	}

	holdings := ParseFragments(fragments)
	if len(holdings) != 1 {
		t.Errorf("got %d holdings, want duplicate collapsed to 1", len(holdings))
	}
}

func TestParseFragmentsNonPortfolioText(t *testing.T) {
	fragments := []docstore.Fragment{
		{ID: "doc_0", Text: "quarterly market commentary with no holdings at all"},
		{ID: "doc_1", Text: ""},
	}

	holdings := ParseFragments(fragments)
	if len(holdings) != 0 {
		t.Errorf("got %d holdings from prose fragments, want 0", len(holdings))
	}
}
