package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/16bitOni/finance-brifer-agent/internal/config"
	"github.com/16bitOni/finance-brifer-agent/internal/docstore"
	"github.com/16bitOni/finance-brifer-agent/internal/portfolio"
)

const seedFixture = `{
  "portfolio": {
    "holdings": [
      {"symbol": "AAPL", "shares": 100, "avg_price": 150.5, "sector": "Technology", "region": "US"},
      {"symbol": "MSFT", "shares": 80, "avg_price": 300.0, "sector": "Technology", "region": "US"},
      {"symbol": "TSM", "shares": 200, "avg_price": 100.0, "sector": "Technology", "region": "Asia"},
      {"symbol": "JPM", "shares": 50, "avg_price": 140.0, "sector": "Financial", "region": "US"},
      {"symbol": "BABA", "shares": 120, "avg_price": 85.0, "sector": "Technology", "region": "Asia"},
      {"symbol": "JNJ", "shares": 60, "avg_price": 160.0, "sector": "Healthcare", "region": "US"}
    ],
    "cash": 50000
  }
}`

func TestSeedPortfolioChunksAndRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portfolio.json")
	if err := os.WriteFile(path, []byte(seedFixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := &config.Config{PortfolioDBPath: filepath.Join(dir, "portfolio.db")}
	ctx := context.Background()

	count, err := seedPortfolio(ctx, cfg, path)
	if err != nil {
		t.Fatalf("seedPortfolio: %v", err)
	}
	// Six holdings at five per chunk.
	if count != 2 {
		t.Errorf("chunks stored = %d, want 2", count)
	}

	store, err := docstore.OpenSQLiteStore(cfg.PortfolioDBPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()

	fragments, err := store.Search(ctx, "portfolio holdings", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	holdings := portfolio.ParseFragments(fragments)
	if len(holdings) != 6 {
		t.Errorf("reassembled holdings = %d, want 6", len(holdings))
	}
}

func TestSeedPortfolioRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(path, []byte(`{"portfolio": {"holdings": []}}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := &config.Config{PortfolioDBPath: filepath.Join(dir, "portfolio.db")}
	if _, err := seedPortfolio(context.Background(), cfg, path); err == nil {
		t.Error("expected error for portfolio without holdings")
	}
}
