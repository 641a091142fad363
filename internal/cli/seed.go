package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/16bitOni/finance-brifer-agent/internal/config"
	"github.com/16bitOni/finance-brifer-agent/internal/docstore"
	"github.com/16bitOni/finance-brifer-agent/internal/portfolio"
)

// holdingsPerChunk mirrors the chunk size used when portfolio documents are
// indexed for retrieval, so local seeding exercises the same fragment
// reassembly path.
const holdingsPerChunk = 5

type seedDocument struct {
	Portfolio struct {
		Holdings []portfolio.Holding `json:"holdings"`
		Cash     decimal.Decimal     `json:"cash"`
	} `json:"portfolio"`
}

// seedPortfolio loads a portfolio JSON file into the local SQLite document
// store, split into chunks of a few holdings each. It returns the number of
// chunks stored.
func seedPortfolio(ctx context.Context, cfg *config.Config, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read portfolio file: %w", err)
	}

	var doc seedDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, fmt.Errorf("parse portfolio file: %w", err)
	}
	if len(doc.Portfolio.Holdings) == 0 {
		return 0, fmt.Errorf("no holdings found in %s", path)
	}

	store, err := docstore.OpenSQLiteStore(cfg.PortfolioDBPath)
	if err != nil {
		return 0, fmt.Errorf("open portfolio store: %w", err)
	}
	defer store.Close()

	count := 0
	holdings := doc.Portfolio.Holdings
	for start := 0; start < len(holdings); start += holdingsPerChunk {
		end := start + holdingsPerChunk
		if end > len(holdings) {
			end = len(holdings)
		}

		chunk := seedDocument{}
		chunk.Portfolio.Holdings = holdings[start:end]
		chunk.Portfolio.Cash = doc.Portfolio.Cash

		text, err := json.Marshal(chunk)
		if err != nil {
			return count, fmt.Errorf("encode chunk: %w", err)
		}

		id := fmt.Sprintf("portfolio_chunk_%d", count)
		if err := store.Upsert(ctx, id, string(text), path); err != nil {
			return count, fmt.Errorf("store chunk %s: %w", id, err)
		}
		count++
	}

	return count, nil
}
