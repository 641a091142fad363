package portfolio

import (
	"encoding/json"
	"regexp"
	"strconv"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/shopspring/decimal"

	"github.com/16bitOni/finance-brifer-agent/internal/docstore"
)

// Stored portfolio documents are JSON chunks of this shape, but retrieval may
// split a document mid-object, so parsing has to survive truncated fragments.
type portfolioDoc struct {
	Portfolio struct {
		Holdings []Holding       `json:"holdings"`
		Cash     decimal.Decimal `json:"cash"`
	} `json:"portfolio"`
}

var holdingPattern = regexp.MustCompile(
	`"symbol":\s*"([^"]+)",\s*"shares":\s*(\d+),\s*"avg_price":\s*([\d.]+),\s*"sector":\s*"([^"]+)",\s*"region":\s*"([^"]+)"`)

// ParseFragments extracts holdings from retrieved document fragments. Each
// fragment is parsed as JSON first, with automatic repair for fragments cut
// mid-document, and falls back to pattern extraction when no structure
// survives. Duplicate symbols across fragments are collapsed, keeping the
// first occurrence.
func ParseFragments(fragments []docstore.Fragment) []Holding {
	var all []Holding
	for _, frag := range fragments {
		if frag.Text == "" {
			continue
		}
		all = append(all, parseChunk(frag.Text)...)
	}

	seen := make(map[string]bool, len(all))
	unique := make([]Holding, 0, len(all))
	for _, h := range all {
		if h.Symbol == "" || seen[h.Symbol] {
			continue
		}
		seen[h.Symbol] = true
		unique = append(unique, h)
	}
	return unique
}

func parseChunk(text string) []Holding {
	var doc portfolioDoc
	if err := json.Unmarshal([]byte(text), &doc); err == nil && len(doc.Portfolio.Holdings) > 0 {
		return doc.Portfolio.Holdings
	}

	if repaired, err := jsonrepair.RepairJSON(text); err == nil {
		var doc portfolioDoc
		if err := json.Unmarshal([]byte(repaired), &doc); err == nil && len(doc.Portfolio.Holdings) > 0 {
			return doc.Portfolio.Holdings
		}
	}

	var holdings []Holding
	for _, match := range holdingPattern.FindAllStringSubmatch(text, -1) {
		shares, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}
		price, err := decimal.NewFromString(match[3])
		if err != nil {
			continue
		}
		holdings = append(holdings, Holding{
			Symbol:   match[1],
			Shares:   shares,
			AvgPrice: price,
			Sector:   match[4],
			Region:   match[5],
		})
	}
	return holdings
}
