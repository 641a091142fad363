package dataflows

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one daily bar of price history.
type Candle struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// MarketSnapshot is the latest quote for a symbol plus a trailing window of
// daily history used for volatility estimation.
type MarketSnapshot struct {
	Symbol        string          `json:"symbol"`
	Date          time.Time       `json:"date"`
	Price         decimal.Decimal `json:"price"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Volume        int64           `json:"volume"`
	ChangePercent float64         `json:"change_percent"`
	History       []Candle        `json:"history,omitempty"`
}

// EarningsQuarter is one reported earnings period.
type EarningsQuarter struct {
	Period          string  `json:"period"`
	ActualEPS       float64 `json:"actual_eps"`
	EstimateEPS     float64 `json:"estimate_eps"`
	SurprisePercent float64 `json:"surprise_percent"`
}

// EarningsReport is a bounded list of past quarters for a symbol.
type EarningsReport struct {
	Symbol   string            `json:"symbol"`
	Quarters []EarningsQuarter `json:"quarters"`
}

// NewsDigest aggregates headlines for a set of symbols into a single
// speech-friendly unit: headlines, an overall sentiment label and named events.
type NewsDigest struct {
	Headlines []string `json:"headlines"`
	Sentiment string   `json:"sentiment"`
	Events    []string `json:"events"`
	Source    string   `json:"source"`
}

// CompanyProfile holds descriptive company metadata.
type CompanyProfile struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Sector    string          `json:"sector"`
	Industry  string          `json:"industry"`
	Country   string          `json:"country"`
	MarketCap decimal.Decimal `json:"market_cap"`
	Currency  string          `json:"currency"`
	Exchange  string          `json:"exchange"`
}

// Result is the uniform envelope every adapter boundary returns. Data carries
// the typed payload on success, Error the provider message on failure.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Ok wraps a payload in a successful Result.
func Ok(source string, data any) Result {
	return Result{Success: true, Data: data, Source: source}
}

// Fail wraps an error message in a failed Result.
func Fail(source, message string) Result {
	return Result{Success: false, Error: message, Source: source}
}
