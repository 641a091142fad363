package dataflows

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFinnhubGetEarnings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/earnings" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("token") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `[
			{"actual":1.52,"estimate":1.43,"period":"2025-06-30","quarter":2,"surprisePercent":6.29,"symbol":"AAPL","year":2025},
			{"actual":1.65,"estimate":1.62,"period":"2025-03-31","quarter":1,"surprisePercent":1.85,"symbol":"AAPL","year":2025},
			{"actual":2.40,"estimate":2.35,"period":"2024-12-31","quarter":4,"surprisePercent":2.13,"symbol":"AAPL","year":2024},
			{"actual":0.97,"estimate":1.00,"period":"2024-09-30","quarter":3,"surprisePercent":-3.00,"symbol":"AAPL","year":2024},
			{"actual":1.40,"estimate":1.35,"period":"2024-06-30","quarter":2,"surprisePercent":3.70,"symbol":"AAPL","year":2024}
		]`)
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.FinnhubAPIKey = "test-key"
	client := NewFinnhubClient(cfg)
	client.SetBaseURL(server.URL)

	report, err := client.GetEarnings(context.Background(), "aapl", 4)
	if err != nil {
		t.Fatalf("GetEarnings: %v", err)
	}
	if report.Symbol != "AAPL" {
		t.Errorf("expected normalized symbol AAPL, got %s", report.Symbol)
	}
	if len(report.Quarters) != 4 {
		t.Fatalf("expected 4 quarters, got %d", len(report.Quarters))
	}
	latest := report.Quarters[0]
	if latest.Period != "2025-06-30" || latest.ActualEPS != 1.52 {
		t.Errorf("unexpected latest quarter: %+v", latest)
	}
	if latest.SurprisePercent != 6.29 {
		t.Errorf("expected surprise 6.29, got %v", latest.SurprisePercent)
	}
}

func TestFinnhubGetEarningsRequiresKey(t *testing.T) {
	cfg := testConfig(t)
	client := NewFinnhubClient(cfg)
	if _, err := client.GetEarnings(context.Background(), "AAPL", 4); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestFinnhubGetProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/profile2" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"country":"US","currency":"USD","exchange":"NASDAQ NMS - GLOBAL MARKET",
			"finnhubIndustry":"Technology","marketCapitalization":2850000.5,
			"name":"Apple Inc","ticker":"AAPL","weburl":"https://www.apple.com/"}`)
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.FinnhubAPIKey = "test-key"
	client := NewFinnhubClient(cfg)
	client.SetBaseURL(server.URL)

	profile, err := client.GetProfile(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.Name != "Apple Inc" {
		t.Errorf("expected Apple Inc, got %s", profile.Name)
	}
	if profile.Sector != "Technology" {
		t.Errorf("expected Technology sector, got %s", profile.Sector)
	}
	if profile.MarketCap.IsZero() {
		t.Error("expected non-zero market cap")
	}
}

func TestValidateSymbol(t *testing.T) {
	if err := ValidateSymbol("AAPL"); err != nil {
		t.Errorf("AAPL should be valid: %v", err)
	}
	if err := ValidateSymbol(""); err == nil {
		t.Error("empty symbol should be invalid")
	}
	if err := ValidateSymbol("TOOLONGSYMBOL"); err == nil {
		t.Error("overlong symbol should be invalid")
	}
}

func TestWithRetryEventuallySucceeds(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 3, BaseDelay: 1, MaxDelay: 10, Multiplier: 2.0}

	attempts := 0
	err := WithRetry(cfg, func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithRetryGivesUp(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 2, BaseDelay: 1, MaxDelay: 10, Multiplier: 2.0}

	err := WithRetry(cfg, func() error { return fmt.Errorf("permanent") })
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}
