package dataflows

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/16bitOni/finance-brifer-agent/internal/config"
)

type stubNews struct {
	digest *NewsDigest
	err    error
	calls  int
}

func (s *stubNews) GetNews(ctx context.Context, symbols []string) (*NewsDigest, error) {
	s.calls++
	return s.digest, s.err
}

func TestFallbackNewsPrefersPrimary(t *testing.T) {
	primary := &stubNews{digest: &NewsDigest{Headlines: []string{"a"}, Sentiment: "Positive", Source: "marketaux"}}
	secondary := &stubNews{digest: &NewsDigest{Headlines: []string{"b"}, Sentiment: "Neutral", Source: "finnhub"}}

	src := NewFallbackNewsSourceFrom(primary, secondary)
	digest, err := src.GetNews(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GetNews: %v", err)
	}
	if digest.Source != "marketaux" {
		t.Errorf("expected primary digest, got %s", digest.Source)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary should not be called, got %d calls", secondary.calls)
	}
}

func TestFallbackNewsUsesSecondaryOnPrimaryFailure(t *testing.T) {
	primary := &stubNews{err: fmt.Errorf("rate limited")}
	secondary := &stubNews{digest: &NewsDigest{Headlines: []string{"b"}, Sentiment: "Neutral", Source: "finnhub"}}

	src := NewFallbackNewsSourceFrom(primary, secondary)
	digest, err := src.GetNews(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GetNews: %v", err)
	}
	if digest.Source != "finnhub" {
		t.Errorf("expected fallback digest, got %s", digest.Source)
	}
}

func TestFallbackNewsAggregatesBothFailures(t *testing.T) {
	primary := &stubNews{err: fmt.Errorf("primary down")}
	secondary := &stubNews{err: fmt.Errorf("secondary down")}

	src := NewFallbackNewsSourceFrom(primary, secondary)
	_, err := src.GetNews(context.Background(), []string{"AAPL"})
	if err == nil {
		t.Fatal("expected aggregate error")
	}
	if !strings.Contains(err.Error(), "primary down") || !strings.Contains(err.Error(), "secondary down") {
		t.Errorf("aggregate error should mention both causes, got: %v", err)
	}
}

func TestMarketauxDigest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/news/all" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"data":[
			{"title":"Apple beats estimates","sentiment":"positive","entities":[{"type":"event","name":"earnings beat"}]},
			{"title":"Supply chain worries","sentiment":"negative","entities":[]},
			{"title":"New iPhone launch","sentiment":"positive","entities":[{"type":"event","name":"product launch"}]}
		]}`)
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.MarketauxAPIKey = "test-key"
	client := NewMarketauxClient(cfg)
	client.SetBaseURL(server.URL)

	digest, err := client.GetNews(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GetNews: %v", err)
	}
	if len(digest.Headlines) != 3 {
		t.Errorf("expected 3 headlines, got %d", len(digest.Headlines))
	}
	if digest.Sentiment != "Positive" {
		t.Errorf("expected Positive sentiment, got %s", digest.Sentiment)
	}
	if len(digest.Events) != 2 {
		t.Errorf("expected 2 events, got %d", len(digest.Events))
	}
}

func TestOverallSentiment(t *testing.T) {
	cases := []struct {
		name       string
		sentiments []string
		want       string
	}{
		{"empty", nil, "Neutral"},
		{"mostly positive", []string{"positive", "positive", "negative"}, "Positive"},
		{"mostly negative", []string{"negative", "negative", "positive"}, "Negative"},
		{"tied", []string{"positive", "negative"}, "Neutral"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := overallSentiment(tc.sentiments); got != tc.want {
				t.Errorf("overallSentiment(%v) = %s, want %s", tc.sentiments, got, tc.want)
			}
		})
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DataDir:         dir,
		DataCacheDir:    dir,
		CacheEnabled:    false,
		HistoryDays:     30,
		EarningsPeriods: 4,
		FetchTimeout:    5 * time.Second,
	}
}
