// Package workflow wires the assistant together and exposes the single
// entrypoint the CLI calls per query.
package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/16bitOni/finance-brifer-agent/internal/config"
	"github.com/16bitOni/finance-brifer-agent/internal/dataflows"
	"github.com/16bitOni/finance-brifer-agent/internal/docstore"
	"github.com/16bitOni/finance-brifer-agent/internal/llm"
	"github.com/16bitOni/finance-brifer-agent/internal/orchestrator"
	"github.com/16bitOni/finance-brifer-agent/internal/portfolio"
	"github.com/16bitOni/finance-brifer-agent/internal/speech"
)

const errorMessage = "I apologize, but I encountered an error while processing your query."

// QueryResult is the final state of one processed query.
type QueryResult struct {
	ID        string               `json:"id"`
	Query     string               `json:"query"`
	Answer    *orchestrator.Answer `json:"answer,omitempty"`
	Speech    string               `json:"speech"`
	Audio     []byte               `json:"audio,omitempty"`
	Error     string               `json:"error,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// Manager owns the orchestrator and the optional voice services.
type Manager struct {
	cfg          *config.Config
	orchestrator *orchestrator.Orchestrator
	synthesizer  speech.Synthesizer
	transcriber  speech.Transcriber
	log          *logrus.Entry
}

// New builds a manager from configuration: chat model, document store,
// market, earnings and news providers, and voice services when enabled.
func New(ctx context.Context, cfg *config.Config) (*Manager, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	model, err := llm.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize chat model: %w", err)
	}

	retriever, err := newRetriever(cfg)
	if err != nil {
		return nil, err
	}

	finnhub := dataflows.NewFinnhubClient(cfg)
	news := dataflows.NewFallbackNewsSource(dataflows.NewMarketauxClient(cfg), finnhub)

	orch := orchestrator.New(cfg, model, orchestrator.Sources{
		Portfolio: portfolio.NewAgent(retriever),
		Market:    dataflows.NewYahooClient(cfg),
		Earnings:  finnhub,
		Metadata:  finnhub,
		News:      news,
	})

	m := &Manager{
		cfg:          cfg,
		orchestrator: orch,
		log:          logrus.WithField("component", "workflow"),
	}

	if cfg.VoiceEnabled {
		if gs := speech.NewGoogleSpeech(cfg); gs != nil {
			m.synthesizer = gs
			m.transcriber = gs
		} else {
			m.log.Warn("voice enabled but no Google API key configured, continuing text-only")
		}
	}

	return m, nil
}

// newRetriever prefers the hosted Pinecone index and falls back to the local
// SQLite store when no Pinecone credentials are configured.
func newRetriever(cfg *config.Config) (docstore.Retriever, error) {
	if cfg.PineconeAPIKey != "" && cfg.PineconeHost != "" {
		return docstore.NewPineconeRetriever(cfg)
	}
	store, err := docstore.OpenSQLiteStore(cfg.PortfolioDBPath)
	if err != nil {
		return nil, fmt.Errorf("open portfolio store: %w", err)
	}
	return store, nil
}

// NewWithOrchestrator wires a manager around an existing orchestrator, used
// in tests.
func NewWithOrchestrator(cfg *config.Config, orch *orchestrator.Orchestrator) *Manager {
	return &Manager{
		cfg:          cfg,
		orchestrator: orch,
		log:          logrus.WithField("component", "workflow"),
	}
}

// ProcessQuery runs one query end to end. Errors never escape: they are
// folded into the result as an apology so the voice path always has
// something to say.
func (m *Manager) ProcessQuery(ctx context.Context, query string) *QueryResult {
	result := &QueryResult{
		ID:        uuid.NewString(),
		Query:     strings.TrimSpace(query),
		Timestamp: time.Now(),
	}

	if result.Query == "" {
		result.Speech = "Please ask me something about your portfolio."
		return result
	}

	m.log.WithFields(logrus.Fields{
		"id":    result.ID,
		"query": result.Query,
	}).Info("processing query")

	answer, err := m.orchestrator.Process(ctx, result.Query)
	if err != nil {
		m.log.Errorf("query failed: %v", err)
		result.Error = err.Error()
		result.Speech = errorMessage
		m.saveResult(result)
		return result
	}

	result.Answer = answer
	result.Speech = answer.Speech

	if m.synthesizer != nil && result.Speech != "" {
		audio, err := m.synthesizer.Synthesize(ctx, result.Speech)
		if err != nil {
			m.log.Warnf("speech synthesis failed, returning text only: %v", err)
		} else {
			result.Audio = audio
		}
	}

	m.saveResult(result)
	return result
}

// saveResult writes the finished result into the results directory so past
// queries survive the session. Persistence failures never fail the query.
func (m *Manager) saveResult(result *QueryResult) {
	if strings.TrimSpace(m.cfg.ResultsDir) == "" {
		return
	}
	filePath := filepath.Join(m.cfg.ResultsDir,
		fmt.Sprintf("query_%s_%s.json", result.Timestamp.Format("2006-01-02"), result.ID))
	if err := dataflows.SaveDataToFile(result, filePath); err != nil {
		m.log.Warnf("failed to save query result: %v", err)
	}
}

// ProcessAudio transcribes recorded audio and processes the transcript.
func (m *Manager) ProcessAudio(ctx context.Context, audio []byte) (*QueryResult, error) {
	if m.transcriber == nil {
		return nil, fmt.Errorf("speech-to-text is not configured")
	}
	transcript, err := m.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("transcribe audio: %w", err)
	}
	m.log.WithField("transcript", transcript).Info("transcribed voice query")
	return m.ProcessQuery(ctx, transcript), nil
}

// HealthCheck reports whether the manager is ready to serve queries.
func (m *Manager) HealthCheck() bool {
	return m.orchestrator != nil
}
