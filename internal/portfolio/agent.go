package portfolio

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/16bitOni/finance-brifer-agent/internal/dataflows"
	"github.com/16bitOni/finance-brifer-agent/internal/docstore"
)

const retrievalTopK = 5

// Agent answers portfolio queries by retrieving fragments from the document
// store and assembling them into a snapshot.
type Agent struct {
	retriever docstore.Retriever
	log       *logrus.Entry
}

// NewAgent creates a portfolio agent over the given retriever.
func NewAgent(retriever docstore.Retriever) *Agent {
	return &Agent{
		retriever: retriever,
		log:       logrus.WithField("agent", "portfolio"),
	}
}

// Retrieve searches the document store for query and builds a snapshot from
// whatever holdings the fragments contain. No matching holdings is not an
// error: the snapshot comes back empty with a zero total.
func (a *Agent) Retrieve(ctx context.Context, query string) (*Snapshot, error) {
	fragments, err := a.retriever.Search(ctx, query, retrievalTopK)
	if err != nil {
		return nil, fmt.Errorf("search portfolio documents: %w", err)
	}
	a.log.WithField("fragments", len(fragments)).Debug("retrieved portfolio fragments")

	holdings := ParseFragments(fragments)
	if len(holdings) == 0 {
		a.log.Warn("no holdings found in retrieved fragments")
		return BuildSnapshot(nil, decimal.Zero), nil
	}

	a.log.WithField("holdings", len(holdings)).Info("extracted portfolio holdings")
	return BuildSnapshot(holdings, DefaultCash), nil
}

// Process wraps Retrieve in the uniform result envelope.
func (a *Agent) Process(ctx context.Context, query string) dataflows.Result {
	snap, err := a.Retrieve(ctx, query)
	if err != nil {
		return dataflows.Fail("portfolio", err.Error())
	}
	return dataflows.Ok("portfolio", snap)
}
