// Package docstore provides retrieval of portfolio document fragments from a
// backing document store. The orchestrator only needs ranked text fragments;
// how they were indexed is the store's concern.
package docstore

import "context"

// Fragment is one ranked chunk of text returned by a retrieval query. Chunk
// text may be well-formed JSON or free text with embedded key=value patterns;
// callers must tolerate both.
type Fragment struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Retriever answers free-text queries with ranked fragments.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]Fragment, error)
}
