package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/16bitOni/finance-brifer-agent/internal/config"
)

// PineconeRetriever queries a Pinecone serverless index with integrated
// embedding. The index embeds the query text server-side, so this client
// only speaks JSON.
type PineconeRetriever struct {
	client    *resty.Client
	apiKey    string
	namespace string
}

// NewPineconeRetriever creates a retriever against the index host in cfg.
func NewPineconeRetriever(cfg *config.Config) (*PineconeRetriever, error) {
	if cfg.PineconeAPIKey == "" {
		return nil, fmt.Errorf("missing Pinecone API key")
	}
	if cfg.PineconeHost == "" {
		return nil, fmt.Errorf("missing Pinecone index host")
	}

	client := resty.New()
	client.SetBaseURL("https://" + cfg.PineconeHost)
	client.SetTimeout(30 * time.Second)
	client.SetHeader("Api-Key", cfg.PineconeAPIKey)
	client.SetHeader("X-Pinecone-API-Version", "2025-01")

	return &PineconeRetriever{
		client:    client,
		apiKey:    cfg.PineconeAPIKey,
		namespace: "__default__",
	}, nil
}

// SetBaseURL overrides the index endpoint, used in tests.
func (pr *PineconeRetriever) SetBaseURL(url string) {
	pr.client.SetBaseURL(url)
}

type pineconeSearchRequest struct {
	Query  pineconeQuery `json:"query"`
	Fields []string      `json:"fields"`
}

type pineconeQuery struct {
	Inputs map[string]string `json:"inputs"`
	TopK   int               `json:"top_k"`
}

type pineconeSearchResponse struct {
	Result struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Score  float64         `json:"_score"`
			Fields json.RawMessage `json:"fields"`
		} `json:"hits"`
	} `json:"result"`
}

// Search implements Retriever.
func (pr *PineconeRetriever) Search(ctx context.Context, query string, topK int) ([]Fragment, error) {
	if topK <= 0 {
		topK = 5
	}

	body := pineconeSearchRequest{
		Query: pineconeQuery{
			Inputs: map[string]string{"text": query},
			TopK:   topK,
		},
		Fields: []string{"chunk_text", "source", "company", "date", "type"},
	}

	resp, err := pr.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("/records/namespaces/%s/search", pr.namespace))
	if err != nil {
		return nil, fmt.Errorf("pinecone search: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("pinecone search error %d: %s", resp.StatusCode(), resp.String())
	}

	var payload pineconeSearchResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("parse pinecone response: %w", err)
	}

	fragments := make([]Fragment, 0, len(payload.Result.Hits))
	for _, hit := range payload.Result.Hits {
		var fields struct {
			ChunkText string `json:"chunk_text"`
		}
		if err := json.Unmarshal(hit.Fields, &fields); err != nil || fields.ChunkText == "" {
			continue
		}
		fragments = append(fragments, Fragment{
			ID:    hit.ID,
			Text:  fields.ChunkText,
			Score: hit.Score,
		})
	}

	return fragments, nil
}
