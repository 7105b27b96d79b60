// Package embeddings provides EmbeddingProvider implementations: an
// Ollama-backed HTTP collaborator for production use, and a deterministic
// fake for tests.
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaero/internal/common"
	"github.com/ternarybob/quaero/internal/interfaces"
)

// OllamaProvider calls an Ollama server's /api/embeddings endpoint.
type OllamaProvider struct {
	baseURL   string
	modelName string
	dimension int
	logger    arbor.ILogger
	client    *http.Client
}

var _ interfaces.EmbeddingProvider = (*OllamaProvider)(nil)

// NewOllamaProvider creates a provider bound to an Ollama server.
func NewOllamaProvider(baseURL, modelName string, dimension int, logger arbor.ILogger) *OllamaProvider {
	return &OllamaProvider{
		baseURL:   baseURL,
		modelName: modelName,
		dimension: dimension,
		logger:    logger,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Encode sends one /api/embeddings request per text, in input order,
// optionally unit-normalizing each vector. batchSize (all texts when
// <= 0) only groups the loop; texts are never combined into one request.
func (p *OllamaProvider) Encode(ctx context.Context, texts []string, batchSize int, normalize bool) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = len(texts)
	}

	vectors := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		for k, text := range texts[start:end] {
			vec, err := p.embedOne(ctx, text)
			if err != nil {
				return nil, fmt.Errorf("embed text %d: %w", start+k, err)
			}
			if normalize {
				vec = common.Normalize(vec)
			}
			vectors = append(vectors, vec)
		}
	}
	return vectors, nil
}

func (p *OllamaProvider) embedOne(ctx context.Context, text string) ([]float64, error) {
	reqBody := map[string]interface{}{
		"model":  p.modelName,
		"prompt": text,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var result struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned empty embedding")
	}

	return result.Embedding, nil
}

// ModelName returns the active model's name.
func (p *OllamaProvider) ModelName() string { return p.modelName }

// Dimension returns the configured embedding dimension.
func (p *OllamaProvider) Dimension() int { return p.dimension }

// IsAvailable checks the server's /api/tags endpoint.
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if p.logger != nil {
			p.logger.Debug().Err(err).Msg("ollama not available")
		}
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
