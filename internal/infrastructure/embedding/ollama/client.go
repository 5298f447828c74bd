// Package ollama is an embedding provider backed by an Ollama-compatible
// /api/embeddings endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/turtacn/OrphaMine/pkg/errors"
)

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
	Error     string    `json:"error"`
}

// Client embeds text with a single model.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient returns a client for model served at baseURL.
func NewClient(baseURL, model string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if baseURL == "" || err != nil || u.Host == "" {
		return nil, errors.Newf(errors.ErrCodeConfiguration, "invalid embedding base URL %q", baseURL)
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.Configuration("embedding model must not be empty")
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Model returns the model name.
func (o *Client) Model() string { return o.model }

// Embed returns the embedding of text.
func (o *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	jsonBody, err := json.Marshal(embeddingRequest{Model: o.model, Prompt: text})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encode embedding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "build embedding request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "embedding request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "read embedding response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrCodeEmbeddingFailed, "ollama error (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out embeddingResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "decode embedding response")
	}
	if out.Error != "" {
		return nil, errors.New(errors.ErrCodeEmbeddingFailed, out.Error)
	}
	if len(out.Embedding) == 0 {
		return nil, errors.New(errors.ErrCodeEmbeddingFailed, "empty embedding")
	}
	for _, v := range out.Embedding {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New(errors.ErrCodeEmbeddingFailed, "embedding contains non-finite values")
		}
	}
	return out.Embedding, nil
}

//Personal.AI order the ending
