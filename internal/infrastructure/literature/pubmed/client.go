// Package pubmed implements the literature popularity lookup over the NCBI
// E-utilities esearch endpoint.
package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

const defaultTimeout = 10 * time.Second

// Config configures the client.
type Config struct {
	BaseURL string
	Tool    string
	Email   string
	APIKey  string
	Timeout time.Duration
}

// Client counts PubMed articles mentioning a term in title or abstract.
type Client struct {
	baseURL    string
	tool       string
	email      string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient validates cfg and returns a client.
func NewClient(cfg Config, logger logging.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if cfg.BaseURL == "" || err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, errors.Newf(errors.ErrCodeConfiguration, "invalid enrichment base URL %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		tool:       cfg.Tool,
		email:      cfg.Email,
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
		logger:     logger.Named("pubmed"),
	}, nil
}

type esearchResponse struct {
	Result *struct {
		Count string `json:"count"`
	} `json:"esearchresult"`
	Error string `json:"error"`
}

// Query returns the esearch term used for name.
func Query(name string) string {
	return `"` + strings.ReplaceAll(strings.TrimSpace(name), `"`, "") + `"[Title/Abstract]`
}

// Count performs one esearch call for name.  Failures are
// ErrCodeExternalService (retryable) or ErrCodeRateLimit on HTTP 429.
func (c *Client) Count(ctx context.Context, name string) (int, error) {
	q := url.Values{}
	q.Set("db", "pubmed")
	q.Set("retmode", "json")
	q.Set("rettype", "count")
	q.Set("term", Query(name))
	if c.tool != "" {
		q.Set("tool", c.tool)
	}
	if c.email != "" {
		q.Set("email", c.email)
	}
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+"/esearch.fcgi?"+q.Encode(), nil)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternal, "build esearch request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, errors.Wrap(err, errors.ErrCodeExternalService, "esearch request")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeExternalService, "read esearch response")
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return 0, errors.Newf(errors.ErrCodeTooManyRequests, "esearch rate limited")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return 0, errors.Newf(errors.ErrCodeExternalService, "esearch HTTP %d", resp.StatusCode)
	}

	var out esearchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeExternalService, "decode esearch response")
	}
	if out.Result == nil {
		return 0, errors.Newf(errors.ErrCodeExternalService, "esearch response has no result: %s", out.Error)
	}
	n, err := strconv.Atoi(strings.TrimSpace(out.Result.Count))
	if err != nil || n < 0 {
		return 0, errors.Wrap(fmt.Errorf("count %q", out.Result.Count), errors.ErrCodeExternalService, "parse esearch count")
	}
	c.logger.Debug("esearch count", logging.String("term", name), logging.Int("count", n))
	return n, nil
}

//Personal.AI order the ending
