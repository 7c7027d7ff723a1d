// Package upstream is a minimal client for the OpenAI Responses API. It only
// understands the parts of the response the relay depends on.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/llm"
)

const (
	DefaultURL             = "https://api.openai.com/v1/responses"
	DefaultModel           = "gpt-5"
	DefaultMaxOutputTokens = 4000
)

// Config configures the upstream client.
type Config struct {
	// URL of the Responses endpoint
	URL string

	// Model sent with every request
	Model string

	// MaxOutputTokens caps the length of every completion
	MaxOutputTokens int

	// Timeout bounds a single upstream call. Zero means no deadline beyond
	// the caller's context.
	Timeout time.Duration
}

// Client calls the upstream Responses API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Client. A nil httpClient uses http.DefaultClient.
func NewClient(config Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.MaxOutputTokens <= 0 {
		config.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Create sends input to the Responses API using apiKey as the bearer token.
// Any HTTP status yields a *Response; an error is returned only when the call
// could not be made or the body is not JSON.
func (c *Client) Create(ctx context.Context, apiKey string, input []llm.ConversationTurn) (*Response, error) {
	reqBody, err := json.Marshal(llm.ResponsesRequest{
		Model:           c.config.Model,
		Input:           input,
		MaxOutputTokens: c.config.MaxOutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	c.logger.Debug("forwarding request to upstream",
		zap.String("url", c.config.URL),
		zap.String("model", c.config.Model),
		zap.Int("turn_count", len(input)),
		zap.Int("body_size", len(reqBody)),
	)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return parseResponse(httpResp.StatusCode, body)
}
