// Package anthropic provides a text generator backed by the Anthropic Messages API
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
)

const (
	DefaultModel     = "claude-3-5-haiku-latest"
	DefaultMaxTokens = 1024
)

// ErrNoContent is returned when a message carries no text blocks
var ErrNoContent = errors.New("no content generated")

// Client implements interfaces.TextGenerator
type Client struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	logger      *common.Logger
	requestOpts []option.RequestOption
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens caps the generated output length
func WithMaxTokens(n int64) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestOptions appends SDK request options such as a base URL or retry policy
func WithRequestOptions(opts ...option.RequestOption) ClientOption {
	return func(c *Client) {
		c.requestOpts = append(c.requestOpts, opts...)
	}
}

// NewClient creates a new Anthropic client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		model:       DefaultModel,
		maxTokens:   DefaultMaxTokens,
		logger:      common.NewSilentLogger(),
		requestOpts: []option.RequestOption{option.WithAPIKey(apiKey)},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.client = anthropic.NewClient(c.requestOpts...)
	return c
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt as a single user message and returns the text reply
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Int("prompt_len", len(prompt)).Msg("Generating content")

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrNoContent
	}
	return sb.String(), nil
}

// Compile-time check
var _ interfaces.TextGenerator = (*Client)(nil)
