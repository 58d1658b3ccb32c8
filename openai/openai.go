package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3" // imported as openai
	"github.com/openai/openai-go/v3/option"

	"github.com/ibreez3/email-rewriter/rewriter"
)

// DefaultBaseURL is Cohere's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.cohere.ai/compatibility/v1"

var ErrRateLimited = errors.New("rate limit exceeded")

type Client struct {
	cli openai.Client
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

func NewClient(apiKey string, o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(o.BaseURL),
		// retries are owned by the rewriter
		option.WithMaxRetries(0),
	}
	if o.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(o.Timeout))
	}
	if o.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	}
	return &Client{cli: openai.NewClient(opts...)}
}

func (c *Client) Generate(ctx context.Context, p rewriter.GenerateParams) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: p.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(p.Prompt),
		},
	}
	if p.Temperature != nil {
		params.Temperature = openai.Float(*p.Temperature)
	}
	if p.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.MaxTokens))
	}
	res, err := c.cli.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices", p.Model)
	}
	return res.Choices[0].Message.Content, nil
}

// classify folds HTTP 429 into ErrRateLimited so its message carries the
// "rate limit" marker the rewriter matches on.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return err
}

var _ rewriter.ChatClient = (*Client)(nil)
