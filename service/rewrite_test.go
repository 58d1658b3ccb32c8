package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ibreez3/email-rewriter/config"
	"github.com/ibreez3/email-rewriter/diffview"
	"github.com/ibreez3/email-rewriter/rewriter"
)

type fakeClient struct {
	key     string
	replies []error
	text    string
	calls   []rewriter.GenerateParams
}

func (c *fakeClient) Generate(_ context.Context, p rewriter.GenerateParams) (string, error) {
	c.calls = append(c.calls, p)
	if len(c.replies) > 0 {
		err := c.replies[0]
		c.replies = c.replies[1:]
		if err != nil {
			return "", err
		}
	}
	return c.text, nil
}

func testConfig() config.Config {
	var cfg config.Config
	cfg.Server.ValidateOnRewrite = true
	cfg.OpenAI.Provider = "Cohere"
	cfg.OpenAI.MaxRetries = 3
	cfg.OpenAI.RetryBackoffSec = 0
	cfg.OpenAI.RateLimitMarker = "rate limit"
	cfg.OpenAI.ValidationModel = "command"
	cfg.OpenAI.ValidationMaxTokens = 5
	cfg.Rewrite.Temperature = 0.7
	cfg.Rewrite.MaxTokens = 1000
	cfg.Models = []string{"command", "command-light"}
	return cfg
}

func newTestService(cfg config.Config, cli *fakeClient) *Service {
	rw := rewriter.New(rewriter.Policy{Backoff: 1, RateLimitMarker: cfg.OpenAI.RateLimitMarker})
	factory := func(key string) rewriter.ChatClient {
		cli.key = key
		return cli
	}
	return New(cfg, rw, factory, zap.NewNop())
}

func TestRewrite_Success(t *testing.T) {
	cli := &fakeClient{text: "Dear colleague, please send the report at your earliest convenience."}
	svc := newTestService(testConfig(), cli)

	out := svc.Rewrite(context.Background(), Input{
		Email: "Hi, pls send report.", Tone: "Professional", Model: "Cohere: command", APIKey: "k1",
	})

	require.Equal(t, StatusSuccess, out.Status, out.Error)
	assert.Equal(t, "Dear colleague, please send the report at your earliest convenience.", out.Rewritten)
	assert.Equal(t, "k1", cli.key)
	require.Len(t, cli.calls, 2, "validation then rewrite")
	assert.Equal(t, "test", cli.calls[0].Prompt)
	assert.Equal(t, "command", cli.calls[1].Model)
	assert.Nil(t, out.Diff)
}

func TestRewrite_WithDiff(t *testing.T) {
	cli := &fakeClient{text: "Hello,\nPlease send the report."}
	svc := newTestService(testConfig(), cli)

	out := svc.Rewrite(context.Background(), Input{
		Email: "Hello,\npls send report", Tone: "friendly", Model: "command", APIKey: "k", ShowDiff: true,
	})

	require.Equal(t, StatusSuccess, out.Status)
	assert.Equal(t, []diffview.Line{
		{Op: diffview.OpEqual, Text: "Hello,"},
		{Op: diffview.OpRemove, Text: "pls send report"},
		{Op: diffview.OpAdd, Text: "Please send the report."},
	}, out.Diff)
	require.NotNil(t, out.Stats)
	assert.Equal(t, 1, out.Stats.Added)
}

func TestRewrite_InputChecks(t *testing.T) {
	cases := []struct {
		name string
		cfg  func(*config.Config)
		in   Input
		want string
	}{
		{"empty email", nil, Input{Email: "  ", Tone: "Friendly", Model: "command", APIKey: "k"}, MsgEmptyEmail},
		{"no models", func(c *config.Config) { c.Models = nil }, Input{Email: "hi", Tone: "Friendly", Model: "command", APIKey: "k"}, MsgNoModels},
		{"unknown model", nil, Input{Email: "hi", Tone: "Friendly", Model: "gpt-9", APIKey: "k"}, MsgInvalidModel},
		{"unknown tone", nil, Input{Email: "hi", Tone: "Snarky", Model: "command", APIKey: "k"}, MsgInvalidTone},
		{"missing key", nil, Input{Email: "hi", Tone: "Friendly", Model: "command"}, MsgMissingKey},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			if tc.cfg != nil {
				tc.cfg(&cfg)
			}
			cli := &fakeClient{text: "x"}
			out := newTestService(cfg, cli).Rewrite(context.Background(), tc.in)
			assert.Equal(t, StatusInvalid, out.Status)
			assert.Equal(t, tc.want, out.Error)
			assert.Empty(t, cli.calls)
		})
	}
}

func TestRewrite_EnvKeyFallback(t *testing.T) {
	cfg := testConfig()
	cfg.OpenAI.APIKey = "from-env"
	cli := &fakeClient{text: "ok"}

	out := newTestService(cfg, cli).Rewrite(context.Background(), Input{Email: "hi", Tone: "Friendly", Model: "command"})

	require.Equal(t, StatusSuccess, out.Status)
	assert.Equal(t, "from-env", cli.key)
}

func TestRewrite_RejectedKey(t *testing.T) {
	cli := &fakeClient{replies: []error{errors.New("invalid api token")}}
	svc := newTestService(testConfig(), cli)

	out := svc.Rewrite(context.Background(), Input{Email: "hi", Tone: "Friendly", Model: "command", APIKey: "bad"})

	assert.Equal(t, StatusRejected, out.Status)
	assert.Equal(t, "Invalid Cohere API key. API key validation failed: invalid api token", out.Error)
	assert.Len(t, cli.calls, 1)
}

func TestRewrite_SkipsValidationWhenDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Server.ValidateOnRewrite = false
	cli := &fakeClient{text: "ok"}

	out := newTestService(cfg, cli).Rewrite(context.Background(), Input{Email: "hi", Tone: "Friendly", Model: "command", APIKey: "k"})

	require.Equal(t, StatusSuccess, out.Status)
	assert.Len(t, cli.calls, 1)
}

func TestRewrite_RateLimitExhausted(t *testing.T) {
	limited := errors.New("rate limit exceeded")
	cli := &fakeClient{replies: []error{nil, limited, limited, limited}}

	out := newTestService(testConfig(), cli).Rewrite(context.Background(), Input{Email: "x", Tone: "Friendly", Model: "command", APIKey: "k"})

	assert.Equal(t, StatusError, out.Status)
	assert.Equal(t, "Cohere Error: max retries reached due to rate limits", out.Error)
	assert.Equal(t, 3, out.Attempts)
	assert.Len(t, cli.calls, 4)
}

func TestRewrite_OverridesTemperatureAndTokens(t *testing.T) {
	cfg := testConfig()
	cfg.Server.ValidateOnRewrite = false
	cli := &fakeClient{text: "ok"}
	temp := 0.1

	newTestService(cfg, cli).Rewrite(context.Background(), Input{
		Email: "hi", Tone: "Friendly", Model: "command", APIKey: "k", Temperature: &temp, MaxTokens: 42,
	})

	require.Len(t, cli.calls, 1)
	assert.InDelta(t, 0.1, *cli.calls[0].Temperature, 1e-9)
	assert.Equal(t, 42, cli.calls[0].MaxTokens)
}

func TestRewrite_RejectsOutOfRangeTemperature(t *testing.T) {
	cfg := testConfig()
	cfg.Server.ValidateOnRewrite = false
	cli := &fakeClient{text: "ok"}
	temp := 2.0

	out := newTestService(cfg, cli).Rewrite(context.Background(), Input{
		Email: "hi", Tone: "Friendly", Model: "command", APIKey: "k", Temperature: &temp,
	})

	assert.Equal(t, StatusInvalid, out.Status)
	assert.Empty(t, cli.calls)
}

func TestValidate(t *testing.T) {
	cli := &fakeClient{text: "hi"}
	svc := newTestService(testConfig(), cli)

	v := svc.Validate(context.Background(), "k")
	assert.True(t, v.Valid)
	assert.Len(t, cli.calls, 1)

	v = svc.Validate(context.Background(), "")
	assert.False(t, v.Valid)
	assert.Equal(t, MsgMissingKey, v.Error)
	assert.Len(t, cli.calls, 1)
}

func TestCatalog(t *testing.T) {
	svc := newTestService(testConfig(), &fakeClient{})

	c := svc.Catalog()

	assert.Equal(t, "Cohere", c.Provider)
	assert.Equal(t, []ModelInfo{
		{ID: "command", Label: "Cohere: command", Provider: "Cohere"},
		{ID: "command-light", Label: "Cohere: command-light", Provider: "Cohere"},
	}, c.Models)
	assert.Equal(t, []string{"Professional", "Friendly", "Persuasive", "Apologetic"}, c.Tones)
}

func TestNewRewriterUsesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.OpenAI.RetryBackoffSec = 4
	cfg.OpenAI.ValidationModel = "command-light"

	rw := NewRewriter(cfg, zap.NewNop(), rewriter.Hooks{})

	assert.Equal(t, "command-light", rw.Policy().ValidationModel)
	assert.Equal(t, int64(4), int64(rw.Policy().Backoff.Seconds()))
}

func TestNewLogger(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "rewriter.log")
	log, err := NewLogger(config.LogConfig{Level: "debug", Format: "console", File: file})
	require.NoError(t, err)
	log.Info("hello")
	_ = log.Sync()
	assert.FileExists(t, file)

	_, err = NewLogger(config.LogConfig{Level: "chatty"})
	assert.Error(t, err)
}
