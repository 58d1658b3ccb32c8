package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ibreez3/email-rewriter/config"
	"github.com/ibreez3/email-rewriter/diffview"
	"github.com/ibreez3/email-rewriter/openai"
	"github.com/ibreez3/email-rewriter/rewriter"
)

// ClientFactory builds a generation client bound to one credential.
type ClientFactory func(apiKey string) rewriter.ChatClient

func OpenAIClientFactory(cfg config.Config) ClientFactory {
	return func(apiKey string) rewriter.ChatClient {
		return openai.NewClient(apiKey, openai.Options{
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.RequestTimeout(),
		})
	}
}

// NewRewriter builds the rewriter policy from configuration.
func NewRewriter(cfg config.Config, log *zap.Logger, hooks rewriter.Hooks) *rewriter.Rewriter {
	return rewriter.New(rewriter.Policy{
		Backoff:             cfg.RetryBackoff(),
		RateLimitMarker:     cfg.OpenAI.RateLimitMarker,
		ValidationModel:     cfg.OpenAI.ValidationModel,
		ValidationMaxTokens: cfg.OpenAI.ValidationMaxTokens,
	}).WithLogger(log.Named("rewriter")).WithHooks(hooks)
}

type Status string

const (
	StatusSuccess Status = "success"
	// StatusInvalid marks input problems found before any remote call.
	StatusInvalid  Status = "invalid"
	StatusRejected Status = "rejected"
	StatusError    Status = "error"
)

const (
	MsgEmptyEmail   = "Please enter an email to rewrite."
	MsgNoModels     = "No models available. Please check your API key and try again."
	MsgInvalidModel = "Please select a valid model."
	MsgInvalidTone  = "Please select a valid tone."
	MsgMissingKey   = "Please provide an API key."
)

type Input struct {
	Email       string
	Tone        string
	Model       string
	APIKey      string
	ShowDiff    bool
	Temperature *float64
	MaxTokens   int
}

type Output struct {
	Status    Status          `json:"status"`
	Rewritten string          `json:"rewritten_email,omitempty"`
	Diff      []diffview.Line `json:"diff,omitempty"`
	Stats     *diffview.Stats `json:"stats,omitempty"`
	Error     string          `json:"error,omitempty"`
	Attempts  int             `json:"attempts"`
}

type Service struct {
	cfg       config.Config
	rw        *rewriter.Rewriter
	newClient ClientFactory
	log       *zap.Logger
}

func New(cfg config.Config, rw *rewriter.Rewriter, newClient ClientFactory, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cfg: cfg, rw: rw, newClient: newClient, log: log}
}

func (s *Service) Config() config.Config { return s.cfg }

// apiKey prefers the caller's key over the one from the environment.
func (s *Service) apiKey(supplied string) string {
	if k := strings.TrimSpace(supplied); k != "" {
		return k
	}
	return s.cfg.OpenAI.APIKey
}

func (s *Service) Validate(ctx context.Context, apiKey string) rewriter.Validation {
	key := s.apiKey(apiKey)
	if key == "" {
		return rewriter.Validation{Error: MsgMissingKey}
	}
	return s.rw.ValidateKey(ctx, s.newClient(key))
}

// Rewrite runs one user action: input checks, optional key validation, the
// rewrite itself and, when asked, the diff against the original.
func (s *Service) Rewrite(ctx context.Context, in Input) Output {
	if strings.TrimSpace(in.Email) == "" {
		return Output{Status: StatusInvalid, Error: MsgEmptyEmail}
	}
	if len(s.cfg.Models) == 0 {
		return Output{Status: StatusInvalid, Error: MsgNoModels}
	}
	model, ok := s.resolveModel(in.Model)
	if !ok {
		return Output{Status: StatusInvalid, Error: MsgInvalidModel}
	}
	tone, err := rewriter.ParseTone(in.Tone)
	if err != nil {
		return Output{Status: StatusInvalid, Error: MsgInvalidTone}
	}
	key := s.apiKey(in.APIKey)
	if key == "" {
		return Output{Status: StatusInvalid, Error: MsgMissingKey}
	}

	cli := s.newClient(key)
	if s.cfg.Server.ValidateOnRewrite {
		if v := s.rw.ValidateKey(ctx, cli); !v.Valid {
			return Output{Status: StatusRejected, Error: "Invalid " + s.cfg.OpenAI.Provider + " API key. " + v.Error}
		}
	}

	req := rewriter.NewRequest(in.Email, tone, model)
	req.Temperature = s.cfg.Rewrite.Temperature
	req.MaxTokens = s.cfg.Rewrite.MaxTokens
	if in.Temperature != nil {
		req.Temperature = *in.Temperature
	}
	if in.MaxTokens > 0 {
		req.MaxTokens = in.MaxTokens
	}
	if err := req.Validate(); err != nil {
		return Output{Status: StatusInvalid, Error: err.Error()}
	}

	s.log.Debug("rewriting email",
		zap.String("model", model),
		zap.String("tone", string(tone)),
		zap.Int("email_chars", len(in.Email)))
	res := s.rw.Rewrite(ctx, cli, req, s.cfg.OpenAI.MaxRetries)
	if !res.OK() {
		return Output{
			Status:   StatusError,
			Error:    s.cfg.OpenAI.Provider + " Error: " + res.Error,
			Attempts: res.Attempts,
		}
	}

	out := Output{Status: StatusSuccess, Rewritten: res.Rewritten, Attempts: res.Attempts}
	if in.ShowDiff {
		out.Diff = diffview.Lines(in.Email, res.Rewritten)
		stats := diffview.Summarize(out.Diff)
		out.Stats = &stats
	}
	return out
}
