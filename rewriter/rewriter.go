// Package rewriter rewrites emails in a requested tone through a remote
// text-generation service and checks that a credential is accepted by it.
package rewriter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMaxRetries          = 3
	DefaultBackoff             = 21 * time.Second
	DefaultValidationModel     = "command"
	DefaultValidationMaxTokens = 5

	validationPrompt = "test"
)

type Policy struct {
	// Backoff is the fixed delay between rate-limited attempts.
	Backoff             time.Duration
	RateLimitMarker     string
	ValidationModel     string
	ValidationMaxTokens int
}

func DefaultPolicy() Policy {
	return Policy{
		Backoff:             DefaultBackoff,
		RateLimitMarker:     DefaultRateLimitMarker,
		ValidationModel:     DefaultValidationModel,
		ValidationMaxTokens: DefaultValidationMaxTokens,
	}
}

type Rewriter struct {
	policy Policy
	log    *zap.Logger
	hooks  Hooks
	sleep  func(ctx context.Context, d time.Duration) error
}

func New(p Policy) *Rewriter {
	def := DefaultPolicy()
	if p.Backoff <= 0 {
		p.Backoff = def.Backoff
	}
	if p.RateLimitMarker == "" {
		p.RateLimitMarker = def.RateLimitMarker
	}
	if p.ValidationModel == "" {
		p.ValidationModel = def.ValidationModel
	}
	if p.ValidationMaxTokens <= 0 {
		p.ValidationMaxTokens = def.ValidationMaxTokens
	}
	return &Rewriter{policy: p, log: zap.NewNop(), sleep: sleepCtx}
}

func (r *Rewriter) WithLogger(log *zap.Logger) *Rewriter {
	if log != nil {
		r.log = log
	}
	return r
}

func (r *Rewriter) WithHooks(h Hooks) *Rewriter {
	r.hooks = h
	return r
}

func (r *Rewriter) Policy() Policy { return r.policy }

// ValidateKey issues a single trial request with cli. It never retries.
func (r *Rewriter) ValidateKey(ctx context.Context, cli ChatClient) Validation {
	_, err := cli.Generate(ctx, GenerateParams{
		Model:     r.policy.ValidationModel,
		Prompt:    validationPrompt,
		MaxTokens: r.policy.ValidationMaxTokens,
	})
	v := Validation{Valid: true}
	if err != nil {
		err = fmt.Errorf("API key validation failed: %w", err)
		v = Validation{Error: err.Error(), err: err}
		r.log.Warn("api key rejected", zap.String("model", r.policy.ValidationModel), zap.Error(err))
	} else {
		r.log.Debug("api key accepted", zap.String("model", r.policy.ValidationModel))
	}
	r.hooks.validate(ctx, v)
	return v
}

// Rewrite makes at most maxRetries calls to cli. Only rate-limit errors are
// retried, with the fixed policy backoff between calls; there is no wait after
// the last call. maxRetries <= 0 means DefaultMaxRetries.
func (r *Rewriter) Rewrite(ctx context.Context, cli ChatClient, req Request, maxRetries int) Result {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if err := req.Validate(); err != nil {
		return r.finish(ctx, req, failure(err, 0))
	}
	prompt := BuildPrompt(req.Email, req.Tone)
	temperature := req.Temperature
	params := GenerateParams{
		Model:       req.Model,
		Prompt:      prompt,
		Temperature: &temperature,
		MaxTokens:   req.MaxTokens,
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		ev := &AttemptEvent{Model: req.Model, Attempt: attempt + 1, MaxRetries: maxRetries}
		r.log.Debug("rewrite attempt",
			zap.String("model", req.Model),
			zap.Int("attempt", ev.Attempt),
			zap.Int("max_retries", maxRetries))
		r.hooks.attempt(ctx, ev)

		text, err := cli.Generate(ctx, params)
		if err == nil {
			text = strings.TrimSpace(text)
			if text == "" {
				return r.finish(ctx, req, failure(ErrEmptyResponse, ev.Attempt))
			}
			return r.finish(ctx, req, success(text, ev.Attempt))
		}
		if !IsRateLimit(err, r.policy.RateLimitMarker) {
			return r.finish(ctx, req, failure(err, ev.Attempt))
		}

		ev.Err = err
		r.hooks.rateLimited(ctx, ev)
		if ev.Attempt == maxRetries {
			break
		}
		r.log.Info("rate limit exceeded, retrying",
			zap.String("model", req.Model),
			zap.Int("attempt", ev.Attempt),
			zap.Duration("delay", r.policy.Backoff))
		if err := r.sleep(ctx, r.policy.Backoff); err != nil {
			return r.finish(ctx, req, failure(err, ev.Attempt))
		}
	}
	return r.finish(ctx, req, failure(ErrRetriesExhausted, maxRetries))
}

func (r *Rewriter) finish(ctx context.Context, req Request, res Result) Result {
	if res.OK() {
		r.log.Info("rewrite succeeded",
			zap.String("model", req.Model),
			zap.String("tone", string(req.Tone)),
			zap.Int("attempts", res.Attempts))
	} else {
		r.log.Warn("rewrite failed",
			zap.String("model", req.Model),
			zap.String("tone", string(req.Tone)),
			zap.Int("attempts", res.Attempts),
			zap.Error(res.err))
	}
	r.hooks.result(ctx, &ResultEvent{Model: req.Model, Tone: req.Tone, Result: res})
	return res
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
