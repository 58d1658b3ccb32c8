package rewriter

import "context"

type AttemptEvent struct {
	Model      string
	Attempt    int
	MaxRetries int
	Err        error
}

type ResultEvent struct {
	Model  string
	Tone   Tone
	Result Result
}

// Hooks lets hosts observe a rewrite without the executor knowing about
// metrics or tracing. Nil callbacks are skipped.
type Hooks struct {
	OnAttempt     func(ctx context.Context, e *AttemptEvent)
	OnRateLimited func(ctx context.Context, e *AttemptEvent)
	OnResult      func(ctx context.Context, e *ResultEvent)
	OnValidate    func(ctx context.Context, v Validation)
}

func (h Hooks) attempt(ctx context.Context, e *AttemptEvent) {
	if h.OnAttempt != nil {
		h.OnAttempt(ctx, e)
	}
}

func (h Hooks) rateLimited(ctx context.Context, e *AttemptEvent) {
	if h.OnRateLimited != nil {
		h.OnRateLimited(ctx, e)
	}
}

func (h Hooks) result(ctx context.Context, e *ResultEvent) {
	if h.OnResult != nil {
		h.OnResult(ctx, e)
	}
}

func (h Hooks) validate(ctx context.Context, v Validation) {
	if h.OnValidate != nil {
		h.OnValidate(ctx, v)
	}
}
