package rewriter

import "context"

type GenerateParams struct {
	Model       string
	Prompt      string
	Temperature *float64
	MaxTokens   int
}

// ChatClient is the remote text-generation capability. Implementations carry
// their own credential; a new one is built per caller-supplied key.
type ChatClient interface {
	Generate(ctx context.Context, p GenerateParams) (string, error)
}
