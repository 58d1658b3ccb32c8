package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ibreez3/email-rewriter/diffview"
	"github.com/ibreez3/email-rewriter/rewriter"
)

// MockClient rate-limits the first limited calls and then answers with a
// canned rewrite.
type MockClient struct {
	limited int
	calls   int
}

func (m *MockClient) Generate(ctx context.Context, p rewriter.GenerateParams) (string, error) {
	m.calls++
	if p.Prompt == "test" {
		return "ok", nil
	}
	if m.calls <= m.limited {
		return "", errors.New("429 Too Many Requests: rate limit exceeded")
	}
	if !strings.Contains(p.Prompt, "Original email:") {
		return "", fmt.Errorf("unexpected prompt: %q", p.Prompt)
	}
	return "Dear colleague,\nPlease send the report at your earliest convenience.\nBest regards", nil
}

func main() {
	log, _ := zap.NewDevelopment()
	defer func() { _ = log.Sync() }()
	rw := rewriter.New(rewriter.Policy{Backoff: 50 * time.Millisecond}).WithLogger(log)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if v := rw.ValidateKey(ctx, &MockClient{}); !v.Valid {
		fmt.Println("key validation failed:", v.Error)
		os.Exit(1)
	}

	email := "Hi,\npls send report.\nthx"
	cli := &MockClient{limited: 2}
	res := rw.Rewrite(ctx, cli, rewriter.NewRequest(email, rewriter.ToneProfessional, "mock"), 3)
	if !res.OK() || res.Attempts != 3 || cli.calls != 3 {
		fmt.Println("rewrite after rate limits failed:", res.Error, "attempts:", res.Attempts)
		os.Exit(2)
	}
	for _, l := range diffview.Lines(email, res.Rewritten) {
		fmt.Printf("%-6s %s\n", l.Op, l.Text)
	}

	exhausted := rw.Rewrite(ctx, &MockClient{limited: 10}, rewriter.NewRequest(email, rewriter.ToneFriendly, "mock"), 3)
	if !errors.Is(exhausted.Err(), rewriter.ErrRetriesExhausted) {
		fmt.Println("expected retry exhaustion, got:", exhausted.Error)
		os.Exit(3)
	}
	fmt.Println("mock run passed")
}
