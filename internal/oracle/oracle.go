// Package oracle wraps the text-generation services that write trivia
// questions. Every provider takes a model name and a prompt and returns the
// raw completion text; interpreting that text is the caller's job.
package oracle

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/btaeng/trivia-map/internal/metrics"
)

const systemPrompt = `You write short, factual multiple-choice geography trivia. You always answer with a single JSON object and nothing else.`

// Oracle generates free-form text from a prompt.
type Oracle interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Func adapts a plain function to Oracle.
type Func func(ctx context.Context, model, prompt string) (string, error)

func (f Func) Generate(ctx context.Context, model, prompt string) (string, error) {
	return f(ctx, model, prompt)
}

// New builds the client for a provider name.
func New(provider, apiKey string) (Oracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("no API key configured for oracle provider %q", provider)
	}
	switch provider {
	case "gemini":
		return NewGeminiClient(apiKey), nil
	case "anthropic":
		return NewAnthropicClient(apiKey), nil
	case "openai":
		return NewOpenAIClient(apiKey), nil
	}
	return nil, fmt.Errorf("unknown oracle provider %q", provider)
}

// WithTimeout bounds every call. A zero duration leaves calls unbounded.
func WithTimeout(o Oracle, d time.Duration) Oracle {
	if d <= 0 {
		return o
	}
	return Func(func(ctx context.Context, model, prompt string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return o.Generate(ctx, model, prompt)
	})
}

// Instrument records call latency under the provider label.
func Instrument(provider string, o Oracle) Oracle {
	return Func(func(ctx context.Context, model, prompt string) (string, error) {
		start := time.Now()
		text, err := o.Generate(ctx, model, prompt)
		metrics.OracleDurationMs.WithLabelValues(provider).Observe(float64(time.Since(start).Milliseconds()))
		return text, err
	})
}

func defaultHTTPClient() *http.Client {
	return &http.Client{}
}
