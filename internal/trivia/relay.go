// Package trivia turns a (location, category) pair into a multiple-choice
// question by prompting an oracle, and remembers what it has asked so later
// prompts steer away from repeats.
package trivia

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/btaeng/trivia-map/internal/metrics"
	"github.com/btaeng/trivia-map/internal/model"
	"github.com/btaeng/trivia-map/internal/oracle"
)

// ErrOracle wraps failures of the oracle call itself.
var ErrOracle = errors.New("oracle call failed")

// Relay generates trivia questions. It is safe for concurrent use as long
// as its ExclusionStore is.
type Relay struct {
	Oracle     oracle.Oracle
	Model      string
	Exclusions ExclusionStore
	Logger     *slog.Logger
}

// NewRelay wires a relay. A nil store gets a fresh MemoryExclusions and a
// nil logger the slog default.
func NewRelay(o oracle.Oracle, model string, ex ExclusionStore, l *slog.Logger) *Relay {
	if ex == nil {
		ex = NewMemoryExclusions()
	}
	if l == nil {
		l = slog.Default()
	}
	return &Relay{Oracle: o, Model: model, Exclusions: ex, Logger: l}
}

// Generate asks the oracle for one new question about location in
// category. The question text is recorded only after it parsed and
// validated.
func (r *Relay) Generate(ctx context.Context, location, category string) (*model.TriviaQuestion, error) {
	metrics.TriviaRequestsTotal.WithLabelValues(metrics.CategoryLabel(category)).Inc()
	key := model.ExclusionKey{Location: location, Category: category}

	asked, err := r.Exclusions.Questions(ctx, key)
	if err != nil {
		metrics.TriviaFailuresTotal.WithLabelValues(metrics.StageCache).Inc()
		return nil, fmt.Errorf("reading exclusions for %s: %w", key, err)
	}

	r.Logger.Info("trivia_generate", "location", location, "category", category, "excluded", len(asked))
	prompt := BuildPrompt(location, category, asked)

	text, err := r.Oracle.Generate(ctx, r.Model, prompt)
	if err != nil {
		metrics.TriviaFailuresTotal.WithLabelValues(metrics.StageOracle).Inc()
		return nil, fmt.Errorf("%w: %w", ErrOracle, err)
	}
	r.Logger.Debug("trivia_oracle_output", "key", key.String(), "text", text)

	q, err := ParseQuestion(text)
	if err != nil {
		metrics.TriviaFailuresTotal.WithLabelValues(metrics.StageParse).Inc()
		return nil, fmt.Errorf("parsing oracle output: %w", err)
	}
	if err := Validate(q); err != nil {
		metrics.TriviaFailuresTotal.WithLabelValues(metrics.StageShape).Inc()
		return nil, err
	}

	if err := r.Exclusions.Add(ctx, key, q.Question); err != nil {
		metrics.TriviaFailuresTotal.WithLabelValues(metrics.StageCache).Inc()
		return nil, fmt.Errorf("recording question for %s: %w", key, err)
	}
	metrics.ExclusionQuestionsTotal.Inc()

	return q, nil
}
