package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/btaeng/trivia-map/internal/geo"
	"github.com/btaeng/trivia-map/internal/logger"
	"github.com/btaeng/trivia-map/internal/model"
	"github.com/btaeng/trivia-map/internal/oracle"
	"github.com/btaeng/trivia-map/internal/quiz"
)

var (
	genRegion      string
	genCategory    string
	genCount       int
	genConcurrency int
	genOut         string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Batch-generate questions for every country in a region",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !quiz.ValidCategory(genCategory) {
			return fmt.Errorf("unknown category %q", genCategory)
		}
		if genCount < 1 {
			return fmt.Errorf("--count must be at least 1")
		}

		ds, err := loadDataset()
		if err != nil {
			return err
		}

		pacer := oracle.NewPacer(cfg.Oracle.RateLimit)
		relay, _, closeStore, err := newRelay(pacer.Wrap)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		set, err := generateSet(ctx, ds, relay, genRegion, genCategory, genCount, genConcurrency)
		if err != nil {
			return err
		}
		set.Model = cfg.Oracle.Model

		var out io.Writer = cmd.OutOrStdout()
		if genOut != "" {
			f, err := os.Create(genOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(set); err != nil {
			return fmt.Errorf("writing question set: %w", err)
		}
		if genOut != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d questions to %s\n", len(set.Questions), genOut)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&genRegion, "region", "", "Region label to cover (required)")
	generateCmd.Flags().StringVar(&genCategory, "category", string(model.CategoryHistory), "Trivia category")
	generateCmd.Flags().IntVar(&genCount, "count", 1, "Questions per country")
	generateCmd.Flags().IntVar(&genConcurrency, "concurrency", 4, "Countries generated in parallel")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "Output file (default stdout)")
	_ = generateCmd.MarkFlagRequired("region")
	rootCmd.AddCommand(generateCmd)
}

// generateSet asks count questions for each country in region. Questions
// for one country are asked in sequence so each prompt excludes the ones
// before it. A failed question is logged and skipped.
func generateSet(ctx context.Context, ds *geo.Dataset, q questioner, region, category string, count, concurrency int) (*model.QuestionSet, error) {
	features := ds.InRegion(region)
	if len(features) == 0 {
		return nil, fmt.Errorf("no countries in region %q", region)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu        sync.Mutex
		questions = make([]model.GeneratedQuestion, 0, len(features)*count)
		failures  int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, f := range features {
		g.Go(func() error {
			for i := 0; i < count; i++ {
				tq, err := q.Generate(ctx, f.Name, category)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					logger.L().Warn("generate_question_error", "location", f.Name, "n", i+1, "err", err)
					mu.Lock()
					failures++
					mu.Unlock()
					continue
				}
				mu.Lock()
				questions = append(questions, model.GeneratedQuestion{
					ID:       uuid.NewString(),
					Location: f.Name,
					Region:   f.Region,
					Category: category,
					Trivia:   *tq,
				})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Location < questions[j].Location
	})

	logger.L().Info("generate_done",
		"region", region,
		"category", category,
		"questions", len(questions),
		"failures", failures,
	)

	return &model.QuestionSet{
		Region:      region,
		Category:    category,
		Questions:   questions,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
