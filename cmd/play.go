package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/btaeng/trivia-map/internal/geo"
	"github.com/btaeng/trivia-map/internal/logger"
	"github.com/btaeng/trivia-map/internal/model"
	"github.com/btaeng/trivia-map/internal/quiz"
)

var playCategory string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the trivia quiz in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}

		relay, _, closeStore, err := newRelay(nil)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		return playLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), ds, relay, model.Category(playCategory))
	},
}

func init() {
	playCmd.Flags().StringVar(&playCategory, "category", string(model.CategoryHistory), "Starting category")
	rootCmd.AddCommand(playCmd)
}

type questioner interface {
	Generate(ctx context.Context, location, category string) (*model.TriviaQuestion, error)
}

const playHelp = `Type a country name to get a question, then the number of your answer.
  :category <name>  switch category
  :region <name>    list countries in a region
  :quit             leave`

// playLoop drives a quiz.Session from line-oriented input. A country name
// plays the role of a map click.
func playLoop(ctx context.Context, in io.Reader, out io.Writer, ds *geo.Dataset, q questioner, category model.Category) error {
	sess := quiz.NewSession(model.CategoryHistory)
	if err := sess.SetCategory(category); err != nil {
		return err
	}

	fmt.Fprintln(out, playHelp)
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "[%s] > ", sess.Category())
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(sc.Text())

		switch {
		case line == "":
			continue
		case line == ":quit" || line == ":q":
			return nil
		case strings.HasPrefix(line, ":category "):
			if err := sess.SetCategory(model.Category(strings.TrimSpace(strings.TrimPrefix(line, ":category ")))); err != nil {
				fmt.Fprintln(out, err)
			}
			continue
		case strings.HasPrefix(line, ":region "):
			region := strings.TrimSpace(strings.TrimPrefix(line, ":region "))
			sess.SetRegion(region)
			for _, f := range ds.InRegion(region) {
				fmt.Fprintf(out, "  %s\n", f.Name)
			}
			continue
		}

		if n, err := strconv.Atoi(line); err == nil {
			if sess.State() != quiz.ShowingQuestion {
				fmt.Fprintln(out, "Pick a country first.")
				continue
			}
			fb, err := sess.Answer(n - 1)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			fmt.Fprintln(out, fb)
			continue
		}

		f, ok := ds.Lookup(line)
		if !ok {
			fmt.Fprintf(out, "No country matches %q.\n", line)
			continue
		}

		ticket := sess.Click(f.Name)
		tq, err := q.Generate(ctx, ticket.Request.Location, ticket.Request.Category)
		if err != nil {
			logger.L().Debug("play_generate_error", "location", f.Name, "err", err)
			sess.Fail(ticket.Seq)
		} else {
			sess.Deliver(ticket.Seq, *tq)
		}
		printQuestion(out, sess.Location(), sess.Question())
	}
}

func printQuestion(out io.Writer, location string, q model.TriviaQuestion) {
	fmt.Fprintf(out, "\n%s: %s\n", location, q.Question)
	for i, c := range q.Choices {
		fmt.Fprintf(out, "  %d) %s\n", i+1, c)
	}
}
