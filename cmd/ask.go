package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/btaeng/trivia-map/internal/quiz"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <location> <category>",
	Short: "Ask the oracle for one trivia question",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		location, category := args[0], args[1]
		if !quiz.ValidCategory(category) {
			return fmt.Errorf("unknown category %q", category)
		}

		relay, _, closeStore, err := newRelay(nil)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		q, err := relay.Generate(ctx, location, category)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if askJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(q)
		}

		fmt.Fprintln(out, q.Question)
		for i, c := range q.Choices {
			marker := " "
			if i == q.AnswerIndex {
				marker = "*"
			}
			fmt.Fprintf(out, " %s %d) %s\n", marker, i+1, c)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the raw question JSON")
	rootCmd.AddCommand(askCmd)
}
