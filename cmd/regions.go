package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List region labels in the boundary dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		counts := ds.RegionCounts()

		fmt.Fprintf(out, "Regions\n")
		fmt.Fprintf(out, "=======\n")
		for _, r := range ds.Regions() {
			fmt.Fprintf(out, "  %-28s %3d\n", r, counts[r])
		}
		fmt.Fprintf(out, "\nTotal features: %d\n", ds.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}
