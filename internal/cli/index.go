package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// indexCmd runs one full indexing pass and reports what was built.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the repository and print a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer eng.Close()

		report, err := eng.LastReport()
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(report)
		}

		fmt.Printf("Indexed %d files into %d chunks (%d symbols, %d text blocks) in %v\n",
			report.Stats.Files, report.Stats.Chunks, report.Stats.Symbols,
			report.Stats.TextBlocks, report.Duration.Round(time.Millisecond))
		fmt.Printf("Cross-references: %d   Vectors: %d\n", report.References, report.Vectors)
		for _, w := range report.Warnings {
			fmt.Printf("warning: skipped %s: %s\n", w.Path, w.Reason)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
