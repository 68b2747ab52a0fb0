package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryTopK int

// queryCmd runs a semantic similarity search.
var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Search chunks by semantic similarity",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer eng.Close()

		results, err := eng.SemanticQuery(cmd.Context(), strings.Join(args, " "), queryTopK)
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(results)
		}

		if len(results) == 0 {
			fmt.Println("no results")
			return nil
		}
		for i, r := range results {
			fmt.Printf("%2d. %-50s score=%.4f\n", i+1, r.ChunkID, r.Score)
			fmt.Printf("    %s\n", firstLine(r.Text))
		}
		return nil
	},
}

// firstLine trims a snippet down to its first line for terminal display.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	rootCmd.AddCommand(queryCmd)
}
