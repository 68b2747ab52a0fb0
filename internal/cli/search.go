package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchLanguage string
	searchLimit    int
)

// searchCmd runs a keyword search with full-text query syntax.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Keyword search over chunk text",
	Long: `Search chunk text with full-text query syntax: field scoping
(name:Parse), boolean operators (+required -excluded), phrases ("exact
match"), and wildcards (Pars*).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer eng.Close()

		results, err := eng.TextSearch(cmd.Context(), strings.Join(args, " "), searchLanguage, searchLimit)
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
			for _, h := range r.Highlights {
				fmt.Printf("    %s\n", firstLine(h))
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchLanguage, "language", "l", "", "restrict to one language")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 15, "maximum results")
	rootCmd.AddCommand(searchCmd)
}
