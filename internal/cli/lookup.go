package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// lookupCmd finds chunks declaring a symbol by exact name.
var lookupCmd = &cobra.Command{
	Use:   "lookup <symbol>",
	Short: "Look up chunks declaring a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer eng.Close()

		repo, err := eng.Repository()
		if err != nil {
			return err
		}

		chunks := repo.LookupBySymbol(args[0])
		if jsonOut {
			return printJSON(chunks)
		}

		if len(chunks) == 0 {
			fmt.Printf("no declarations of %q\n", args[0])
			return nil
		}
		for _, c := range chunks {
			fmt.Printf("%s  %s:%d-%d  (%s, %s)\n", c.ID, c.FilePath, c.StartLine, c.EndLine, c.Kind, c.Language)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
