package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codescope/internal/xref"
)

var xrefCentralLimit int

// xrefCmd groups cross-reference queries.
var xrefCmd = &cobra.Command{
	Use:   "xref",
	Short: "Query cross-references and the file dependency graph",
}

var xrefSymbolCmd = &cobra.Command{
	Use:   "symbol <name>",
	Short: "List chunks referencing a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer eng.Close()

		refs, err := eng.References()
		if err != nil {
			return err
		}

		matches := xref.ReferencesTo(refs, args[0])
		if jsonOut {
			return printJSON(matches)
		}

		if len(matches) == 0 {
			fmt.Printf("no references to %q\n", args[0])
			return nil
		}
		for _, ref := range matches {
			fmt.Printf("%s  referenced from %s\n", ref.Symbol, ref.FromChunkID)
		}
		return nil
	},
}

var xrefDepsCmd = &cobra.Command{
	Use:   "deps <file>",
	Short: "List files a file depends on",
	Args:  cobra.ExactArgs(1),
	RunE:  fileGraphQuery(func(fg *xref.FileGraph, path string) []string { return fg.Dependencies(path) }),
}

var xrefDependentsCmd = &cobra.Command{
	Use:   "dependents <file>",
	Short: "List files depending on a file",
	Args:  cobra.ExactArgs(1),
	RunE:  fileGraphQuery(func(fg *xref.FileGraph, path string) []string { return fg.Dependents(path) }),
}

var xrefCentralCmd = &cobra.Command{
	Use:   "central",
	Short: "Rank files by how many others depend on them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer eng.Close()

		fg, err := eng.FileGraph()
		if err != nil {
			return err
		}

		ranks := fg.CentralFiles(xrefCentralLimit)
		if jsonOut {
			return printJSON(ranks)
		}
		for _, r := range ranks {
			fmt.Printf("%4d  %s\n", r.Dependents, r.Path)
		}
		return nil
	},
}

var xrefEntriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List entry-point files (depended on by nothing)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer eng.Close()

		fg, err := eng.FileGraph()
		if err != nil {
			return err
		}

		entries := fg.EntryPoints()
		if jsonOut {
			return printJSON(entries)
		}
		for _, path := range entries {
			fmt.Println(path)
		}
		return nil
	},
}

// fileGraphQuery builds a RunE for the depth-1 file graph lookups.
func fileGraphQuery(query func(*xref.FileGraph, string) []string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer eng.Close()

		fg, err := eng.FileGraph()
		if err != nil {
			return err
		}

		paths := query(fg, args[0])
		if jsonOut {
			return printJSON(paths)
		}
		for _, path := range paths {
			fmt.Println(path)
		}
		return nil
	}
}

func init() {
	xrefCentralCmd.Flags().IntVarP(&xrefCentralLimit, "limit", "n", 10, "maximum files to show")
	xrefCmd.AddCommand(xrefSymbolCmd, xrefDepsCmd, xrefDependentsCmd, xrefCentralCmd, xrefEntriesCmd)
	rootCmd.AddCommand(xrefCmd)
}
