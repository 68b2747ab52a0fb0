package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// watchCmd indexes the repository and rebuilds on file changes.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Index the repository and reindex on file changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eng, err := buildEngine(ctx)
		if err != nil {
			return err
		}
		defer eng.Close()

		fmt.Println("Watching for changes (Ctrl-C to stop)...")
		if err := eng.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
