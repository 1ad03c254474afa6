// file: cmd/cache.go
// version: 1.0.0
// guid: effecabb-b96a-40d2-8cfa-bcfc0974a3bd

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached catalog responses",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached catalog response",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(_ context.Context, a *app) error {
			n, err := a.svc.ClearCache()
			if err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached entries.\n", n)
			return nil
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
