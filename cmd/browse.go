// file: cmd/browse.go
// version: 1.0.0
// guid: 086a7825-e554-4540-b85d-3e38ad775bf3

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently added books",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			books, err := a.svc.RecentBooks(ctx)
			if err != nil {
				return fmt.Errorf("failed to load recent books: %w", err)
			}
			printBooks(cmd.OutOrStdout(), books)
			return nil
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withApp(cmd, func(ctx context.Context, a *app) error {
			books, err := a.svc.Search(ctx, query)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			printBooks(cmd.OutOrStdout(), books)
			return nil
		})
	},
}

// showCmd prints full details. A saved book is still shown from its saved
// record when the catalog cannot be reached.
var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details for a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.TrimSpace(args[0])
		return withApp(cmd, func(ctx context.Context, a *app) error {
			rec, saved := a.svc.SavedBook(id)
			if !saved {
				book, err := a.svc.BookDetails(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to load book %s: %w", id, err)
				}
				printBookDetails(cmd.OutOrStdout(), book, false)
				return nil
			}

			book, err := a.svc.BookDetailsOrFallback(ctx, rec.Book)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: showing saved copy, details unavailable: %v\n", err)
			}
			printBookDetails(cmd.OutOrStdout(), book, true)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(showCmd)
}
