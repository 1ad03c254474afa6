// file: cmd/library.go
// version: 1.0.0
// guid: 4e0c7597-d495-4fcb-a47e-f7dd2cf7a363

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdfalk/readora/internal/config"
	"github.com/jdfalk/readora/internal/fetch"
	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save <id>",
	Short: "Add a book to the downloads list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.TrimSpace(args[0])
		fetchFile, _ := cmd.Flags().GetBool("fetch")
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = config.AppConfig.DownloadDir
		}

		return withApp(cmd, func(ctx context.Context, a *app) error {
			book, err := a.svc.BookDetails(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to load book %s: %w", id, err)
			}
			added, err := a.svc.Save(book)
			if err != nil {
				return fmt.Errorf("failed to save %s: %w", id, err)
			}
			if added {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", book.DisplayTitle())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Already saved: %s\n", book.DisplayTitle())
			}

			if !fetchFile {
				return nil
			}
			// The file transfer is not bound by the catalog timeout.
			path, err := fetch.New(dir, cmd.ErrOrStderr()).Fetch(cmd.Context(), book)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a book from the downloads list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.TrimSpace(args[0])
		return withApp(cmd, func(_ context.Context, a *app) error {
			if !a.svc.IsSaved(id) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is not in the downloads list.\n", id)
				return nil
			}
			if err := a.svc.Remove(id); err != nil {
				return fmt.Errorf("failed to remove %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
			return nil
		})
	},
}

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "List saved books",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		return withApp(cmd, func(_ context.Context, a *app) error {
			printDownloads(cmd.OutOrStdout(), a.svc.Downloads(filter))
			return nil
		})
	},
}

var downloadsCmd = &cobra.Command{
	Use:   "downloads",
	Short: "Manage the downloads list",
}

var downloadsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved book",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("yes")
		return withApp(cmd, func(_ context.Context, a *app) error {
			n := len(a.svc.Downloads(""))
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved books.")
				return nil
			}
			if !force {
				confirmed, err := promptYesNo(cmd, fmt.Sprintf("Delete %d saved books", n))
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted. Nothing deleted.")
					return nil
				}
			}
			if err := a.svc.ClearDownloads(); err != nil {
				return fmt.Errorf("failed to clear downloads: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d saved books.\n", n)
			return nil
		})
	},
}

func init() {
	saveCmd.Flags().Bool("fetch", false, "also download the book file")
	saveCmd.Flags().String("dir", "", "directory for fetched files (default: download_dir)")
	libraryCmd.Flags().String("filter", "", "fuzzy filter on title, subtitle and authors")
	downloadsClearCmd.Flags().Bool("yes", false, "skip confirmation prompt")

	downloadsCmd.AddCommand(downloadsClearCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(libraryCmd)
	rootCmd.AddCommand(downloadsCmd)
}
