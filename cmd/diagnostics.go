// file: cmd/diagnostics.go
// version: 2.0.0
// guid: 49f2992d-76a1-4a78-91f4-37365861364a

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/jdfalk/readora/internal/config"
	"github.com/jdfalk/readora/internal/database"
	"github.com/spf13/cobra"
)

var (
	diagnosticsCmd = &cobra.Command{
		Use:   "diagnostics",
		Short: "Debugging helpers",
		Long:  "Diagnostic utilities for inspecting the local store.",
	}

	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "List stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			prefix, _ := cmd.Flags().GetString("prefix")
			raw, _ := cmd.Flags().GetBool("raw")
			return runDiagnosticsKeys(cmd, limit, prefix, raw)
		},
	}
)

func init() {
	keysCmd.Flags().Int("limit", 50, "Number of keys to display")
	keysCmd.Flags().String("prefix", "", "Only keys starting with this prefix (e.g. cache_)")
	keysCmd.Flags().Bool("raw", false, "Show a preview of each stored value")

	diagnosticsCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(diagnosticsCmd)
}

func runDiagnosticsKeys(cmd *cobra.Command, limit int, prefix string, raw bool) error {
	if limit <= 0 {
		return errors.New("limit must be positive")
	}

	store, err := database.OpenStore(config.AppConfig.DatabaseType, config.AppConfig.DatabasePath, config.AppConfig.EnableSQLite)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	return listKeys(cmd, store, limit, prefix, raw)
}

func listKeys(cmd *cobra.Command, store database.Store, limit int, prefix string, raw bool) error {
	out := cmd.OutOrStdout()
	keys, err := store.ListKeys(prefix)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	if len(keys) == 0 {
		fmt.Fprintln(out, "No keys matched the requested prefix.")
		return nil
	}

	for i, key := range keys {
		if i >= limit {
			fmt.Fprintf(out, "... %d more\n", len(keys)-limit)
			break
		}
		if !raw {
			fmt.Fprintln(out, key)
			continue
		}
		val, ok, err := store.GetString(key)
		if err != nil || !ok {
			fmt.Fprintf(out, "Key: %s (unreadable: %v)\n", key, err)
			continue
		}
		fmt.Fprintf(out, "Key: %s\n", key)
		fmt.Fprintf(out, "Value length: %d bytes\n", len(val))
		fmt.Fprintf(out, "Value preview: %s\n", truncateString(val, 500))
		fmt.Fprintln(out, "---")
	}
	return nil
}

func promptYesNo(cmd *cobra.Command, action string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s? Type 'yes' to confirm: ", action)
	reader := bufio.NewReader(cmd.InOrStdin())
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes", nil
}
