// file: cmd/backup.go
// version: 1.0.0
// guid: a7c18f13-9104-4593-a608-6415ada74d13

package cmd

import (
	"context"
	"fmt"

	"github.com/jdfalk/readora/internal/backup"
	"github.com/jdfalk/readora/internal/config"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or restore the local store",
	Long: `Backups hold the downloads list and preferences as a gzipped tar archive.
Cached catalog responses are skipped unless --include-cache is given.`,
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a new backup archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := backupConfigFromFlags(cmd)
		cfg.IncludeCache, _ = cmd.Flags().GetBool("include-cache")
		if keep, _ := cmd.Flags().GetInt("keep"); keep >= 0 {
			cfg.MaxBackups = keep
		}
		return withApp(cmd, func(_ context.Context, a *app) error {
			info, err := backup.CreateBackup(a.store, cfg)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d keys, %d bytes)\n", info.Path, info.Keys, info.Size)
			return nil
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backup archives, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := backupConfigFromFlags(cmd)
		backups, err := backup.ListBackups(cfg.BackupDir)
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No backups found.")
			return nil
		}
		for i, b := range backups {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s  %s  %d keys  %d bytes\n",
				i+1, b.Filename, b.CreatedAt.Local().Format("2006-01-02 15:04:05"), b.Keys, b.Size)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Merge a backup archive into the local store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		skipVerify, _ := cmd.Flags().GetBool("no-verify")
		return withApp(cmd, func(_ context.Context, a *app) error {
			n, err := backup.RestoreBackup(args[0], a.store, !skipVerify)
			if err != nil {
				return fmt.Errorf("restore failed after %d keys: %w", n, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d keys from %s\n", n, args[0])
			return nil
		})
	},
}

var backupDeleteCmd = &cobra.Command{
	Use:   "delete <file>",
	Short: "Delete a backup archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := backup.DeleteBackup(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func backupConfigFromFlags(cmd *cobra.Command) backup.BackupConfig {
	cfg := backup.DefaultBackupConfig()
	if config.AppConfig.BackupDir != "" {
		cfg.BackupDir = config.AppConfig.BackupDir
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.BackupDir = dir
	}
	return cfg
}

func init() {
	for _, c := range []*cobra.Command{backupCreateCmd, backupListCmd} {
		c.Flags().String("dir", "", "backup directory (default: backup_dir)")
	}
	backupCreateCmd.Flags().Bool("include-cache", false, "also export cached catalog responses")
	backupCreateCmd.Flags().Int("keep", -1, "number of archives to keep (default 10, 0 keeps all)")
	backupRestoreCmd.Flags().Bool("no-verify", false, "skip the checksum check")

	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupDeleteCmd)
	rootCmd.AddCommand(backupCmd)
}
