// file: cmd/config_cmd.go
// version: 1.0.0
// guid: 9ead3a30-390f-4ad6-a51c-3f74042c1581

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jdfalk/readora/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or write the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the effective configuration to a YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configTarget(args)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.SaveConfigToFile(config.AppConfig, path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print the effective configuration, optionally merged with a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.AppConfig
		if len(args) == 1 {
			loaded, err := config.LoadConfigFromFile(cfg, args[0])
			if err != nil {
				return err
			}
			cfg = loaded
		}
		out, err := config.MarshalYAML(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func configTarget(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config file path: %w", err)
	}
	return filepath.Join(home, ".readora.yaml"), nil
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
