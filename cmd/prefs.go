// file: cmd/prefs.go
// version: 1.0.0
// guid: e6aee9ec-3743-4baf-a018-1c7e73e6ea16

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdfalk/readora/internal/preferences"
	"github.com/spf13/cobra"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change display preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPrefsGet(cmd)
	},
}

var prefsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show display preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPrefsGet(cmd)
	},
}

var prefsSetCmd = &cobra.Command{
	Use:       "set <theme|font-size> <value>",
	Short:     "Change a display preference",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"theme", "font-size"},
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(args[0])
		value := strings.ToLower(strings.TrimSpace(args[1]))
		return withApp(cmd, func(_ context.Context, a *app) error {
			var err error
			switch name {
			case "theme":
				err = a.svc.SetTheme(preferences.Theme(value))
			case "font-size", "fontsize", "font_size":
				err = a.svc.SetFontSize(preferences.FontSize(value))
			default:
				return fmt.Errorf("unknown preference %q (want theme or font-size)", args[0])
			}
			if err != nil {
				return err
			}
			return printPrefs(cmd, a.svc.Preferences())
		})
	},
}

func runPrefsGet(cmd *cobra.Command) error {
	return withApp(cmd, func(_ context.Context, a *app) error {
		return printPrefs(cmd, a.svc.Preferences())
	})
}

func printPrefs(cmd *cobra.Command, p preferences.Snapshot) error {
	fmt.Fprintf(cmd.OutOrStdout(), "theme:     %s\n", p.Theme)
	fmt.Fprintf(cmd.OutOrStdout(), "font-size: %s\n", p.FontSize)
	return nil
}

func init() {
	prefsCmd.AddCommand(prefsGetCmd)
	prefsCmd.AddCommand(prefsSetCmd)
	rootCmd.AddCommand(prefsCmd)
}
