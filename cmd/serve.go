// file: cmd/serve.go
// version: 1.0.0
// guid: 50dd3d4f-e713-45bf-83a0-04e1f8d11d75

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jdfalk/readora/internal/config"
	"github.com/jdfalk/readora/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	Long:  `Start an HTTP server exposing browse, search, downloads and preferences as a JSON API.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Using database: %s (%s)\n", config.AppConfig.DatabasePath, config.AppConfig.DatabaseType)
		fmt.Fprintf(cmd.OutOrStdout(), "Using catalog: %s\n", a.catalog.BaseURL())

		cfg, err := serverConfigFromFlags(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.NewServer(a.svc, cfg).Start(ctx)
	},
}

func serverConfigFromFlags(cmd *cobra.Command) (server.ServerConfig, error) {
	cfg := server.GetDefaultServerConfig()
	if config.AppConfig.ServerHost != "" {
		cfg.Host = config.AppConfig.ServerHost
	}
	if config.AppConfig.ServerPort != "" {
		cfg.Port = config.AppConfig.ServerPort
	}
	cfg.RequestsPerMinute = config.AppConfig.ServerRequestsPerMinute

	// Override with command line flags if provided
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetString("port")
	}
	if cmd.Flags().Changed("host") {
		cfg.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("rate-limit") {
		cfg.RequestsPerMinute, _ = cmd.Flags().GetInt("rate-limit")
	}
	durations := []struct {
		flag string
		dst  *time.Duration
	}{
		{"read-timeout", &cfg.ReadTimeout},
		{"write-timeout", &cfg.WriteTimeout},
		{"idle-timeout", &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if !cmd.Flags().Changed(d.flag) {
			continue
		}
		raw, _ := cmd.Flags().GetString(d.flag)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid --%s %q: %w", d.flag, raw, err)
		}
		*d.dst = parsed
	}
	return cfg, nil
}

func init() {
	serveCmd.Flags().String("port", "8484", "port to run the web server on")
	serveCmd.Flags().String("host", "127.0.0.1", "host to bind the web server to")
	serveCmd.Flags().Int("rate-limit", 120, "requests per minute per client IP (0 disables)")
	serveCmd.Flags().String("read-timeout", "15s", "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("write-timeout", "30s", "write timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("idle-timeout", "60s", "idle timeout (e.g. 60s, 2m)")

	rootCmd.AddCommand(serveCmd)
}
