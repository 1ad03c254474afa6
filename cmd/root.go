// file: cmd/root.go
// version: 2.0.0
// guid: 8553bf09-782f-44ae-871b-2300fd0195ab

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/jdfalk/readora/internal/catalog"
	"github.com/jdfalk/readora/internal/config"
	"github.com/jdfalk/readora/internal/database"
	"github.com/jdfalk/readora/internal/library"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var databasePath string
var databaseType string
var enableSQLite bool
var catalogURL string
var logLevel string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "readora",
	Short: "Browse, search and save free programming books",
	Long: `Readora browses a public catalog of free books: recently added titles,
full-text search and per-book details. Catalog responses are cached locally
with a time-to-live, saved books are kept in a downloads list, and display
preferences persist between runs.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(config.AppConfig.LogLevel, cmd.ErrOrStderr())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.readora.yaml)")
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "readora.pebble", "path to the local store")
	rootCmd.PersistentFlags().StringVar(&databaseType, "db-type", "pebble", "store type: pebble (default), sqlite or memory")
	rootCmd.PersistentFlags().BoolVar(&enableSQLite, "enable-sqlite3-i-know-the-risks", false, "enable the SQLite3 store (WARNING: cross-compilation issues, PebbleDB recommended)")
	rootCmd.PersistentFlags().StringVar(&catalogURL, "catalog-url", catalog.DefaultBaseURL, "catalog API base URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	bindFlags()
}

func bindFlags() {
	viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("database_type", rootCmd.PersistentFlags().Lookup("db-type"))
	viper.BindPFlag("enable_sqlite3_i_know_the_risks", rootCmd.PersistentFlags().Lookup("enable-sqlite3-i-know-the-risks"))
	viper.BindPFlag("catalog_base_url", rootCmd.PersistentFlags().Lookup("catalog-url"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".readora")
	}

	viper.SetEnvPrefix("readora")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Ensure database directory exists
	if databasePath != "" {
		dbDir := filepath.Dir(databasePath)
		if dbDir != "." {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				fmt.Fprintf(os.Stderr, "Error creating database directory: %v\n", err)
			}
		}
	}

	config.InitConfig()
}

// app bundles the handles a command needs.
type app struct {
	store   database.Store
	catalog *catalog.Client
	svc     *library.Service
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
	}
}

// openApp opens the configured store and wires the library service over it.
func openApp() (*app, error) {
	cfg := config.AppConfig
	store, err := database.OpenStore(cfg.DatabaseType, cfg.DatabasePath, cfg.EnableSQLite)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	client := catalog.NewClient(cfg.CatalogBaseURL,
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.CatalogTimeout}),
		catalog.WithRateLimit(cfg.CatalogRequestsPerSecond),
	)
	svc := library.NewFromStore(client, store, library.Policy{
		RecentTTL:  cfg.RecentTTL,
		SearchTTL:  cfg.SearchTTL,
		DetailsTTL: cfg.DetailsTTL,
	})
	return &app{store: store, catalog: client, svc: svc}, nil
}

// withApp runs fn with an opened app and a context bounded by the catalog timeout.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, config.AppConfig.CatalogTimeout)
	defer cancel()

	err = fn(ctx, a)
	if warn := a.svc.StorageWarning(); warn != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: couldn't save to local storage: %v\n", warn)
	}
	return err
}
