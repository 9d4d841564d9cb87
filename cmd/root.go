package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/boardcfg/internal/output"
	"github.com/joescharf/boardcfg/internal/service"
	"github.com/joescharf/boardcfg/internal/store"
	"github.com/joescharf/boardcfg/internal/tracker"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
	dryRun  bool

	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "boardcfg",
	Short: "Board workflow configuration - map Jira taxonomy onto board workflow",
	Long: `boardcfg derives a board workflow configuration from Jira metadata.
It classifies issue types, statuses and link types into board categories
and workflow roles, lets you review and edit the result, and stores it.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/boardcfg/config.yaml)")
	rootCmd.PersistentFlags().String("fixture", "", "Read tracker metadata from a YAML file instead of Jira")
	_ = viper.BindPFlag("tracker.fixture", rootCmd.PersistentFlags().Lookup("fixture"))
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Jira credentials usually live in a .env next to the project.
	_ = godotenv.Load()

	viper.SetEnvPrefix("BOARDCFG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	dir, _ := configDirFunc()
	setDefaults(dir)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func setDefaults(dir string) {
	viper.SetDefault("state_dir", dir)
	viper.SetDefault("db_path", filepath.Join(dir, "boardcfg.db"))
	viper.SetDefault("jira.url", "")
	viper.SetDefault("jira.email", "")
	viper.SetDefault("jira.api_token", "")
	viper.SetDefault("jira.project_key", "")
	viper.SetDefault("tracker.fixture", "")
	viper.SetDefault("port", 8080)
	viper.SetDefault("log_level", "info")
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	// The store is opened lazily so config/version run without a database.
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dbPath := viper.GetString("db_path")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(context.Background()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

// getSource returns the configured tracker, or nil when none is configured.
// A fixture file takes precedence over Jira.
func getSource() tracker.Source {
	if fixture := viper.GetString("tracker.fixture"); fixture != "" {
		return tracker.NewFileSource(fixture)
	}
	if viper.GetString("jira.url") == "" {
		return nil
	}
	return tracker.NewJiraClient(tracker.JiraConfig{
		BaseURL:    viper.GetString("jira.url"),
		Email:      viper.GetString("jira.email"),
		APIToken:   viper.GetString("jira.api_token"),
		ProjectKey: viper.GetString("jira.project_key"),
	}, nil)
}

// getService wires the store and tracker into a service.
func getService(logger *slog.Logger) (*service.Service, error) {
	s, err := getStore()
	if err != nil {
		return nil, err
	}
	return service.New(s, getSource(), logger), nil
}

// newLogger returns a text logger on w. CLI commands only show warnings
// unless --verbose is set; servers use log_level.
func newLogger(w io.Writer, server bool) *slog.Logger {
	level := slog.LevelWarn
	if server {
		level = parseLevel(viper.GetString("log_level"))
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
