// Package cmd implements the command-line interface for the session viewer.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/north-cloud/session-viewer/internal/config"
)

// Viper keys.
const (
	keyConfig   = "config"
	keyDebug    = "service.debug"
	keyLogLevel = "logging.level"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug mode for all commands.
	Debug bool

	// logLevel overrides logging.level.
	logLevel string

	// rootCmd represents the root command for the session viewer CLI.
	rootCmd = &cobra.Command{
		Use:   "session-viewer",
		Short: "Map interaction session analytics",
		Long: `Analyzes recorded map interaction sessions: extracts characteristic points,
clusters them into stays, summarizes moves between stays and serves the results
to a synchronized two-pane comparison viewer.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env file early so environment variables are available
	_ = godotenv.Load()

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $CONFIG_PATH or ./config.yml)")
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(analyzeCommand())
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(layersCommand())
	rootCmd.AddCommand(versionCommand())
}

// initConfig binds flags and environment variables to viper.
func initConfig() error {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.BindPFlag(keyConfig, rootCmd.PersistentFlags().Lookup("config")); err != nil {
		return fmt.Errorf("failed to bind config flag: %w", err)
	}
	if err := viper.BindPFlag(keyDebug, rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}
	if err := viper.BindPFlag(keyLogLevel, rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		return fmt.Errorf("failed to bind log-level flag: %w", err)
	}

	if err := viper.BindEnv(keyConfig, "CONFIG_PATH"); err != nil {
		return fmt.Errorf("failed to bind CONFIG_PATH: %w", err)
	}
	if err := viper.BindEnv(keyDebug, "APP_DEBUG"); err != nil {
		return fmt.Errorf("failed to bind APP_DEBUG: %w", err)
	}
	if err := viper.BindEnv(keyLogLevel, "LOG_LEVEL"); err != nil {
		return fmt.Errorf("failed to bind LOG_LEVEL: %w", err)
	}
	return nil
}

// configPath resolves --config, then CONFIG_PATH, then the default.
func configPath() string {
	if path := viper.GetString(keyConfig); path != "" {
		return path
	}
	return config.Path()
}

// loadConfig loads the service config and applies command-line overrides.
// Validation is left to the caller so flags can still amend the config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyOverrides(cfg)
	return cfg, nil
}

func applyOverrides(cfg *config.Config) {
	if viper.GetBool(keyDebug) {
		cfg.Service.Debug = true
		cfg.Logging.Level = "debug"
	}
	if level := viper.GetString(keyLogLevel); level != "" && !viper.GetBool(keyDebug) {
		cfg.Logging.Level = level
	}
}
