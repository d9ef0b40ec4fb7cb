// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docufetch CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pdiddy/docufetch/internal/config"
	"github.com/pdiddy/docufetch/internal/logging"
	"github.com/pdiddy/docufetch/internal/secrets"
	"github.com/pdiddy/docufetch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the configuration as read from file and environment. Commands
	// that edit settings save it back; secrets are never merged into it.
	cfg types.Config

	// cfgUsed is the config file cfg was read from, empty for defaults.
	cfgUsed string

	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets map[string]string

	logger *slog.Logger
)

// rootCmd is the base command for the docufetch CLI.
var rootCmd = &cobra.Command{
	Use:   "docufetch",
	Short: "Search academic and news sources and download new documents",
	Long: `docufetch searches academic databases and news feeds for your keywords,
merges the results, drops documents it has already seen, and downloads the
rest.

Keywords, enabled sources and credentials are kept in docufetch.yaml
(./ or ~/.config/docufetch/). Credentials can also be placed one per file in
.secrets/ or supplied as DOCUFETCH_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		cfgFile, _ := cmd.Flags().GetString("config")
		c, used, err := config.Load(cfgFile, config.SearchPaths())
		if err != nil {
			return err
		}
		cfg, cfgUsed = c, used
		if used != "" {
			fmt.Fprintln(os.Stderr, "Using config file:", used)
		}

		level, _ := cmd.Flags().GetString("log-level")
		if level == "" {
			level = cfg.Logging.Level
		}
		logger = logging.New(level, os.Stderr)

		s, err := secrets.Load(secrets.DefaultDir, os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docufetch.yaml or ~/.config/docufetch/docufetch.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
}

// runtimeConfig returns cfg with credentials from .secrets/ filled into
// empty fields.
func runtimeConfig() types.Config {
	c := cfg
	if used := secrets.Apply(&c, loadedSecrets); len(used) > 0 {
		fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", used)
	}
	return c
}

// saveConfig writes cfg back to the file it came from.
func saveConfig() error {
	path := cfgUsed
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Saved", path)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
