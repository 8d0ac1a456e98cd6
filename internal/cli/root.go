// Package cli implements the pressroom command line: the API server and
// the database maintenance commands.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pressroom/internal/config"
	"pressroom/internal/logging"
)

var (
	// Global flags
	envFile string

	cfg           *config.Config
	restoreLogger func()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pressroom",
	Short: "Pressroom - headless CMS API",
	Long: `Pressroom serves a JSON API for posts, a category tree and a media
library, with role-based access for admins, editors, authors and readers.

Configuration is read from the environment, optionally seeded from a
.env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(envFile); err != nil {
			return err
		}
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		cfg = c

		restore, err := logging.Install(cfg.Env)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		restoreLogger = restore
		zap.L().Info("configuration loaded", zap.String("env", cfg.Env), zap.String("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if restoreLogger != nil {
			restoreLogger()
		}
	},
}

// loadEnvFile loads path into the environment. Variables already set win.
// A missing default file is not an error.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && path == ".env" {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
}
