package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sakif/imageboard/internal/config"
)

// app is the state shared by all commands, filled in by PersistentPreRunE.
type app struct {
	configPath string
	envFile    string
	cfg        *config.Config
	logger     *slog.Logger
	console    *Console
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "imageboard",
		Short: "An image gallery and threaded forum.",
		Long: `An image gallery and threaded forum.

Run 'imageboard' (or 'imageboard serve') to start the web server.
Configuration is read from --config (default: $XDG_CONFIG_HOME/imageboard/config.yaml),
then IMAGEBOARD_* environment variables, e.g.
  IMAGEBOARD_STORE_BACKEND=sqlite IMAGEBOARD_IMAGES_PROVIDER=cloudinary imageboard`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")

	rootCmd.AddCommand(
		newServeCmd(a),
		newGalleryCmd(a),
		newThreadsCmd(a),
	)
	return rootCmd
}

// setup loads .env, the configuration and the logger.
func (a *app) setup(cmd *cobra.Command) error {
	a.console = NewConsole(cmd.OutOrStdout())

	// A missing .env file is normal outside development.
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	logger, err := newLogger(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}
