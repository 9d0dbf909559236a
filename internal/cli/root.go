// Package cli holds the inkwell command tree.
package cli

import (
	"fmt"

	"github.com/inkwell/internal/config"
	"github.com/inkwell/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const configFlag = "config"

// NewRootCommand returns the inkwell command; without a subcommand it serves HTTP.
func NewRootCommand() *cobra.Command {
	serve := newServeCommand()
	root := &cobra.Command{
		Use:           "inkwell",
		Short:         "Blog content and reader engagement server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().String(configFlag, "", "path to a YAML config file (default ./inkwell.yaml if present)")

	root.AddCommand(serve)
	root.AddCommand(newSeedCommand())
	root.AddCommand(newReconcileCommand())
	root.AddCommand(newAdminCommand())
	return root
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// setup loads configuration and installs the global logger.
func setup(cmd *cobra.Command) (config.AppConfig, *zap.Logger, error) {
	path, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return config.AppConfig{}, nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.AppConfig{}, nil, err
	}
	logger, err := logging.Init(cfg.Log)
	if err != nil {
		return config.AppConfig{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
