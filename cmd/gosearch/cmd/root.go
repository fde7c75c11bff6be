package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"AutomatonSearch/internal/config"
	"AutomatonSearch/internal/store"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// app carries the resolved config and logger to subcommands.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	dataDir  string
	logLevel string
}

// NewRootCmd builds the gosearch command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "gosearch",
		Short:         "gosearch: automaton-driven term search over stored segments",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "directory holding the segment store (env "+config.EnvDataDir+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (env "+config.EnvLogLevel+")")

	root.AddCommand(newIndexCmd(a))
	root.AddCommand(newSearchCmd(a))
	root.AddCommand(newExplainCmd(a))
	root.AddCommand(newSegmentsCmd(a))
	root.AddCommand(newDeleteCmd(a))
	return root
}

// Execute runs the root command.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "error: %v\n", err)
	}
	return err
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = a.dataDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	return nil
}

func (a *app) openStore() (*store.Store, error) {
	s, err := store.Open(a.cfg.DatabasePath(), a.logger)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", a.cfg.DatabasePath(), err)
	}
	return s, nil
}
