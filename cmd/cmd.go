package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/honganh1206/sift/config"
	"github.com/honganh1206/sift/engine"
	"github.com/honganh1206/sift/message"
	"github.com/honganh1206/sift/persist"
)

var (
	configPath string
	verbose    bool
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.Default(), nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openEngine wires the sqlite corpus and the buntdb snapshot store to a
// fresh engine and restores its state. The returned cleanup closes both
// stores after flushing the engine.
func openEngine(cmd *cobra.Command, cfg config.Config) (*engine.Engine, *message.SQLiteStore, func() error, error) {
	store, err := message.OpenStore(cfg.MessageDBPath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open message store: %w", err)
	}

	snapshots, err := persist.OpenBunt(cfg.SnapshotDBPath())
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}

	e := engine.New(cfg,
		engine.WithLogger(newLogger()),
		engine.WithStore(snapshots),
		engine.WithSource(store),
	)

	if err := e.Load(cmd.Context()); err != nil {
		snapshots.Close()
		store.Close()
		return nil, nil, nil, err
	}

	cleanup := func() error {
		err := e.Close(cmd.Context())
		snapshots.Close()
		store.Close()
		return err
	}
	return e, store, cleanup, nil
}

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "sift",
		Short:        "Full-text search over local chat history",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of sift",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sift version %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		},
	}

	rootCmd.AddCommand(
		versionCmd,
		newIndexCmd(),
		newSearchCmd(),
		newSuggestCmd(),
		newHistoryCmd(),
		newTUICmd(),
	)

	return rootCmd
}
