package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "coinctl",
		Short: "CLI tool for the idlecoins server",
		Long: `coinctl is a CLI tool for inspecting and playing on an idlecoins server.

It reads the JSON API (health, leaderboard, rank, stats) and can attach to the
realtime websocket channel as a player.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load the remembered player id if not provided via flag/env
			if err := cfg.LoadPlayerID(); err != nil {
				return err
			}

			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: COINCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.PlayerID, "id", cfg.PlayerID, "Player id (env: COINCTL_ID)")
	rootCmd.PersistentFlags().StringVar(&cfg.IDFile, "id-file", cfg.IDFile, "File remembering the player id (env: COINCTL_ID_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newRankCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newWatchCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
