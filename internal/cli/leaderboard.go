package cli

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	var (
		window string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the richest players",
		Long: `Show the richest players, optionally restricted to players created
in the last day or week.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if window != "" {
				q.Set("time", window)
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}

			var result LeaderboardResult
			if err := client.Get("/api/v1/leaderboard", q, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&window, "time", "all", "Window: all, daily, weekly")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of entries (server default if unset)")

	return cmd
}

func newRankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank [id]",
		Short: "Show a player's rank",
		Long:  "Show a player's rank. Defaults to the remembered player id.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := cfg.PlayerID
			if len(args) == 1 {
				id = args[0]
			}
			if id == "" {
				return errors.New("no player id: pass one or run watch first")
			}

			var result RankResult
			if err := client.Get("/api/v1/players/"+url.PathEscape(id)+"/rank", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show live server counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StatsResult
			if err := client.Get("/api/v1/stats", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
