package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/connections-go/internal/api/response"
)

func newLeaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard <code>",
		Short: "Show a room's ranked leaderboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Leaderboard
			if err := client.Get(cmd.Context(), roomPath(args[0])+"/leaderboard", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newWinnerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "winner <code>",
		Short: "Show the room's current leader",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.LeaderboardEntry
			if err := client.Get(cmd.Context(), roomPath(args[0])+"/winner", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
