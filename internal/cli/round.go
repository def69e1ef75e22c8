package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/connections-go/internal/api/request"
	"github.com/mcoot/connections-go/internal/api/response"
)

func newRoundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "round",
		Short: "Round commands",
	}

	cmd.AddCommand(newRoundNextCmd())
	cmd.AddCommand(newRoundShowCmd())
	cmd.AddCommand(newRoundSubmitCmd())

	return cmd
}

func newRoundNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next <code> <player_id>",
		Short: "Show the player's next unfinished round",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.NextRound
			path := roomPath(args[0]) + "/players/" + url.PathEscape(args[1]) + "/next-round"
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRoundShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <code> <number>",
		Short: "Show a round's shuffled words",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseRoundNumber(args[1])
			if err != nil {
				return err
			}

			var result response.RoundView
			path := fmt.Sprintf("%s/rounds/%d", roomPath(args[0]), number)
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRoundSubmitCmd() *cobra.Command {
	var (
		playerID    string
		mistakes    int
		timeSeconds int
		groups      int
	)

	cmd := &cobra.Command{
		Use:   "submit <code> <number>",
		Short: "Submit a finished round result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseRoundNumber(args[1])
			if err != nil {
				return err
			}

			req := request.FinishRoundRequest{
				PlayerID:      playerID,
				Mistakes:      mistakes,
				TimeSeconds:   timeSeconds,
				CorrectGroups: &groups,
			}

			var result response.FinishRound
			path := fmt.Sprintf("%s/rounds/%d/result", roomPath(args[0]), number)
			if err := client.Post(cmd.Context(), path, req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player ID")
	cmd.Flags().IntVar(&mistakes, "mistakes", 0, "Number of mistakes made")
	cmd.Flags().IntVar(&timeSeconds, "time", 0, "Seconds taken to finish")
	cmd.Flags().IntVar(&groups, "groups", 4, "Number of groups solved")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}

func parseRoundNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid round number %q", s)
	}
	return n, nil
}
