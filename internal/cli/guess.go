package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/connections-go/internal/api/request"
	"github.com/mcoot/connections-go/internal/api/response"
)

func newGuessCmd() *cobra.Command {
	var playerID string

	cmd := &cobra.Command{
		Use:   "guess <round_id> <word> <word> <word> <word>",
		Short: "Check whether four words form a group",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.GuessRequest{PlayerID: playerID, Words: args[1:]}

			var result response.Guess
			path := "/api/v1/rounds/" + url.PathEscape(args[0]) + "/guess"
			if err := client.Post(cmd.Context(), path, req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player ID (rejects guesses on rounds the player has finished)")

	return cmd
}
