package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/connections-go/internal/api/request"
	"github.com/mcoot/connections-go/internal/api/response"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player commands",
	}

	cmd.AddCommand(newPlayerJoinCmd())
	cmd.AddCommand(newPlayerListCmd())

	return cmd
}

func newPlayerJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code> <name>",
		Short: "Join a room as a named player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player
			req := request.JoinRoomRequest{Name: args[1]}
			if err := client.Post(cmd.Context(), roomPath(args[0])+"/players", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPlayerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <code>",
		Short: "List the players in a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.PlayerList
			if err := client.Get(cmd.Context(), roomPath(args[0])+"/players", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
