package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/connections-go/internal/api/request"
	"github.com/mcoot/connections-go/internal/api/response"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomListCmd())
	cmd.AddCommand(newRoomAddRoundCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var name, puzzlesFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room from a JSON file of puzzles",
		Long: `Create a room. The puzzles file holds a JSON array of puzzles, each
with four groups of four words:

  [{"groups": [{"name": "Fish", "connection": "Types of fish", "words": ["BASS", "PIKE", "SOLE", "CARP"]}, ...]}]`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var puzzles []request.Puzzle
			if err := readJSONFile(puzzlesFile, &puzzles); err != nil {
				return err
			}

			req := request.CreateRoomRequest{Name: name, Rounds: puzzles}
			var result response.CreateRoomResponse
			if err := client.Post(cmd.Context(), "/api/v1/rooms", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Room display name")
	cmd.Flags().StringVar(&puzzlesFile, "puzzles", "", "Path to a JSON file of puzzles")
	_ = cmd.MarkFlagRequired("puzzles")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get room details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room
			if err := client.Get(cmd.Context(), roomPath(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRoomListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.RoomList
			if err := client.Get(cmd.Context(), "/api/v1/rooms", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRoomAddRoundCmd() *cobra.Command {
	var puzzleFile string

	cmd := &cobra.Command{
		Use:   "add-round <code>",
		Short: "Append a round to a room from a JSON puzzle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var puzzle request.Puzzle
			if err := readJSONFile(puzzleFile, &puzzle); err != nil {
				return err
			}

			var result response.RoundRef
			req := request.AddRoundRequest{Puzzle: puzzle}
			if err := client.Post(cmd.Context(), roomPath(args[0])+"/rounds", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&puzzleFile, "puzzle", "", "Path to a JSON file holding one puzzle")
	_ = cmd.MarkFlagRequired("puzzle")

	return cmd
}

func roomPath(code string) string {
	return "/api/v1/rooms/" + url.PathEscape(strings.ToUpper(strings.TrimSpace(code)))
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
