package cli

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameEditCmd())
	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameFillCmd())
	cmd.AddCommand(newGameFinishCmd())
	cmd.AddCommand(newGameInsightsCmd())
	cmd.AddCommand(newGameQRCmd())

	return cmd
}

func newGameCreateCmd() *cobra.Command {
	var duration int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new game with the default prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]int{"duration": duration}
			var result CreateResult

			if err := client.Post("/api/games/create", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&duration, "duration", "d", 15, "Round length in minutes")

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get current game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game

			if err := client.Get(gamePath(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code> <name>",
		Short: "Join a game as a player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"game_code":   args[0],
				"player_name": args[1],
			}
			var result GameMessage

			if err := client.Post("/api/games/join", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <code> <index> <prompt...>",
		Short: "Change a prompt before the game starts",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}

			req := map[string]any{
				"game_code": args[0],
				"index":     index,
				"value":     strings.Join(args[2:], " "),
			}
			var result GameMessage

			if err := client.Post("/api/games/update-cell", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <code>",
		Short: "Start the round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"game_code": args[0]}
			var result GameMessage

			if err := client.Post("/api/games/start", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameFillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fill <code> <player> <index> [name...]",
		Short: "Write a name into one of your grid cells",
		Long: `Write a name into one of your grid cells.

Omit the name to clear the cell.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[2])
			if err != nil {
				return err
			}

			req := map[string]any{
				"game_code":   args[0],
				"player_name": args[1],
				"cell_index":  index,
				"name_value":  strings.Join(args[3:], " "),
			}
			var result PlayerMessage

			if err := client.Post("/api/games/update-player-cell", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finish <code> <player>",
		Short: "Submit a completed grid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"game_code":   args[0],
				"player_name": args[1],
			}
			var result FinishResult

			if err := client.Post("/api/games/finish", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameInsightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights <code>",
		Short: "Show how often each name was given per prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Insights

			if err := client.Get(gamePath(args[0])+"/insights", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameQRCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "qr <code> <file>",
		Short: "Save the join QR code as a PNG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := gamePath(args[0]) + "/qr"
			if size > 0 {
				path += "?size=" + strconv.Itoa(size)
			}

			f, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}
			defer func() { _ = f.Close() }()

			if err := client.Download(path, f); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("QR code written to %s", args[1]))
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 0, "Image size in pixels (128-1024)")

	return cmd
}

func gamePath(code string) string {
	return "/api/games/" + url.PathEscape(code)
}

func parseIndex(s string) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index: %w", err)
	}
	return index, nil
}
