package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func playerPath(date, id string) string {
	return eventPath(date) + "/players/" + url.PathEscape(id)
}

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerRegisterCmd())
	cmd.AddCommand(newPlayerRenameCmd())
	cmd.AddCommand(newPlayerRemoveCmd())
	cmd.AddCommand(newPlayerNoteCmd())

	return cmd
}

func newPlayerRegisterCmd() *cobra.Command {
	var name, secret, email, phone string
	var age int

	cmd := &cobra.Command{
		Use:   "register <date>",
		Short: "Register a player for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"name":   name,
				"age":    age,
				"secret": secret,
				"email":  email,
				"phone":  phone,
			}
			var result Player

			if err := client.Post(eventPath(args[0])+"/players", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name (required)")
	cmd.Flags().IntVar(&age, "age", 0, "Player age (required)")
	cmd.Flags().StringVar(&secret, "secret", "", "Secret (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number (required)")
	for _, f := range []string{"name", "age", "secret", "email", "phone"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

func newPlayerRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <date> <player-id> <name>",
		Short: "Rename a player",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"name": args[2]}
			var result Player

			if err := client.Patch(playerPath(args[0], args[1]), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPlayerRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <date> <player-id>",
		Short: "Remove a player from an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(playerPath(args[0], args[1])); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Removed player %s", args[1]))
			return nil
		},
	}
}

func newPlayerNoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note <date> <player-id> <text>",
		Short: "Set a player's note (empty text clears it)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"note": args[2]}
			var result Player

			if err := client.Put(playerPath(args[0], args[1])+"/note", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
