package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func eventPath(date string) string {
	return "/api/v1/events/" + url.PathEscape(date)
}

func newEventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Event management commands",
	}

	cmd.AddCommand(newEventListCmd())
	cmd.AddCommand(newEventGetCmd())
	cmd.AddCommand(newEventCreateCmd())
	cmd.AddCommand(newEventNotesCmd())
	cmd.AddCommand(newEventFundCmd())

	return cmd
}

func newEventListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List event dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result EventList

			if err := client.Get("/api/v1/events", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newEventGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <date>",
		Short: "Show an event and its players",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Event

			if err := client.Get(eventPath(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newEventCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <date>",
		Short: "Create an empty event (no-op if it exists)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Event

			if err := client.Put(eventPath(args[0]), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newEventNotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notes <date> <text>",
		Short: "Set the event notes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"notes": args[1]}
			var result Event

			if err := client.Put(eventPath(args[0])+"/notes", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newEventFundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fund <date> <amount>",
		Short: "Add outside currency to the pot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}

			req := map[string]int64{"amount": amount}
			var result Event

			if err := client.Post(eventPath(args[0])+"/pot", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
