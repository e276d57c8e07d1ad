package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newTransferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer <date> <player-id> <delta>",
		Short: "Move currency between a player and the pot",
		Long: `Apply delta to a player's currency and the opposite to the pot.
A negative delta pays into the pot, a positive delta pays out of it.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid delta %q", args[2])
			}
			return postTransfer(args[0], args[1], "transfer", map[string]int64{"delta": delta})
		},
	}
	// Negative deltas must not parse as flags
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func newAmountCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <date> <player-id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[2])
			}
			return postTransfer(args[0], args[1], action, map[string]int64{"amount": amount})
		},
	}
}

func postTransfer(date, id, action string, req map[string]int64) error {
	var result TransferResult

	if err := client.Post(playerPath(date, id)+"/"+action, req, &result); err != nil {
		return err
	}

	NewOutput(cfg.Output).Print(result)
	return nil
}
