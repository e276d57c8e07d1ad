package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newHealthCmd reports whether the ledger server is up and its storage
// backend reachable. It exits non-zero when either is not.
func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check ledger server and storage health",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := checkHealth(client)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

// checkHealth treats any storage state other than "ok" as a failure,
// including a degraded server that answers 503
func checkHealth(c *Client) (HealthResult, error) {
	var result HealthResult
	if err := c.Get("/api/v1/health", &result); err != nil {
		return result, fmt.Errorf("ledger server unhealthy: %w", err)
	}
	if result.Storage != "ok" {
		return result, fmt.Errorf("ledger storage %s", result.Storage)
	}
	return result, nil
}
