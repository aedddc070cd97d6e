package commands

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// newHealthCmd creates the `fenny health` command. Used by Docker
// HEALTHCHECK and monitoring.
func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the health of a running backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get(apiBase(cfg) + "/api/health")
			if err != nil {
				return fmt.Errorf("backend unreachable: %w", err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("reading health response: %w", err)
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("backend unhealthy: status %d: %s", resp.StatusCode, body)
			}

			fmt.Print(string(body))
			return nil
		},
	}
}
