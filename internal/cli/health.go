package cli

import (
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	RunE: func(cmd *cobra.Command, args []string) error {
		var result HealthResult
		if err := client.Get("/healthz", &result); err != nil {
			return err
		}

		out.Print(result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
