package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect <displayName>",
	Short: "Connect to the server and save a session token",
	Long: `Connect establishes a session with the server and restores any
structures you own from persistent storage. The session token is saved
locally and used by later commands.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := map[string]string{"displayName": args[0]}

		var result ConnectResult
		if err := client.Post("/api/v1/session/connect", req, &result); err != nil {
			return err
		}

		if err := cfg.SaveToken(result.SessionToken); err != nil {
			return fmt.Errorf("connected but failed to save token: %w", err)
		}
		client.SetToken(result.SessionToken)

		out.Print(result)
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect and save your structures",
	RunE: func(cmd *cobra.Command, args []string) error {
		var result DisconnectResult
		if err := client.Post("/api/v1/session/disconnect", nil, &result); err != nil {
			return err
		}

		if err := cfg.ClearToken(); err != nil {
			return fmt.Errorf("disconnected but failed to clear token: %w", err)
		}

		out.Print(result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
}
