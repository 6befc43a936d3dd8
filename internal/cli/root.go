package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
	out    *Output
)

var rootCmd = &cobra.Command{
	Use:   "sunctl",
	Short: "Command-line client for the sunward structure server",
	Long: `sunctl talks to a sunward server over its HTTP API.

Connect to obtain a session token, then place, inspect and repair
structures. Admin commands require the server's admin key.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		out = NewOutput(cfg.Output)

		// Flag-provided tokens win over the saved token file.
		if err := cfg.LoadToken(); err != nil {
			return err
		}

		client = NewClient(cfg.ServerURL, cfg.Token, cfg.AdminKey)
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if out == nil {
			out = NewOutput("text")
		}
		out.PrintError(err)
		os.Exit(1)
	}
}

func init() {
	cfg = DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "server URL")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "session token (overrides saved token)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to the saved session token")
	rootCmd.PersistentFlags().StringVar(&cfg.AdminKey, "admin-key", cfg.AdminKey, "admin key for admin commands")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "output format (text or json)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "verbose output")
}
