package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative commands (require --admin-key)",
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every structure on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		var result StructureList
		if err := client.Get("/api/v1/admin/structures", &result); err != nil {
			return err
		}

		out.Print(result)
		return nil
	},
}

var adminDestroyCmd = &cobra.Command{
	Use:   "destroy <structureId>",
	Short: "Destroy a structure regardless of owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.Delete("/api/v1/admin/structures/" + args[0]); err != nil {
			return err
		}

		out.PrintMessage(fmt.Sprintf("Structure %s destroyed", args[0]))
		return nil
	},
}

var adminDamageCmd = &cobra.Command{
	Use:   "damage <structureId> <amount>",
	Short: "Apply damage to a structure",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid damage amount %q", args[1])
		}

		req := map[string]any{
			"structureId": args[0],
			"amount":      amount,
		}

		var result DamageResult
		if err := client.Post("/api/v1/admin/damage", req, &result); err != nil {
			return err
		}

		out.Print(result)
		return nil
	},
}

var adminDecayCmd = &cobra.Command{
	Use:   "decay <on|off|status>",
	Short: "Toggle or inspect environmental decay",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result DecayResult

		switch args[0] {
		case "status":
			if err := client.Get("/api/v1/admin/decay", &result); err != nil {
				return err
			}
		case "on", "off":
			req := map[string]bool{"enabled": args[0] == "on"}
			if err := client.Post("/api/v1/admin/decay", req, &result); err != nil {
				return err
			}
		default:
			return fmt.Errorf("expected on, off or status, got %q", args[0])
		}

		out.Print(result)
		return nil
	},
}

func init() {
	adminCmd.AddCommand(adminListCmd)
	adminCmd.AddCommand(adminDestroyCmd)
	adminCmd.AddCommand(adminDamageCmd)
	adminCmd.AddCommand(adminDecayCmd)

	rootCmd.AddCommand(adminCmd)
}
