package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	buildAt  string
	buildYaw float64
)

var buildCmd = &cobra.Command{
	Use:   "build <structureType>",
	Short: "Place a new structure",
	Long: `Build places a structure of the given type at a position in the
world. The position is given as --at x,y,z and the facing as --yaw in
degrees about the vertical axis.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := parsePosition(buildAt)
		if err != nil {
			return err
		}

		req := map[string]any{
			"structureType": args[0],
			"transform":     buildTransform(pos, buildYaw),
		}

		var result BuildResult
		if err := client.Post("/api/v1/structures/build", req, &result); err != nil {
			return err
		}

		out.Print(result.Structure)
		return nil
	},
}

var repairCmd = &cobra.Command{
	Use:   "repair <structureId>",
	Short: "Repair one of your structures to full health",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := map[string]string{"structureId": args[0]}

		var result RepairResult
		if err := client.Post("/api/v1/structures/repair", req, &result); err != nil {
			return err
		}

		out.Print(result.Structure)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your structures",
	RunE: func(cmd *cobra.Command, args []string) error {
		var result StructureList
		if err := client.Get("/api/v1/structures", &result); err != nil {
			return err
		}

		out.Print(result)
		return nil
	},
}

// parsePosition parses an "x,y,z" triple into world coordinates.
func parsePosition(s string) ([3]float64, error) {
	var pos [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return pos, fmt.Errorf("position must be x,y,z, got %q", s)
	}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return pos, fmt.Errorf("invalid position component %q", part)
		}
		pos[i] = v
	}
	return pos, nil
}

// buildTransform assembles the row-major 3x4 placement matrix from a
// position and a yaw angle in degrees.
func buildTransform(pos [3]float64, yawDegrees float64) []float64 {
	yaw := yawDegrees * math.Pi / 180
	sin, cos := math.Sincos(yaw)
	return []float64{
		cos, 0, sin, pos[0],
		0, 1, 0, pos[1],
		-sin, 0, cos, pos[2],
	}
}

func init() {
	buildCmd.Flags().StringVar(&buildAt, "at", "0,0,0", "position as x,y,z")
	buildCmd.Flags().Float64Var(&buildYaw, "yaw", 0, "rotation about the vertical axis in degrees")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(listCmd)
}
