package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"carbon-chat-go/internal/footprint"
	"carbon-chat-go/internal/service"
)

// NewEstimateCmd creates the estimate command, which runs the calculator directly.
func NewEstimateCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "estimate <activity> <quantity>",
		Short: "Compute kg CO2 for one activity",
		Example: `  carbonchat estimate flight 1000
  carbonchat estimate meat 2 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("quantity %q is not a number", args[1])
			}
			// 计算器不读写记录，无需仓储
			e, err := service.NewFootprintService(nil).Estimate(args[0], quantity)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(e)
			}
			fmt.Fprintf(out, "%s%s %s: %skg CO2\n", footprint.FormatQuantity(e.Quantity), e.Unit, e.Activity, footprint.FormatKg(e.KgCO2))
			fmt.Fprintln(out, e.Advisory)
			if eq, err := footprint.Equivalencies(e.KgCO2); err == nil && !eq.IsEmpty {
				fmt.Fprintln(out, eq.DisplayText)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the estimate as JSON")
	return cmd
}
