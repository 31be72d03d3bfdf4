package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/clinreason/internal/layout"
)

var layoutCmd = &cobra.Command{
	Use:   "layout <blocks.json|->",
	Short: "Compute diagram positions for a block list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		blocks, err := readBlocks(cmd, args[0])
		if err != nil {
			return err
		}
		normalize, _ := cmd.Flags().GetBool("normalize")
		g, err := buildGraph(cmd, blocks, normalize)
		if err != nil {
			return err
		}

		sp := cfg.Layout.Spacing()
		if cmd.Flags().Changed("horizontal") {
			sp.Horizontal, _ = cmd.Flags().GetFloat64("horizontal")
		}
		if cmd.Flags().Changed("vertical") {
			sp.Vertical, _ = cmd.Flags().GetFloat64("vertical")
		}
		return printJSON(cmd, layout.Compute(g, sp))
	},
}

func init() {
	layoutCmd.Flags().Bool("normalize", false, "Repair missing or duplicate ids and lenient kinds first")
	layoutCmd.Flags().Float64("horizontal", 0, "Horizontal spacing between blocks in a row")
	layoutCmd.Flags().Float64("vertical", 0, "Vertical spacing between levels")
}
