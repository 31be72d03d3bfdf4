package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/clinreason/internal/layout"
	"github.com/abhisek/clinreason/internal/ui/diagram"
)

var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Inspect practice cases",
}

var caseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		lib, err := loadLibrary(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-24s  %-36s  %s\n", "ID", "Title", "Expert steps")
		fmt.Fprintln(out, strings.Repeat("─", 76))
		for _, c := range lib.All() {
			fmt.Fprintf(out, "%-24s  %-36s  %d\n", c.ID, c.Title, len(c.Reference))
		}
		return nil
	},
}

var caseShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a case and its expert reasoning",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		lib, err := loadLibrary(cfg)
		if err != nil {
			return err
		}
		c, err := lib.Get(args[0])
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, c)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, c.Title)
		fmt.Fprintln(out, strings.Repeat("─", len([]rune(c.Title))))
		fmt.Fprintln(out, c.Presentation)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Treatments:", strings.Join(c.Treatments, ", "))
		fmt.Fprintln(out)
		g := c.Graph()
		width, _ := cmd.Flags().GetInt("width")
		fmt.Fprintln(out, diagram.Render(g, layout.Compute(g, cfg.Layout.Spacing()), width))
		return nil
	},
}

func init() {
	caseShowCmd.Flags().Bool("json", false, "Print the case as JSON")
	caseShowCmd.Flags().Int("width", 100, "Diagram width in columns")
	caseCmd.AddCommand(caseListCmd)
	caseCmd.AddCommand(caseShowCmd)
}
