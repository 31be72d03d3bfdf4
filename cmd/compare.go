package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/compare"
	"github.com/abhisek/clinreason/internal/config"
)

var compareCmd = &cobra.Command{
	Use:   "compare <learner.json|->",
	Short: "Compare a learner's blocks with an expert's",
	Long: "Compare matches learner blocks to reference blocks of the same kind and reports " +
		"alignment, missed and incorrect steps. The reference comes from --reference or " +
		"from a case's expert reasoning with --case.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		learnerBlocks, err := readBlocks(cmd, args[0])
		if err != nil {
			return err
		}
		learner, err := buildGraph(cmd, learnerBlocks, true)
		if err != nil {
			return fmt.Errorf("learner: %w", err)
		}

		reference, err := referenceGraph(cmd, cfg)
		if err != nil {
			return err
		}

		threshold := cfg.Compare.Threshold
		if cmd.Flags().Changed("threshold") {
			threshold, _ = cmd.Flags().GetFloat64("threshold")
			if threshold <= 0 || threshold > 1 {
				return fmt.Errorf("threshold must be in (0, 1]")
			}
		}
		res := compare.Compare(learner.Blocks(), reference.Blocks(), compare.WithThreshold(threshold))

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, struct {
				compare.Result
				Annotated []blockgraph.Block `json:"annotated"`
			}{res, compare.Annotate(learner, reference, res)})
		}
		printComparison(cmd, res)
		return nil
	},
}

func init() {
	compareCmd.Flags().String("reference", "", "Reference blocks file")
	compareCmd.Flags().String("case", "", "Use the expert reasoning of this case as reference")
	compareCmd.Flags().Float64("threshold", 0, "Match threshold in (0, 1]")
	compareCmd.Flags().Bool("json", false, "Print the full result as JSON")
	compareCmd.MarkFlagsMutuallyExclusive("reference", "case")
	compareCmd.MarkFlagsOneRequired("reference", "case")
}

func referenceGraph(cmd *cobra.Command, cfg *config.Config) (*blockgraph.Graph, error) {
	if id, _ := cmd.Flags().GetString("case"); id != "" {
		lib, err := loadLibrary(cfg)
		if err != nil {
			return nil, err
		}
		c, err := lib.Get(id)
		if err != nil {
			return nil, err
		}
		return c.Graph(), nil
	}

	path, _ := cmd.Flags().GetString("reference")
	blocks, err := readBlocks(cmd, path)
	if err != nil {
		return nil, err
	}
	g, err := buildGraph(cmd, blocks, false)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	return g, nil
}

func printComparison(cmd *cobra.Command, res compare.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Alignment: %d%%  (match rate %.2f)\n", res.Alignment, res.MatchRate)
	fmt.Fprintln(out, strings.Repeat("─", 60))

	fmt.Fprintf(out, "Matched (%d)\n", len(res.Matched))
	for _, m := range res.Matched {
		fmt.Fprintf(out, "  %-16s %.2f  %q ↔ %q\n", m.Learner.Kind, m.Score, m.Learner.Title, m.Reference.Title)
	}
	fmt.Fprintf(out, "Missed (%d)\n", len(res.Missed))
	for _, b := range res.Missed {
		fmt.Fprintf(out, "  %-16s %q\n", b.Kind, b.Title)
	}
	fmt.Fprintf(out, "Incorrect (%d)\n", len(res.Incorrect))
	for _, b := range res.Incorrect {
		fmt.Fprintf(out, "  %-16s %q\n", b.Kind, b.Title)
	}
	if len(res.Insights) > 0 {
		fmt.Fprintln(out)
		for _, in := range res.Insights {
			fmt.Fprintf(out, "[%s] %s\n", in.Tone, in.Message)
		}
	}
}
