package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render [blocks.json|-]",
	Short: "Export a reasoning graph as PNG, SVG or Mermaid",
	Long: "Render draws a block list, or with --case a case's expert reasoning. The format " +
		"defaults to the extension of --out, and to Mermaid on stdout.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		title, _ := cmd.Flags().GetString("title")
		var g *blockgraph.Graph
		if id, _ := cmd.Flags().GetString("case"); id != "" {
			lib, err := loadLibrary(cfg)
			if err != nil {
				return err
			}
			c, err := lib.Get(id)
			if err != nil {
				return err
			}
			g = c.Graph()
			if title == "" {
				title = c.Title
			}
		} else {
			if len(args) == 0 {
				return fmt.Errorf("a blocks file or --case is required")
			}
			blocks, err := readBlocks(cmd, args[0])
			if err != nil {
				return err
			}
			normalize, _ := cmd.Flags().GetBool("normalize")
			if g, err = buildGraph(cmd, blocks, normalize); err != nil {
				return err
			}
		}

		out, _ := cmd.Flags().GetString("out")
		format, err := outputFormat(cmd, out)
		if err != nil {
			return err
		}

		var data []byte
		if format == render.FormatMermaid {
			data = []byte(render.Mermaid(g, title))
		} else {
			if out == "" {
				return fmt.Errorf("%s output needs --out", format)
			}
			if data, err = render.Image(cmd.Context(), g, format, title); err != nil {
				return err
			}
		}

		if out == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d blocks)\n", out, g.Len())
		return nil
	},
}

func init() {
	renderCmd.Flags().StringP("format", "f", "", "Output format: png, svg or mermaid")
	renderCmd.Flags().StringP("out", "o", "", "Output file (default: stdout, Mermaid only)")
	renderCmd.Flags().String("title", "", "Diagram title")
	renderCmd.Flags().String("case", "", "Render the expert reasoning of this case")
	renderCmd.Flags().Bool("normalize", false, "Repair missing or duplicate ids and lenient kinds first")
}

func outputFormat(cmd *cobra.Command, out string) (render.Format, error) {
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		return render.ParseFormat(f)
	}
	if ext := filepath.Ext(out); ext != "" {
		return render.ParseFormat(ext)
	}
	return render.FormatMermaid, nil
}
