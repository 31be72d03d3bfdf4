package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/clinreason/internal/blockgraph"
)

// readBlocks reads a JSON block list from name, or stdin for "-". Both a
// bare array and an object with a "blocks" array are accepted.
func readBlocks(cmd *cobra.Command, name string) ([]blockgraph.Block, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("read blocks: %w", err)
	}

	data = bytes.TrimSpace(data)
	var blocks []blockgraph.Block
	if bytes.HasPrefix(data, []byte("[")) {
		err = json.Unmarshal(data, &blocks)
	} else {
		var doc struct {
			Blocks []blockgraph.Block `json:"blocks"`
		}
		err = json.Unmarshal(data, &doc)
		blocks = doc.Blocks
	}
	if err != nil {
		return nil, fmt.Errorf("parse blocks in %s: %w", name, err)
	}
	return blocks, nil
}

// buildGraph optionally repairs blocks before building the graph. Repairs
// and recovered issues are reported on stderr.
func buildGraph(cmd *cobra.Command, blocks []blockgraph.Block, normalize bool) (*blockgraph.Graph, error) {
	errOut := cmd.ErrOrStderr()
	if normalize {
		var repairs []blockgraph.Repair
		blocks, repairs = blockgraph.Normalize(blocks, nil)
		for _, r := range repairs {
			fmt.Fprintf(errOut, "repaired %q: %s\n", r.BlockID, r.Detail)
		}
	}
	g, err := blockgraph.New(blocks)
	if err != nil {
		return nil, err
	}
	for _, issue := range g.Issues() {
		fmt.Fprintln(errOut, "warning:", issue)
	}
	return g, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
