package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/famtree/pkg/graph"
	"github.com/matzehuels/famtree/pkg/pipeline"
)

// layoutCommand creates the layout command, which writes positioned nodes
// without rendering them.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		root   int
		flags  renderFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [file|url|-]",
		Short: "Compute node positions for a family tree",
		Long: `Compute node positions for a family tree.

The output is a layout.json file (the same document as 'render -f json')
listing every displayed member with its canvas coordinates and depth, plus
the parent/child edges.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.root = root
			opts, err := flags.options(cmd, cfg)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().IntVar(&root, "root", 0, "ID of the member to lay out from")
	cmd.Flags().Float64Var(&flags.width, "width", 0, "canvas width")
	cmd.Flags().Float64Var(&flags.height, "height", 0, "canvas height")
	cmd.Flags().Float64Var(&flags.margin, "margin", 0, "space reserved around the tree")
	cmd.Flags().Float64Var(&flags.inset, "inset", 0, "offset applied to every coordinate")
	flags.selected = -1

	return cmd
}

// runLayout loads the tree, lays out the chosen root and writes the result.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string) error {
	prog := newProgress(c.Logger)
	raw, err := readDocument(ctx, input, false)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	tree, err := pipeline.Load(ctx, raw)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Loaded %d members", tree.Len()))

	root, err := pipeline.ResolveRoot(tree, opts.RootID)
	if err != nil {
		return err
	}
	prog.restart()
	res := pipeline.ComputeLayout(ctx, root, opts)
	prog.done("Computed layout for " + root.Name)

	path := output
	if path == "" {
		path = basePath("", input) + ".layout.json"
	}
	if err := graph.WriteLayoutFile(graph.FromResult(res), path); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	printSuccess("Layout complete")
	printFile(path)
	printStats(len(res.Nodes), len(res.Edges), false)
	printKeyValue("Depth", fmt.Sprint(res.MaxDepth()))
	printNewline()
	printNextStep("Render", strings.Join([]string{appName, "render", input, "--root", fmt.Sprint(root.ID)}, " "))
	return nil
}
