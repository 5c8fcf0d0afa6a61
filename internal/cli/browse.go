package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/famtree/pkg/viewer"
)

// browseCommand opens the terminal viewer.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		showZeroAge bool
		output      string
	)

	cmd := &cobra.Command{
		Use:   "browse [file|url|-]",
		Short: "Browse a family tree in the terminal",
		Long: `Browse a family tree in the terminal.

Switch between the root options, move through the displayed members and
select one to see its details. With --output the frame of the view you leave
is written as SVG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("show-zero-age") {
				cfg.Render.ShowZeroAge = showZeroAge
			}
			st := viewer.New(viewer.Options{
				Canvas:       cfg.LayoutCanvas(),
				ShowZeroAge:  cfg.Render.ShowZeroAge,
				DefaultImage: cfg.Render.DefaultImage,
				Logger:       c.Logger,
			})
			return c.runBrowse(cmd.Context(), args[0], st, cfg.Render.ShowZeroAge, output)
		},
	}

	cmd.Flags().BoolVar(&showZeroAge, "show-zero-age", false, "show an age of 0 instead of hiding it")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the final frame to this SVG file")
	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, input string, st *viewer.State, showZeroAge bool, output string) error {
	raw, err := readDocument(ctx, input, false)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	if err := st.Load(raw); err != nil {
		return err
	}

	p := tea.NewProgram(NewBrowseModel(st, showZeroAge), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}

	if output != "" {
		if err := os.WriteFile(output, st.Frame(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		printSuccess("Saved view of %s", st.ActiveRoot().Name)
		printFile(output)
	}
	return nil
}
