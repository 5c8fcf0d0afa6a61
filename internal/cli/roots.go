package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/pipeline"
)

// rootsCommand lists the members a tree can be drawn from.
func (c *CLI) rootsCommand() *cobra.Command {
	var showZeroAge bool

	cmd := &cobra.Command{
		Use:   "roots [file|url|-]",
		Short: "List the members a family tree can be drawn from",
		Long: `List the root options of a family tree: the loaded root and its direct
children, in document order. Pass an ID to 'famtree render --root'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRoots(cmd.Context(), args[0], showZeroAge)
		},
	}
	cmd.Flags().BoolVar(&showZeroAge, "show-zero-age", false, "show an age of 0 instead of hiding it")
	return cmd
}

func (c *CLI) runRoots(ctx context.Context, input string, showZeroAge bool) error {
	raw, err := readDocument(ctx, input, false)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	tree, err := pipeline.Load(ctx, raw)
	if err != nil {
		return err
	}

	fmt.Println(rootsTable(tree, showZeroAge))
	printDetail("%d members, %d root options", tree.Len(), len(tree.RootOptions()))
	return nil
}

// rootsTable renders the root options as a table.
func rootsTable(tree *family.Tree, showZeroAge bool) string {
	opts := tree.RootOptions()
	rows := make([][]string, 0, len(opts))
	for _, m := range opts {
		age := "-"
		if m.HasAge(showZeroAge) {
			age = m.AgeText()
		}
		rel := m.Relationship
		if rel == "" {
			rel = "-"
		}
		rows = append(rows, []string{strconv.Itoa(m.ID), m.Name, rel, age, strconv.Itoa(m.Size())})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Relation", "Age", "Members").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1: // header
				return headerStyle
			case col == 0:
				return StyleNumber
			case row == 0:
				return StyleHighlight.Bold(true)
			}
			return StyleValue
		}).
		Render()
}
