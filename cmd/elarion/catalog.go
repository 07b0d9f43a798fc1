package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"finitefield.org/elarion-web/internal/catalog"
	"finitefield.org/elarion-web/internal/format"
	"finitefield.org/elarion-web/internal/tui"
)

func newCatalogCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect product catalogs",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the active catalog",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, cat, err := root.load(cmd)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), renderCatalog(cat))
				return err
			},
		},
		&cobra.Command{
			Use:   "check FILE",
			Short: "Validate a catalog YAML file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cat, err := catalog.LoadFile(args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "OK: %s (%d products)\n", args[0], cat.Len())
				return err
			},
		},
	)
	return cmd
}

func renderCatalog(cat *catalog.Catalog) string {
	header := lipgloss.NewStyle().Foreground(tui.Gold).Bold(true)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(tui.Smoke)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return lipgloss.NewStyle()
		}).
		Headers("ID", "NAME", "PRICE", "NOTES")
	for _, p := range cat.Products() {
		t.Row(strconv.Itoa(p.ID), p.Name, format.USD(p.Price), p.Summary())
	}
	return t.Render()
}
