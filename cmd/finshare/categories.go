package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/finshare-ai/internal/cli"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List expense categories",
		Long:  `Display the category catalog in order. "Other" is always present.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			categories := a.catalog.List()
			rows := make([][]string, len(categories))
			for i, c := range categories {
				rows[i] = []string{strconv.Itoa(i + 1), string(c), strconv.Itoa(len(a.lexicon.Keywords(c)))}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderTable([]string{"#", "Category", "Keywords"}, rows))
			fmt.Fprintf(out, "\n%d categories\n", len(categories))
			return nil
		},
	}
}
