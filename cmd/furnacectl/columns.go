package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/renjie/furnace-core/pkg/core/services"
)

func newColumnsCmd(a *app) *cobra.Command {
	var format, sheet string
	cmd := &cobra.Command{
		Use:   "columns <file>",
		Short: "Show how the input columns map to known fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := readTable(cmd.Context(), a, args[0], format, sheet)
			if err != nil {
				return err
			}
			res := services.ResolveColumns(table.Columns)

			fields := make([]string, 0, len(res.Matches))
			for f := range res.Matches {
				fields = append(fields, f)
			}
			sort.Strings(fields)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FIELD\tCOLUMN\tMATCH")
			for _, f := range fields {
				m := res.Matches[f]
				fmt.Fprintf(w, "%s\t%s\t%s\n", f, m.Column, m.Confidence)
			}
			for _, f := range res.Missing {
				fmt.Fprintf(w, "%s\t-\tmissing\n", f)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			for _, c := range res.Unused {
				fmt.Fprintf(cmd.OutOrStdout(), "unused column: %s\n", c)
			}
			for _, warn := range res.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", warn)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format (default: from file extension)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "xlsx sheet name")
	return cmd
}
