package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/renjie/furnace-core/internal/sample"
)

func newSampleCmd(a *app) *cobra.Command {
	opts := sample.DefaultOptions()
	var start, output string
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a synthetic daily operating sheet (csv or xlsx)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if start != "" {
				t, err := time.Parse("2006-01-02", start)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				opts.Start = t
			}
			table := sample.Generate(opts)

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer f.Close()

			if strings.HasSuffix(strings.ToLower(output), ".xlsx") {
				err = sample.WriteXLSX(f, table)
			} else {
				err = sample.WriteCSV(f, table)
			}
			if err != nil {
				return err
			}
			a.logger.Info("sample written", zap.String("path", output), zap.Int("rows", len(table.Rows)))
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Furnaces, "furnaces", opts.Furnaces, "number of furnaces")
	cmd.Flags().IntVar(&opts.Days, "days", opts.Days, "number of days")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	cmd.Flags().StringVar(&start, "start", "", "first date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&output, "output", "o", "sample_furnace_data.csv", "output path (.csv or .xlsx)")
	return cmd
}
