package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/renjie/furnace-core/pkg/adapters/ingest"
	"github.com/renjie/furnace-core/pkg/adapters/render"
	"github.com/renjie/furnace-core/pkg/core/domain"
)

type analyzeOptions struct {
	format string
	sheet  string
	asJSON bool
	plain  bool
	output string
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a daily operating sheet (csv, json or xlsx)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), a, args[0], opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "input format (default: from file extension)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "xlsx sheet name (default: first sheet)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "write the report as JSON")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "disable terminal styling")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func runAnalyze(ctx context.Context, a *app, path string, opts analyzeOptions, stdout io.Writer) error {
	table, err := readTable(ctx, a, path, opts.format, opts.sheet)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	ctx = domain.NewContext(ctx, domain.RunContext{RunID: runID, Source: filepath.Base(path), Operator: "cli"})
	report, err := a.analyzer().Analyze(ctx, table)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", path, err)
	}

	out := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
		opts.plain = true
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	styles := render.DefaultStyles()
	if opts.plain {
		styles = render.PlainStyles()
	}
	return render.NewTextRenderer(styles).Render(out, report)
}

func readTable(ctx context.Context, a *app, path, format, sheet string) (*domain.Table, error) {
	f := ingest.Format(format)
	if f == "" {
		var err error
		if f, err = ingest.DetectFormat(path); err != nil {
			return nil, err
		}
	}
	src, err := ingest.ForFormat(f, sheet)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	table, result, err := src.Read(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	a.logger.Debug("table read",
		zap.String("source", path),
		zap.Int("columns", len(table.Columns)),
		zap.Int("rows", result.Success),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped))
	for _, e := range result.Errors {
		a.logger.Warn("row rejected", zap.String("source", path), zap.String("error", e))
	}
	return table, nil
}
