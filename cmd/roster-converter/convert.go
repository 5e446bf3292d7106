package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fee-desk/internal/config"
	"fee-desk/internal/excel"
	"fee-desk/internal/logger"
	"fee-desk/internal/storage"
	"fee-desk/internal/worker"

	"github.com/spf13/cobra"
)

type convertOptions struct {
	outDir       string
	workers      int
	uploadPrefix string
}

func newConvertCmd() *cobra.Command {
	opts := convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert <register.xlsx>...",
		Short: "Convert fee register spreadsheets to converted_data.json",
		Long: `Reads the first sheet of each workbook, finds the "Ad.No." / "Name" / "Class"
header row and writes the rows below it as a JSON roster. With one input the
output is converted_data.json; with several, each output is prefixed with
its input's base name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(logLevel, "console")

			var store storage.Storage
			if opts.uploadPrefix != "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				s3Store, err := storage.NewS3Storage(cfg)
				if err != nil {
					return fmt.Errorf("failed to initialize S3 storage: %w", err)
				}
				store = s3Store
			}

			return runConvert(cmd.Context(), cmd, args, opts, store)
		},
	}
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "Directory to write converted rosters to")
	cmd.Flags().IntVar(&opts.workers, "workers", 4, "Number of files converted concurrently")
	cmd.Flags().StringVar(&opts.uploadPrefix, "upload-prefix", "", "Also upload each roster to the configured S3 bucket under this prefix")
	return cmd
}

func outputName(input string, multiple bool) string {
	if !multiple {
		return excel.OutputFilename
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return base + "_" + excel.OutputFilename
}

func runConvert(ctx context.Context, cmd *cobra.Command, inputs []string, opts convertOptions, store storage.Storage) error {
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	strategy := excel.NewExcelStrategy()
	pool := worker.NewWorkerPool(opts.workers)
	pool.Start(ctx)

	multiple := len(inputs) > 1
	counts := make([]int, len(inputs))
	converted := make([]bool, len(inputs))
	outputs := make([]string, len(inputs))
	for i, input := range inputs {
		i, input := i, input
		name := outputName(input, multiple)
		outputs[i] = filepath.Join(opts.outDir, name)
		if err := pool.Submit(ctx, func(ctx context.Context) error {
			n, err := convertOne(ctx, strategy, store, input, outputs[i], opts.uploadPrefix, name)
			counts[i], converted[i] = n, err == nil
			return err
		}); err != nil {
			pool.Stop()
			return err
		}
	}

	errs := pool.Stop()
	for i, input := range inputs {
		if converted[i] {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d students -> %s\n", input, counts[i], outputs[i])
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d conversions failed: %w", len(errs), len(inputs), errs[0])
	}
	return nil
}

// convertOne returns the number of students written.
func convertOne(
	ctx context.Context,
	strategy excel.ParsingStrategy,
	store storage.Storage,
	input, output, uploadPrefix, name string,
) (int, error) {
	log := logger.Get().With().Str("input", input).Logger()

	data, err := os.ReadFile(input)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", input, err)
	}

	rows, err := strategy.Parse(ctx, data)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", input, err)
	}
	for _, problem := range strategy.Validate(ctx, rows) {
		log.Warn().Err(problem).Msg("Roster row problem")
	}

	out, err := excel.MarshalRoster(rows)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", input, err)
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return 0, fmt.Errorf("%s: failed to write output: %w", input, err)
	}

	if store != nil {
		key := strings.TrimSuffix(uploadPrefix, "/") + "/" + name
		if err := store.Upload(ctx, key, bytes.NewReader(out)); err != nil {
			return 0, fmt.Errorf("%s: failed to upload %s: %w", input, key, err)
		}
		log.Info().Str("key", key).Msg("Roster uploaded")
	}

	return len(rows), nil
}
